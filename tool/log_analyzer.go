package tool

import "fmt"

// LogAnalyzerTool is a simulated log analysis backend. It returns canned
// error-pattern findings for the requested system so diagnostic flows have
// realistic material to work with.
type LogAnalyzerTool struct {
	Base
}

// NewLogAnalyzerTool constructs the simulated log analyzer.
func NewLogAnalyzerTool() *LogAnalyzerTool {
	return &LogAnalyzerTool{Base: Base{
		BaseID:          "log-analyzer",
		BaseType:        TypeLogAnalyzer,
		BaseName:        "Log Analyzer",
		BaseDescription: "Analyzes system logs for error patterns around an incident",
		BaseParameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"system":     map[string]any{"type": "string", "description": "System whose logs to analyze"},
				"time_range": map[string]any{"type": "string", "description": "Relative range, e.g. 1h"},
			},
			"required": []string{"system"},
		},
	}}
}

// Execute returns simulated log findings for the given system.
func (t *LogAnalyzerTool) Execute(params map[string]any) (Result, error) {
	if err := t.Validate(params); err != nil {
		return Result{}, err
	}
	system, _ := params["system"].(string)

	return Success(map[string]any{
		"system": system,
		"findings": []any{
			map[string]any{
				"pattern":  "connection timeout",
				"count":    42,
				"severity": "high",
				"sample":   fmt.Sprintf("%s: ERROR timeout acquiring connection after 30s", system),
			},
			map[string]any{
				"pattern":  "retry exhausted",
				"count":    17,
				"severity": "medium",
				"sample":   fmt.Sprintf("%s: WARN retry budget exhausted for upstream call", system),
			},
		},
	}), nil
}
