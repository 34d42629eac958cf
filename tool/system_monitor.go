package tool

// SystemMonitorTool is a simulated metrics backend returning a fixed snapshot
// of resource utilization for the requested system.
type SystemMonitorTool struct {
	Base
}

// NewSystemMonitorTool constructs the simulated system monitor.
func NewSystemMonitorTool() *SystemMonitorTool {
	return &SystemMonitorTool{Base: Base{
		BaseID:          "system-monitor",
		BaseType:        TypeSystemMonitor,
		BaseName:        "System Monitor",
		BaseDescription: "Reports current resource metrics for a system",
		BaseParameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"system": map[string]any{"type": "string", "description": "System to query"},
			},
			"required": []string{"system"},
		},
	}}
}

// Execute returns a simulated metrics snapshot.
func (t *SystemMonitorTool) Execute(params map[string]any) (Result, error) {
	if err := t.Validate(params); err != nil {
		return Result{}, err
	}
	system, _ := params["system"].(string)

	return Success(map[string]any{
		"system": system,
		"metrics": map[string]any{
			"cpu_percent":        87.5,
			"memory_percent":     92.1,
			"open_connections":   512,
			"connection_limit":   512,
			"error_rate_percent": 4.3,
		},
	}), nil
}
