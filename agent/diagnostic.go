package agent

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/incidentmesh/core"
	"github.com/hupe1980/incidentmesh/incident"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/hupe1980/incidentmesh/tool"
)

// Diagnostic analyzes incidents: it runs the log analyzer, system monitor
// and knowledge base tools against the affected systems and composes a
// diagnostic report, cached per incident.
type Diagnostic struct {
	BaseAgent

	repo incident.Repository

	mu      sync.Mutex
	reports map[string]map[string]any // incident id -> report
}

// NewDiagnostic constructs the diagnostic agent.
func NewDiagnostic(host *tool.Host, repo incident.Repository, logger logging.Logger) *Diagnostic {
	card := core.AgentCard{
		ID:          "diagnostic-agent",
		Name:        "Diagnostic Agent",
		Description: "Analyzes incidents to determine root cause",
		Version:     "1.0.0",
		Endpoint:    "local://diagnostic-agent",
		Capabilities: []core.Capability{
			{
				Name:        "analyze_incident",
				Description: "Analyze an incident and produce a diagnostic report",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"incident_id": map[string]any{"type": "string", "description": "Incident ID"},
					},
					"required": []string{"incident_id"},
				},
			},
			{
				Name:        "get_diagnostic_report",
				Description: "Get the diagnostic report for an incident",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"incident_id": map[string]any{"type": "string", "description": "Incident ID"},
					},
					"required": []string{"incident_id"},
				},
			},
		},
	}

	d := &Diagnostic{
		repo:    repo,
		reports: make(map[string]map[string]any),
	}
	d.BaseAgent = NewBaseAgent(card, host, logger)
	d.process = d.handle
	return d
}

func (d *Diagnostic) handle(task *core.Task, msg *core.Message, req Request, response *core.Message) {
	switch req := req.(type) {
	case AnalyzeIncident:
		d.handleAnalyze(req, response)
	case GetDiagnosticReport:
		d.handleGetReport(req, response)
	case CreateIncident, UpdateIncident, GetIncidentStatus, ImplementResolution, GetResolutionStatus:
		respondUnsupported(response, d.Card().ID)
	case Unknown:
		respondUnknown(response)
	}
}

func (d *Diagnostic) handleAnalyze(req AnalyzeIncident, response *core.Message) {
	inc, err := d.repo.Get(req.IncidentID)
	if err != nil {
		response.AddTextPart(fmt.Sprintf("Incident %s not found", req.IncidentID))
		return
	}

	system := "unknown"
	if len(inc.AffectedSystems) > 0 {
		system = inc.AffectedSystems[0]
	}

	// Best-effort evidence gathering: a failing tool leaves its section of
	// the report empty rather than failing the analysis.
	var findings any
	if res, err := d.ExecuteTool("log-analyzer", map[string]any{"system": system, "time_range": "1h"}); err == nil {
		findings = res.Data["findings"]
	}

	var metrics any
	if res, err := d.ExecuteTool("system-monitor", map[string]any{"system": system}); err == nil {
		metrics = res.Data["metrics"]
	}

	var recommendations []any
	if res, err := d.ExecuteTool("knowledge-base", map[string]any{"query": inc.Title}); err == nil {
		if articles, ok := res.Data["articles"].([]any); ok {
			recommendations = articles
		}
	}

	report := map[string]any{
		"incident_id":     req.IncidentID,
		"analyzed_at":     time.Now().Format(time.RFC3339),
		"analyzed_system": system,
		"root_cause":      deriveRootCause(findings),
		"confidence":      confidenceFor(findings, recommendations),
		"findings":        findings,
		"metrics":         metrics,
		"recommendations": recommendations,
	}

	d.mu.Lock()
	d.reports[req.IncidentID] = report
	d.mu.Unlock()

	_ = d.repo.AddNote(req.IncidentID, "Diagnostic analysis completed: "+report["root_cause"].(string))
	d.Logger().Info("diagnostic.analysis.completed", "incident_id", req.IncidentID)

	response.AddTextPart(fmt.Sprintf("Analysis of incident %s completed", req.IncidentID))
	response.AddDataPart(map[string]any{"diagnostic_report": report})
}

func (d *Diagnostic) handleGetReport(req GetDiagnosticReport, response *core.Message) {
	d.mu.Lock()
	report, ok := d.reports[req.IncidentID]
	d.mu.Unlock()

	if !ok {
		response.AddTextPart(fmt.Sprintf("No diagnostic report for incident %s", req.IncidentID))
		return
	}
	response.AddTextPart(fmt.Sprintf("Diagnostic report for incident %s", req.IncidentID))
	response.AddDataPart(map[string]any{"diagnostic_report": report})
}

// deriveRootCause picks the dominant log pattern as the probable root cause.
func deriveRootCause(findings any) string {
	items, _ := findings.([]any)
	var best string
	bestCount := -1
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		pattern, _ := m["pattern"].(string)
		count := 0
		switch c := m["count"].(type) {
		case int:
			count = c
		case float64:
			count = int(c)
		}
		if count > bestCount {
			best = pattern
			bestCount = count
		}
	}
	if best == "" {
		return "undetermined"
	}
	return "recurring " + strings.ToLower(best) + " errors"
}

func confidenceFor(findings any, recommendations []any) string {
	items, _ := findings.([]any)
	switch {
	case len(items) > 0 && len(recommendations) > 0:
		return "high"
	case len(items) > 0 || len(recommendations) > 0:
		return "medium"
	default:
		return "low"
	}
}
