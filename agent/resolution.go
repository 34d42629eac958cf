package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/incidentmesh/core"
	"github.com/hupe1980/incidentmesh/incident"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/hupe1980/incidentmesh/ticketing"
	"github.com/hupe1980/incidentmesh/tool"
)

// Resolution remediates incidents: it derives remediation steps from the
// knowledge base and executes them through the deployment tool, caching a
// resolution status per incident.
type Resolution struct {
	BaseAgent

	repo incident.Repository

	mu       sync.Mutex
	statuses map[string]map[string]any // incident id -> resolution status
}

// NewResolution constructs the resolution agent.
func NewResolution(host *tool.Host, repo incident.Repository, logger logging.Logger) *Resolution {
	card := core.AgentCard{
		ID:          "resolution-agent",
		Name:        "Resolution Agent",
		Description: "Implements remediations for diagnosed incidents",
		Version:     "1.0.0",
		Endpoint:    "local://resolution-agent",
		Capabilities: []core.Capability{
			{
				Name:        "implement_resolution",
				Description: "Execute remediation actions for an incident",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"incident_id": map[string]any{"type": "string", "description": "Incident ID"},
					},
					"required": []string{"incident_id"},
				},
			},
			{
				Name:        "get_resolution_status",
				Description: "Get the resolution status for an incident",
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

	r := &Resolution{
		repo:     repo,
		statuses: make(map[string]map[string]any),
	}
	r.BaseAgent = NewBaseAgent(card, host, logger)
	r.process = r.handle
	return r
}

// Steps returns the remediation steps recorded for an incident, for
// forwarding into an update_incident request.
func (r *Resolution) Steps(incidentID string) []ticketing.Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.statuses[incidentID]
	if !ok {
		return nil
	}
	steps, _ := status["steps"].([]ticketing.Step)
	return append([]ticketing.Step(nil), steps...)
}

func (r *Resolution) handle(task *core.Task, msg *core.Message, req Request, response *core.Message) {
	switch req := req.(type) {
	case ImplementResolution:
		r.handleImplement(req, response)
	case GetResolutionStatus:
		r.handleGetStatus(req, response)
	case CreateIncident, UpdateIncident, GetIncidentStatus, AnalyzeIncident, GetDiagnosticReport:
		respondUnsupported(response, r.Card().ID)
	case Unknown:
		respondUnknown(response)
	}
}

func (r *Resolution) handleImplement(req ImplementResolution, response *core.Message) {
	inc, err := r.repo.Get(req.IncidentID)
	if err != nil {
		response.AddTextPart(fmt.Sprintf("Incident %s not found", req.IncidentID))
		return
	}

	steps := r.deriveSteps(inc)

	var executed []any
	for _, step := range steps {
		system := "unknown"
		if len(inc.AffectedSystems) > 0 {
			system = inc.AffectedSystems[0]
		}

		record := map[string]any{"summary": step.Summary, "state": "applied"}
		if res, err := r.ExecuteTool("deployment-system", map[string]any{
			"action": "restart_service",
			"system": system,
		}); err == nil {
			record["change_id"] = res.Data["change_id"]
		} else {
			// Best-effort: a failed deployment action is recorded, not fatal.
			record["state"] = "failed"
		}
		executed = append(executed, record)
	}

	status := map[string]any{
		"incident_id": req.IncidentID,
		"implemented": time.Now().Format(time.RFC3339),
		"steps":       steps,
		"executed":    executed,
		"step_count":  len(steps),
		"all_applied": allApplied(executed),
	}

	r.mu.Lock()
	r.statuses[req.IncidentID] = status
	r.mu.Unlock()

	_ = r.repo.AddNote(req.IncidentID, fmt.Sprintf("Resolution implemented: %d remediation step(s) executed", len(steps)))
	r.Logger().Info("resolution.implemented", "incident_id", req.IncidentID, "steps", len(steps))

	response.AddTextPart(fmt.Sprintf("Resolution for incident %s implemented", req.IncidentID))
	response.AddDataPart(map[string]any{"resolution_status": status})
}

func (r *Resolution) handleGetStatus(req GetResolutionStatus, response *core.Message) {
	r.mu.Lock()
	status, ok := r.statuses[req.IncidentID]
	r.mu.Unlock()

	if !ok {
		response.AddTextPart(fmt.Sprintf("No resolution status for incident %s", req.IncidentID))
		return
	}
	response.AddTextPart(fmt.Sprintf("Resolution status for incident %s", req.IncidentID))
	response.AddDataPart(map[string]any{"resolution_status": status})
}

// deriveSteps builds remediation steps from knowledge base runbooks matching
// the incident, falling back to a generic restart.
func (r *Resolution) deriveSteps(inc *incident.Incident) []ticketing.Step {
	var steps []ticketing.Step

	if res, err := r.ExecuteTool("knowledge-base", map[string]any{"query": inc.Title}); err == nil {
		if articles, ok := res.Data["articles"].([]any); ok {
			for _, a := range articles {
				m, ok := a.(map[string]any)
				if !ok {
					continue
				}
				title, _ := m["title"].(string)
				if kbSteps, ok := m["steps"].([]string); ok {
					for _, s := range kbSteps {
						steps = append(steps, ticketing.Step{Summary: s, Description: "From runbook: " + title})
					}
				}
			}
		}
	}

	if len(steps) == 0 {
		steps = append(steps, ticketing.Step{Summary: "Restart affected services", Description: "No matching runbook; applying default remediation"})
	}
	return steps
}

func allApplied(executed []any) bool {
	for _, e := range executed {
		if m, ok := e.(map[string]any); ok {
			if state, _ := m["state"].(string); state != "applied" {
				return false
			}
		}
	}
	return true
}
