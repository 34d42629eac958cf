package agent

import (
	"fmt"
	"sync"

	"github.com/hupe1980/incidentmesh/core"
	"github.com/hupe1980/incidentmesh/incident"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/hupe1980/incidentmesh/tool"
)

// MetadataIdempotencyKey is the message metadata key callers set to make
// create_incident resubmission-safe. Duplicate keys return the existing
// incident instead of creating a second one (and a second external issue).
const MetadataIdempotencyKey = "idempotency_key"

// Coordinator is the central agent of the incident response workflow. It
// owns incident creation and lifecycle updates, mirrors tickets through the
// ticketing tool and hands incidents to the diagnostic and resolution agents.
type Coordinator struct {
	BaseAgent

	repo incident.Repository

	mu                sync.Mutex
	diagnosticAgentID string
	resolutionAgentID string
	idempotency       map[string]string // idempotency key -> incident id
}

// NewCoordinator constructs the coordinator agent.
func NewCoordinator(host *tool.Host, repo incident.Repository, logger logging.Logger) *Coordinator {
	card := core.AgentCard{
		ID:          "incident-coordinator",
		Name:        "Incident Coordinator",
		Description: "Coordinates incident response workflow and delegates to specialized agents",
		Version:     "1.0.0",
		Endpoint:    "local://incident-coordinator",
		Capabilities: []core.Capability{
			{
				Name:        "create_incident",
				Description: "Create a new incident",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":            map[string]any{"type": "string", "description": "Incident title"},
						"description":      map[string]any{"type": "string", "description": "Incident description"},
						"severity":         map[string]any{"type": "string", "description": "low, medium, high or critical"},
						"affected_systems": map[string]any{"type": "array", "description": "Affected systems"},
						"tags":             map[string]any{"type": "array", "description": "Tags for categorization"},
					},
					"required": []string{"title"},
				},
			},
			{
				Name:        "get_incident_status",
				Description: "Get the status of an incident",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"incident_id": map[string]any{"type": "string", "description": "Incident ID"},
					},
					"required": []string{"incident_id"},
				},
			},
			{
				Name:        "update_incident",
				Description: "Update an incident",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"incident_id":       map[string]any{"type": "string", "description": "Incident ID"},
						"status":            map[string]any{"type": "string", "description": "investigating, identified, resolving, resolved or closed"},
						"notes":             map[string]any{"type": "string", "description": "Additional notes"},
						"remediation_steps": map[string]any{"type": "array", "description": "Remediation actions taken"},
					},
					"required": []string{"incident_id"},
				},
			},
		},
	}

	c := &Coordinator{
		repo:        repo,
		idempotency: make(map[string]string),
	}
	c.BaseAgent = NewBaseAgent(card, host, logger)
	c.process = c.handle
	return c
}

// SetCollaborators records the ids of the diagnostic and resolution agents
// incidents are handed to.
func (c *Coordinator) SetCollaborators(diagnosticAgentID, resolutionAgentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnosticAgentID = diagnosticAgentID
	c.resolutionAgentID = resolutionAgentID
}

func (c *Coordinator) handle(task *core.Task, msg *core.Message, req Request, response *core.Message) {
	switch req := req.(type) {
	case CreateIncident:
		c.handleCreate(msg, req, response)
	case UpdateIncident:
		c.handleUpdate(req, response)
	case GetIncidentStatus:
		c.handleGet(req, response)
	case AnalyzeIncident, GetDiagnosticReport, ImplementResolution, GetResolutionStatus:
		respondUnsupported(response, c.Card().ID)
	case Unknown:
		respondUnknown(response)
	}
}

func (c *Coordinator) handleCreate(msg *core.Message, req CreateIncident, response *core.Message) {
	idemKey := msg.Metadata[MetadataIdempotencyKey]
	if idemKey != "" {
		c.mu.Lock()
		existingID, seen := c.idempotency[idemKey]
		c.mu.Unlock()
		if seen {
			c.Logger().Info("coordinator.create.duplicate", "idempotency_key", idemKey, "incident_id", existingID)
			if inc, err := c.repo.Get(existingID); err == nil {
				response.AddTextPart(fmt.Sprintf("Incident already exists with ID: %s", existingID))
				response.AddDataPart(map[string]any{"incident": inc.Document(), "duplicate": true})
				return
			}
		}
	}

	incidentID, err := c.repo.Create(incident.Params{
		Title:           req.Title,
		Description:     req.Description,
		Severity:        req.Severity,
		AffectedSystems: req.AffectedSystems,
		Tags:            req.Tags,
	})
	if err != nil {
		response.AddTextPart("Failed to create incident: " + err.Error())
		return
	}

	if idemKey != "" {
		c.mu.Lock()
		c.idempotency[idemKey] = incidentID
		c.mu.Unlock()
	}

	// Mirror the incident into the ticketing system. A tool failure here is
	// absorbed: the incident exists regardless.
	inc, _ := c.repo.Get(incidentID)
	ticketRes, err := c.ExecuteTool("ticketing-system", map[string]any{
		"action": "create_ticket",
		"data":   inc.Document(),
	})
	if err == nil {
		c.captureExternalIssue(incidentID, ticketRes)
	}

	c.assignToDiagnostic(incidentID)

	updated, _ := c.repo.Get(incidentID)
	response.AddTextPart(fmt.Sprintf("Incident created with ID: %s", incidentID))
	response.AddDataPart(map[string]any{"incident": updated.Document()})
}

// captureExternalIssue persists the external issue key/url from a ticket
// creation result into incident metadata.
func (c *Coordinator) captureExternalIssue(incidentID string, res tool.Result) {
	ticket, _ := res.Data["ticket"].(map[string]any)
	if ticket == nil {
		return
	}
	if key, ok := ticket["external_issue_key"].(string); ok && key != "" {
		if err := c.repo.SetMetadata(incidentID, "external_issue_key", key); err == nil {
			c.Logger().Info("coordinator.issue.linked", "incident_id", incidentID, "issue_key", key)
		}
	}
	if url, ok := ticket["external_issue_url"].(string); ok && url != "" {
		_ = c.repo.SetMetadata(incidentID, "external_issue_url", url)
	}
	if simulated, ok := res.Data["simulated"].(bool); ok {
		_ = c.repo.SetMetadata(incidentID, "external_sync_simulated", simulated)
	}
}

func (c *Coordinator) handleUpdate(req UpdateIncident, response *core.Message) {
	if req.IncidentID == "" {
		response.AddTextPart("Missing required parameter: incident_id")
		return
	}

	inc, err := c.repo.Get(req.IncidentID)
	if err != nil {
		response.AddTextPart(fmt.Sprintf("Incident %s not found", req.IncidentID))
		return
	}

	var syncAttempts any
	if req.Status != "" {
		if err := c.repo.UpdateStatus(req.IncidentID, req.Status, req.Notes); err != nil {
			response.AddTextPart(fmt.Sprintf("Failed to update incident status to %s", req.Status))
			return
		}

		ticketUpdate := map[string]any{"status": req.Status}
		if req.Notes != "" {
			ticketUpdate["notes"] = req.Notes
		}
		if len(req.Attachments) > 0 {
			ticketUpdate["attachments"] = req.Attachments
		}
		if len(req.RemediationSteps) > 0 {
			ticketUpdate["remediation_steps"] = req.RemediationSteps
		}

		ticketRes, err := c.ExecuteTool("ticketing-system", map[string]any{
			"action":    "update_ticket",
			"ticket_id": req.IncidentID,
			"data":      ticketUpdate,
		})
		if err == nil {
			syncAttempts = ticketRes.Data["sync_attempts"]
		}

		if req.Status == incident.StatusIdentified {
			c.assignToResolution(req.IncidentID)
		}

		if req.Status == incident.StatusResolved {
			_, _ = c.ExecuteTool("alert-system", map[string]any{
				"recipients": []string{"it-team@example.com", "stakeholders@example.com"},
				"subject":    fmt.Sprintf("Incident %s Resolved", req.IncidentID),
				"message":    fmt.Sprintf("The incident %q has been resolved.\n\nNotes: %s\n\nActions taken: %d", inc.Title, req.Notes, len(req.RemediationSteps)),
				"severity":   "info",
			})
		}
	} else if req.Notes != "" {
		if err := c.repo.AddNote(req.IncidentID, req.Notes); err != nil {
			response.AddTextPart("Failed to add note: " + err.Error())
			return
		}
	}

	updated, _ := c.repo.Get(req.IncidentID)
	response.AddTextPart(fmt.Sprintf("Incident %s updated", req.IncidentID))
	result := map[string]any{"incident": updated.Document()}
	if syncAttempts != nil {
		result["sync_attempts"] = syncAttempts
	}
	response.AddDataPart(result)
}

func (c *Coordinator) handleGet(req GetIncidentStatus, response *core.Message) {
	inc, err := c.repo.Get(req.IncidentID)
	if err != nil {
		response.AddTextPart(fmt.Sprintf("Incident %s not found", req.IncidentID))
		return
	}
	response.AddTextPart(fmt.Sprintf("Current status of incident %s: %s", req.IncidentID, inc.Status))
	response.AddDataPart(map[string]any{"incident": inc.Document()})
}

func (c *Coordinator) assignToDiagnostic(incidentID string) {
	c.mu.Lock()
	agentID := c.diagnosticAgentID
	c.mu.Unlock()
	if agentID == "" {
		c.Logger().Warn("coordinator.assign.no_diagnostic_agent", "incident_id", incidentID)
		return
	}

	inc, err := c.repo.Get(incidentID)
	if err != nil {
		return
	}

	_ = c.repo.Assign(incidentID, "diagnostic-agent:"+agentID)
	_ = c.repo.AddNote(incidentID, "Assigned to diagnostic agent for analysis")

	_, _ = c.ExecuteTool("alert-system", map[string]any{
		"recipients": []string{"it-team@example.com"},
		"subject":    fmt.Sprintf("Incident %s Assigned for Diagnosis", incidentID),
		"message":    fmt.Sprintf("The incident %q has been assigned to the diagnostic agent for analysis.", inc.Title),
		"severity":   inc.Severity,
	})
}

func (c *Coordinator) assignToResolution(incidentID string) {
	c.mu.Lock()
	agentID := c.resolutionAgentID
	c.mu.Unlock()
	if agentID == "" {
		c.Logger().Warn("coordinator.assign.no_resolution_agent", "incident_id", incidentID)
		return
	}

	inc, err := c.repo.Get(incidentID)
	if err != nil {
		return
	}

	_ = c.repo.Assign(incidentID, "resolution-agent:"+agentID)
	_ = c.repo.AddNote(incidentID, "Assigned to resolution agent for implementation")

	_, _ = c.ExecuteTool("alert-system", map[string]any{
		"recipients": []string{"it-team@example.com"},
		"subject":    fmt.Sprintf("Incident %s Assigned for Resolution", incidentID),
		"message":    fmt.Sprintf("The incident %q has been assigned to the resolution agent for implementation.", inc.Title),
		"severity":   inc.Severity,
	})
}
