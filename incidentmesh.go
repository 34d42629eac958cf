// Package incidentmesh provides a high-level façade over the agent runtime,
// tool host and incident repository, enabling construction of a complete
// incident response mesh with one call. Most applications interact with this
// package by:
//  1. Creating a System via New() (optionally overriding the repository,
//     tracker configuration or logger)
//  2. Driving incidents through CreateIncident / AnalyzeIncident /
//     ImplementResolution / UpdateIncident
//
// All defaults are safe for local development and testing: an in-memory
// incident repository, a NoOp logger and a simulated external tracker.
package incidentmesh

import (
	"fmt"

	"github.com/hupe1980/incidentmesh/agent"
	"github.com/hupe1980/incidentmesh/config"
	"github.com/hupe1980/incidentmesh/core"
	"github.com/hupe1980/incidentmesh/incident"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/hupe1980/incidentmesh/ticketing"
	"github.com/hupe1980/incidentmesh/tool"
)

// Options configures the System.
type Options struct {
	// Repository backs incident records (defaults to in-memory).
	Repository incident.Repository
	// TrackerConfig configures the external issue tracker. Nil or incomplete
	// configuration runs the sync bridge permanently in simulated mode.
	TrackerConfig *config.Tracker
	// TrackerFactory overrides live tracker construction (used in tests).
	TrackerFactory ticketing.TrackerFactory
	// Logger defaults to a NoOp logger.
	Logger logging.Logger
	// PreloadIncidents seeds the repository with simulated incidents.
	PreloadIncidents int
}

// System is the high-level façade aggregating the tool host, the incident
// repository and the three agents of the response workflow.
type System struct {
	opts Options

	host        *tool.Host
	repo        incident.Repository
	coordinator *agent.Coordinator
	diagnostic  *agent.Diagnostic
	resolution  *agent.Resolution
	ticketing   *ticketing.Tool
	alerts      *tool.AlertTool
}

// New creates a System with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *System {
	opts := Options{
		Repository: incident.NewInMemoryRepository(),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	resolved := config.Resolve(opts.TrackerConfig, opts.Logger)

	host := tool.NewHost(opts.Logger)
	alerts := tool.NewAlertTool()

	ticketingTool := ticketing.NewTool(host, resolved, func(o *ticketing.ToolOptions) {
		o.Logger = opts.Logger
		if opts.TrackerFactory != nil {
			o.TrackerFactory = opts.TrackerFactory
		}
	})

	host.Register(tool.NewLogAnalyzerTool())
	host.Register(tool.NewSystemMonitorTool())
	host.Register(tool.NewKnowledgeBaseTool())
	host.Register(tool.NewDeploymentTool())
	host.Register(alerts)
	host.Register(ticketingTool)

	coordinator := agent.NewCoordinator(host, opts.Repository, opts.Logger)
	diagnostic := agent.NewDiagnostic(host, opts.Repository, opts.Logger)
	resolution := agent.NewResolution(host, opts.Repository, opts.Logger)
	coordinator.SetCollaborators(diagnostic.Card().ID, resolution.Card().ID)

	s := &System{
		opts:        opts,
		host:        host,
		repo:        opts.Repository,
		coordinator: coordinator,
		diagnostic:  diagnostic,
		resolution:  resolution,
		ticketing:   ticketingTool,
		alerts:      alerts,
	}

	if opts.PreloadIncidents > 0 {
		incident.Preload(opts.Repository, opts.PreloadIncidents)
	}

	opts.Logger.Info("incidentmesh.initialized", "tracker_mode", resolved.Mode.String())
	return s
}

// Host exposes the shared tool host.
func (s *System) Host() *tool.Host { return s.host }

// Repository exposes the incident repository.
func (s *System) Repository() incident.Repository { return s.repo }

// Coordinator exposes the coordinator agent.
func (s *System) Coordinator() *agent.Coordinator { return s.coordinator }

// Alerts returns all notifications recorded by the alert tool.
func (s *System) Alerts() []tool.Alert { return s.alerts.Sent() }

// CreateOptions tune incident creation.
type CreateOptions struct {
	// IdempotencyKey makes resubmission safe: a repeated key returns the
	// originally created incident instead of a new one.
	IdempotencyKey string
}

// CreateIncident dispatches a create_incident request to the coordinator and
// returns the new incident id.
func (s *System) CreateIncident(p incident.Params, optFns ...func(o *CreateOptions)) (string, error) {
	var opts CreateOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	msg := newUserMessage(map[string]any{
		"create_incident": map[string]any{
			"title":            p.Title,
			"description":      p.Description,
			"severity":         p.Severity,
			"affected_systems": p.AffectedSystems,
			"tags":             p.Tags,
		},
	})
	if opts.IdempotencyKey != "" {
		msg.SetMetadata(agent.MetadataIdempotencyKey, opts.IdempotencyKey)
	}

	data, err := s.dispatch(s.coordinator, msg)
	if err != nil {
		return "", err
	}

	inc, _ := data["incident"].(map[string]any)
	id, _ := inc["incident_id"].(string)
	if id == "" {
		return "", fmt.Errorf("coordinator returned no incident id")
	}
	return id, nil
}

// UpdateIncident dispatches an update_incident request to the coordinator
// and returns the updated incident document.
func (s *System) UpdateIncident(incidentID, status, notes string, steps []ticketing.Step) (map[string]any, error) {
	body := map[string]any{"incident_id": incidentID}
	if status != "" {
		body["status"] = status
	}
	if notes != "" {
		body["notes"] = notes
	}
	if len(steps) > 0 {
		body["remediation_steps"] = steps
	}

	data, err := s.dispatch(s.coordinator, newUserMessage(map[string]any{"update_incident": body}))
	if err != nil {
		return nil, err
	}
	inc, _ := data["incident"].(map[string]any)
	return inc, nil
}

// GetIncident returns the current incident document.
func (s *System) GetIncident(incidentID string) (map[string]any, error) {
	data, err := s.dispatch(s.coordinator, newUserMessage(map[string]any{
		"get_incident_status": map[string]any{"incident_id": incidentID},
	}))
	if err != nil {
		return nil, err
	}
	inc, _ := data["incident"].(map[string]any)
	return inc, nil
}

// AnalyzeIncident runs the diagnostic agent and returns its report.
func (s *System) AnalyzeIncident(incidentID string) (map[string]any, error) {
	data, err := s.dispatch(s.diagnostic, newUserMessage(map[string]any{
		"analyze_incident": map[string]any{"incident_id": incidentID},
	}))
	if err != nil {
		return nil, err
	}
	report, _ := data["diagnostic_report"].(map[string]any)
	return report, nil
}

// GetDiagnosticReport returns the cached diagnostic report, if any.
func (s *System) GetDiagnosticReport(incidentID string) (map[string]any, error) {
	data, err := s.dispatch(s.diagnostic, newUserMessage(map[string]any{
		"get_diagnostic_report": map[string]any{"incident_id": incidentID},
	}))
	if err != nil {
		return nil, err
	}
	report, _ := data["diagnostic_report"].(map[string]any)
	return report, nil
}

// ImplementResolution runs the resolution agent and returns its status.
func (s *System) ImplementResolution(incidentID string) (map[string]any, error) {
	data, err := s.dispatch(s.resolution, newUserMessage(map[string]any{
		"implement_resolution": map[string]any{"incident_id": incidentID},
	}))
	if err != nil {
		return nil, err
	}
	status, _ := data["resolution_status"].(map[string]any)
	return status, nil
}

// GetResolutionStatus returns the cached resolution status, if any.
func (s *System) GetResolutionStatus(incidentID string) (map[string]any, error) {
	data, err := s.dispatch(s.resolution, newUserMessage(map[string]any{
		"get_resolution_status": map[string]any{"incident_id": incidentID},
	}))
	if err != nil {
		return nil, err
	}
	status, _ := data["resolution_status"].(map[string]any)
	return status, nil
}

// ResolutionSteps returns the remediation steps recorded for an incident,
// shaped for forwarding into UpdateIncident.
func (s *System) ResolutionSteps(incidentID string) []ticketing.Step {
	return s.resolution.Steps(incidentID)
}

// ListIncidents returns all incidents in the repository.
func (s *System) ListIncidents() []*incident.Incident { return s.repo.List() }

// PreloadIncidents seeds simulated incidents, returning their ids.
func (s *System) PreloadIncidents(count int) []string {
	return incident.Preload(s.repo, count)
}

// Cleanup releases agent tool sessions.
func (s *System) Cleanup() {
	s.coordinator.Cleanup()
	s.diagnostic.Cleanup()
	s.resolution.Cleanup()
}

// newUserMessage builds a user message carrying one structured part.
func newUserMessage(data map[string]any) *core.Message {
	return core.NewMessage(core.RoleUser).AddDataPart(data)
}

// dispatch delivers a message and extracts the structured response payload.
func (s *System) dispatch(a agent.Agent, msg *core.Message) (map[string]any, error) {
	task, err := a.Dispatch(msg)
	if err != nil {
		return nil, err
	}
	return task.ResponseData(), nil
}
