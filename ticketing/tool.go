package ticketing

import (
	"fmt"
	"sync"

	"github.com/hupe1980/incidentmesh/config"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/hupe1980/incidentmesh/tool"
)

// TrackerFactory builds a live tracker from resolved settings. Injectable so
// tests can substitute a scripted tracker.
type TrackerFactory func(cfg config.Tracker) (Tracker, error)

// ToolOptions configures the ticketing tool.
type ToolOptions struct {
	// TrackerFactory defaults to NewJiraTracker.
	TrackerFactory TrackerFactory
	// Logger defaults to a NoOpLogger.
	Logger logging.Logger
}

// Tool creates and manages support tickets for incidents. On ticket creation
// it builds a per-ticket sync bridge, registers it with the shared tool host
// at runtime (registration is idempotent by id, tolerating retries), and
// attempts external issue creation through it.
type Tool struct {
	tool.Base

	store   *Store
	host    *tool.Host
	cfg     config.Resolved
	tracker Tracker // nil in simulated mode
	logger  logging.Logger

	mu      sync.Mutex
	bridges map[string]*Bridge
}

// NewTool constructs the ticketing tool. The host may be nil, in which case
// per-ticket bridges are kept locally but not exposed in the registry.
func NewTool(host *tool.Host, cfg config.Resolved, optFns ...func(o *ToolOptions)) *Tool {
	opts := ToolOptions{
		TrackerFactory: NewJiraTracker,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var tracker Tracker
	if cfg.Mode == config.ModeLive {
		var err error
		tracker, err = opts.TrackerFactory(cfg.Tracker)
		if err != nil {
			// Misconfiguration falls back to simulated mode rather than error.
			opts.Logger.Warn("ticketing.tracker.unavailable", "error", err.Error())
			cfg.Mode = config.ModeSimulated
			tracker = nil
		}
	}

	return &Tool{
		Base: tool.Base{
			BaseID:          "ticketing-system",
			BaseType:        tool.TypeTicketing,
			BaseName:        "Ticketing System",
			BaseDescription: "Creates and manages support tickets for incidents",
			BaseParameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action":    map[string]any{"type": "string", "description": "Action to perform (create_ticket, update_ticket, get_ticket)"},
					"ticket_id": map[string]any{"type": "string", "description": "Ticket ID for update/get operations"},
					"data":      map[string]any{"type": "object", "description": "Ticket data"},
				},
				"required": []string{"action"},
			},
		},
		store:   NewStore(),
		host:    host,
		cfg:     cfg,
		tracker: tracker,
		logger:  opts.Logger,
		bridges: make(map[string]*Bridge),
	}
}

// Store exposes the local ticket store.
func (t *Tool) Store() *Store { return t.store }

// Bridge returns the sync bridge for a ticket, if one exists.
func (t *Tool) Bridge(ticketID string) (*Bridge, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.bridges[ticketID]
	return b, ok
}

// Execute dispatches on the action parameter.
func (t *Tool) Execute(params map[string]any) (tool.Result, error) {
	if err := t.Validate(params); err != nil {
		return tool.Result{}, err
	}

	action, _ := params["action"].(string)
	data, _ := params["data"].(map[string]any)

	switch action {
	case "create_ticket":
		return t.createTicket(data)
	case "update_ticket":
		ticketID, _ := params["ticket_id"].(string)
		if ticketID == "" {
			return tool.Result{}, tool.NewError(t.ID(), "missing required parameter: ticket_id", "VALIDATION_ERROR")
		}
		return t.updateTicket(ticketID, data)
	case "get_ticket":
		ticketID, _ := params["ticket_id"].(string)
		if ticketID == "" {
			return tool.Result{}, tool.NewError(t.ID(), "missing required parameter: ticket_id", "VALIDATION_ERROR")
		}
		return t.getTicket(ticketID)
	default:
		return tool.Result{}, tool.NewError(t.ID(), fmt.Sprintf("unsupported action: %s", action), "VALIDATION_ERROR")
	}
}

func (t *Tool) createTicket(data map[string]any) (tool.Result, error) {
	if len(data) == 0 {
		return tool.Result{}, tool.NewError(t.ID(), "empty ticket data", "VALIDATION_ERROR")
	}

	ticket := t.store.Create(data)
	t.logger.Info("ticketing.ticket.created", "ticket_id", ticket.ID)

	summary, _ := data["title"].(string)
	description, _ := data["description"].(string)
	bridge := NewBridge(ticket.ID, summary, description, t.cfg, t.tracker, t.logger)

	t.mu.Lock()
	t.bridges[ticket.ID] = bridge
	t.mu.Unlock()

	if t.host != nil {
		t.host.Register(&BridgeTool{bridge: bridge})
	}

	key, url, attempt := bridge.EnsureIssue()
	t.store.setExternal(ticket.ID, key, url)

	ticket, err := t.store.Get(ticket.ID)
	if err != nil {
		return tool.Result{}, err
	}

	return tool.Success(map[string]any{
		"ticket_id": ticket.ID,
		"ticket":    ticket.Document(),
		"simulated": attempt.Outcome.Kind == OutcomeSimulated,
	}), nil
}

// updateTicket applies data to the local ticket unconditionally, then makes
// best-effort external sync attempts. External failures never surface as an
// error here; they are observable through the sync_attempts payload and logs.
func (t *Tool) updateTicket(ticketID string, data map[string]any) (tool.Result, error) {
	ticket, err := t.store.Apply(ticketID, data)
	if err != nil {
		return tool.Result{}, err
	}

	var attempts []Attempt
	if bridge, ok := t.Bridge(ticketID); ok {
		attempts = bridge.SyncUpdate(data)
	}

	t.logger.Info("ticketing.ticket.updated", "ticket_id", ticketID, "sync_attempts", len(attempts))

	return tool.Success(map[string]any{
		"ticket_id":     ticketID,
		"ticket":        ticket.Document(),
		"sync_attempts": documents(attempts),
	}), nil
}

func (t *Tool) getTicket(ticketID string) (tool.Result, error) {
	ticket, err := t.store.Get(ticketID)
	if err != nil {
		return tool.Result{}, err
	}
	return tool.Success(map[string]any{
		"ticket_id": ticketID,
		"ticket":    ticket.Document(),
	}), nil
}
