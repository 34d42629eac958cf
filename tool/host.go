package tool

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/incidentmesh/logging"
)

var (
	// ErrToolNotFound is returned when the registry has no tool for the
	// requested id.
	ErrToolNotFound = fmt.Errorf("tool not found")
	// ErrUnknownSession is returned when the session id was never opened.
	ErrUnknownSession = fmt.Errorf("unknown tool session")
)

// toolCallLogger is implemented by loggers that record tool invocations as a
// single structured entry, such as logging.MeshLogger.
type toolCallLogger interface {
	LogToolCall(tool string, dur time.Duration, success bool, err error)
}

// Descriptor is the read-only enumeration view of a registered tool.
type Descriptor struct {
	ID          string         `json:"tool_id"`
	Type        Type           `json:"tool_type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Host is the registry and dispatcher for tools. Registration is idempotent
// by id (re-registering overwrites) and safe to call mid-request, which the
// ticketing tool relies on to attach per-ticket sync bridges at runtime.
//
// Sessions scope only which tools a caller enumerates; any registered tool is
// executable through any open session.
type Host struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	sessions map[string]string // session id -> agent id
	logger   logging.Logger
}

// NewHost constructs an empty host.
func NewHost(logger logging.Logger) *Host {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Host{
		tools:    make(map[string]Tool),
		sessions: make(map[string]string),
		logger:   logger,
	}
}

// Register adds a tool to the registry, overwriting any previous tool with
// the same id.
func (h *Host) Register(t Tool) {
	h.mu.Lock()
	_, replaced := h.tools[t.ID()]
	h.tools[t.ID()] = t
	h.mu.Unlock()

	h.logger.Info("tool.registered", "tool_id", t.ID(), "tool_type", string(t.Kind()), "replaced", replaced)
}

// OpenSession allocates a session id for the given agent.
func (h *Host) OpenSession(agentID string) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.sessions[id] = agentID
	h.mu.Unlock()

	h.logger.Debug("tool.session.opened", "session_id", id, "agent_id", agentID)
	return id
}

// CloseSession releases a session id. Closing an unknown session is a no-op.
func (h *Host) CloseSession(sessionID string) {
	h.mu.Lock()
	delete(h.sessions, sessionID)
	h.mu.Unlock()
}

// Execute dispatches to the tool registered under toolID, returning its
// result unchanged. Fails with ErrUnknownSession or ErrToolNotFound before
// any tool code runs.
func (h *Host) Execute(sessionID, toolID string, params map[string]any) (Result, error) {
	h.mu.RLock()
	_, sessionOK := h.sessions[sessionID]
	t, toolOK := h.tools[toolID]
	h.mu.RUnlock()

	if !sessionOK {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if !toolOK {
		return Result{}, fmt.Errorf("%w: %s", ErrToolNotFound, toolID)
	}

	start := time.Now()
	res, err := t.Execute(params)

	if tcl, ok := h.logger.(toolCallLogger); ok {
		tcl.LogToolCall(toolID, time.Since(start), err == nil, err)
	} else if err != nil {
		h.logger.Warn("tool.call.error", "tool_id", toolID, "session_id", sessionID, "error", err.Error())
	} else {
		h.logger.Debug("tool.call.success", "tool_id", toolID, "session_id", sessionID, "duration_ms", time.Since(start).Milliseconds())
	}

	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// List enumerates registered tools for introspection. Read-only.
func (h *Host) List(sessionID string) ([]Descriptor, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.sessions[sessionID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	out := make([]Descriptor, 0, len(h.tools))
	for _, t := range h.tools {
		out = append(out, Descriptor{
			ID:          t.ID(),
			Type:        t.Kind(),
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out, nil
}
