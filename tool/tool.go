// Package tool implements the shared tool subsystem: a registry/dispatcher
// (Host) of named executable capabilities scoped by per-agent sessions, plus
// the simulated collaborator tools agents call during incident handling.
//
// Tools execute synchronously. The host imposes no wrapping, timeout or
// cancellation of its own; a tool's result is returned to the caller
// unchanged.
package tool

import (
	"fmt"

	"github.com/hupe1980/incidentmesh/internal/util"
)

// Type categorizes a tool implementation.
type Type string

// Tool types known to the system.
const (
	TypeLogAnalyzer   Type = "log-analyzer"
	TypeSystemMonitor Type = "system-monitor"
	TypeKnowledgeBase Type = "knowledge-base"
	TypeTicketing     Type = "ticketing-system"
	TypeDeployment    Type = "deployment-system"
	TypeAlert         Type = "alert-system"
	TypeIssueSync     Type = "issue-sync"
)

// Result is the structured outcome of a tool execution. Status is always
// StatusSuccess for results returned without error; failure conditions travel
// as Go errors so callers can branch on typed errors instead of parsing
// payloads.
type Result struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// StatusSuccess marks a successful tool result.
const StatusSuccess = "success"

// Success builds a successful result carrying the given payload.
func Success(data map[string]any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// Tool defines the interface for shared executable capabilities. Registered
// once per host session; lifetime equals host lifetime (per-ticket sync
// bridges are the dynamic exception, registered mid-request).
//
// Implementations must be safe for concurrent use.
type Tool interface {
	// ID returns the unique registry identifier.
	ID() string
	// Kind returns the tool's type tag.
	Kind() Type
	// Name returns a human-readable name.
	Name() string
	// Description explains what the tool does.
	Description() string
	// Parameters returns a minimal JSON-Schema-like map of accepted arguments.
	Parameters() map[string]any
	// Execute runs the tool synchronously with the given parameters.
	Execute(params map[string]any) (Result, error)
}

// ValidationError represents parameter validation errors with detailed
// information.
type ValidationError = util.ValidationError

// Error represents errors that occur during tool execution.
type Error struct {
	Tool    string `json:"tool"`    // ID of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewError creates a new tool Error with the specified details.
func NewError(tool, message, code string) *Error {
	return &Error{Tool: tool, Message: message, Code: code}
}

// Base bundles the static descriptor fields shared by tool implementations.
// Embed it and provide Execute.
type Base struct {
	BaseID          string
	BaseType        Type
	BaseName        string
	BaseDescription string
	BaseParameters  map[string]any
}

// ID returns the unique registry identifier.
func (b Base) ID() string { return b.BaseID }

// Kind returns the tool's type tag.
func (b Base) Kind() Type { return b.BaseType }

// Name returns the human-readable name.
func (b Base) Name() string { return b.BaseName }

// Description returns the tool description.
func (b Base) Description() string { return b.BaseDescription }

// Parameters returns the declared parameter schema.
func (b Base) Parameters() map[string]any { return b.BaseParameters }

// Validate checks params against the declared schema, returning a
// VALIDATION_ERROR tool error on mismatch.
func (b Base) Validate(params map[string]any) error {
	if b.BaseParameters == nil {
		return nil
	}
	if err := util.ValidateParameters(params, b.BaseParameters); err != nil {
		return &Error{Tool: b.BaseID, Message: err.Error(), Code: "VALIDATION_ERROR"}
	}
	return nil
}
