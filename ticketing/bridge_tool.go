package ticketing

import (
	"fmt"

	"github.com/hupe1980/incidentmesh/tool"
)

// BridgeTool exposes a per-ticket sync bridge through the tool host so other
// agents can drive individual external operations directly. It is registered
// at runtime by the ticketing tool when a ticket is created.
type BridgeTool struct {
	bridge *Bridge
}

// ID returns the registry identifier, unique per ticket.
func (t *BridgeTool) ID() string { return "issue-sync-" + t.bridge.TicketID() }

// Kind returns the tool's type tag.
func (t *BridgeTool) Kind() tool.Type { return tool.TypeIssueSync }

// Name returns the human-readable name.
func (t *BridgeTool) Name() string { return "Issue Sync (" + t.bridge.TicketID() + ")" }

// Description explains what the tool does.
func (t *BridgeTool) Description() string {
	return "Mirrors lifecycle events of ticket " + t.bridge.TicketID() + " onto the external issue tracker"
}

// Parameters returns the accepted argument schema.
func (t *BridgeTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{"type": "string", "description": "Action to perform (create_issue, get_issue, add_comment, add_attachment, add_worklog, create_subtask)"},
			"data":   map[string]any{"type": "object", "description": "Action arguments"},
		},
		"required": []string{"action"},
	}
}

// Execute drives one external operation through the bridge. Outcomes are
// reported in the result payload, never as errors, matching the bridge's
// best-effort contract.
func (t *BridgeTool) Execute(params map[string]any) (tool.Result, error) {
	action, _ := params["action"].(string)
	if action == "" {
		return tool.Result{}, tool.NewError(t.ID(), "missing required parameter: action", "VALIDATION_ERROR")
	}
	data, _ := params["data"].(map[string]any)

	switch action {
	case "create_issue":
		key, url, attempt := t.bridge.EnsureIssue()
		return tool.Success(map[string]any{
			"issue_key": key,
			"issue_url": url,
			"simulated": attempt.Outcome.Kind == OutcomeSimulated,
		}), nil

	case "get_issue":
		key := t.bridge.IssueKey()
		if key == "" {
			return tool.Result{}, tool.NewError(t.ID(), "no issue created for this bridge yet", "NOT_FOUND")
		}
		return tool.Success(map[string]any{"issue_key": key}), nil

	case "add_comment":
		body, _ := data["comment"].(string)
		if body == "" {
			return tool.Result{}, tool.NewError(t.ID(), "missing required parameter: comment", "VALIDATION_ERROR")
		}
		key, _, _ := t.bridge.EnsureIssue()
		attempt := t.bridge.comment(key, body)
		return tool.Success(map[string]any{"attempt": attempt.Document()}), nil

	case "add_attachment":
		path, _ := data["file_path"].(string)
		if path == "" {
			return tool.Result{}, tool.NewError(t.ID(), "missing required parameter: file_path", "VALIDATION_ERROR")
		}
		key, _, _ := t.bridge.EnsureIssue()
		attempt := t.bridge.attach(key, path)
		return tool.Success(map[string]any{"attempt": attempt.Document()}), nil

	case "add_worklog":
		seconds, ok := toInt(data["time_spent_seconds"])
		if !ok || seconds <= 0 {
			return tool.Result{}, tool.NewError(t.ID(), "missing required parameter: time_spent_seconds", "VALIDATION_ERROR")
		}
		comment, _ := data["comment"].(string)
		key, _, _ := t.bridge.EnsureIssue()
		attempt := t.bridge.worklog(key, seconds, comment)
		return tool.Success(map[string]any{"attempt": attempt.Document()}), nil

	case "create_subtask":
		summary, _ := data["summary"].(string)
		if summary == "" {
			return tool.Result{}, tool.NewError(t.ID(), "missing required parameter: summary", "VALIDATION_ERROR")
		}
		key, _, _ := t.bridge.EnsureIssue()
		attempt := t.bridge.subtask(key, summary)
		return tool.Success(map[string]any{"attempt": attempt.Document()}), nil

	default:
		return tool.Result{}, tool.NewError(t.ID(), fmt.Sprintf("unsupported action: %s", action), "VALIDATION_ERROR")
	}
}
