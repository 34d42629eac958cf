package ticketing

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/incidentmesh/config"
	"github.com/hupe1980/incidentmesh/logging"
)

// Bridge mirrors one ticket's lifecycle events onto an external issue
// tracker, best-effort. Bridge state is per ticket and independent of any
// other ticket: an unreachable tracker stalls only the request that
// triggered the call.
//
// State machine: UNSYNCED until an external issue key is obtained (live or
// synthesized), then SYNCED; every subsequent local update produces
// independent side attempts that never fail the caller.
type Bridge struct {
	ticketID    string
	summary     string
	description string
	cfg         config.Resolved
	tracker     Tracker // nil forces simulated behavior
	logger      logging.Logger

	mu       sync.Mutex
	issueKey string
	issueURL string
}

// syncAttemptLogger is implemented by loggers with a dedicated sync attempt
// entry, such as logging.MeshLogger.
type syncAttemptLogger interface {
	LogSyncAttempt(op, issueKey, outcome string, err error)
}

// NewBridge constructs a bridge for one ticket. A nil tracker or a simulated
// mode resolution makes every operation synthesize results locally.
func NewBridge(ticketID, summary, description string, cfg config.Resolved, tracker Tracker, logger logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if ml, ok := logger.(*logging.MeshLogger); ok {
		logger = ml.WithTicket(ticketID)
	}
	if cfg.Mode == config.ModeSimulated {
		tracker = nil
	}
	return &Bridge{
		ticketID:    ticketID,
		summary:     summary,
		description: description,
		cfg:         cfg,
		tracker:     tracker,
		logger:      logger,
	}
}

// TicketID returns the id of the ticket this bridge serves.
func (b *Bridge) TicketID() string { return b.ticketID }

// IssueKey returns the external issue key once synced, or "".
func (b *Bridge) IssueKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueKey
}

// simulated reports whether external calls are disabled for this bridge.
func (b *Bridge) simulated() bool { return b.tracker == nil }

// newSimulatedKey synthesizes a placeholder issue key.
func newSimulatedKey(prefix string) string {
	return prefix + strings.ToUpper(uuid.NewString()[:8])
}

// browseURL builds the issue URL when a base URL is configured.
func (b *Bridge) browseURL(key string) string {
	if b.cfg.Tracker.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(b.cfg.Tracker.BaseURL, "/") + "/browse/" + key
}

// EnsureIssue obtains an external issue key for the ticket, creating the
// issue on first call. Creation failures fall back to a synthesized key so
// the pipeline is unaffected; the returned attempt distinguishes the two via
// its outcome.
func (b *Bridge) EnsureIssue() (key, url string, attempt Attempt) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.issueKey != "" {
		return b.issueKey, b.issueURL, Attempt{Op: "create", Target: b.issueKey, Outcome: Skipped("already synced")}
	}

	if !b.simulated() {
		created, err := b.tracker.CreateIssue(b.cfg.Tracker.ProjectKey, b.cfg.Tracker.IssueType, b.summary, b.description)
		if err == nil {
			b.issueKey = created
			b.issueURL = b.browseURL(created)
			b.logger.Info("bridge.issue.created", "ticket_id", b.ticketID, "issue_key", created)
			return b.issueKey, b.issueURL, Attempt{Op: "create", Target: created, Outcome: Applied()}
		}
		b.logger.Warn("bridge.issue.create_failed", "ticket_id", b.ticketID, "error", err.Error())
	}

	b.issueKey = newSimulatedKey("SIM-")
	b.issueURL = b.browseURL(b.issueKey)
	b.logger.Debug("bridge.issue.simulated", "ticket_id", b.ticketID, "issue_key", b.issueKey)
	return b.issueKey, b.issueURL, Attempt{Op: "create", Target: b.issueKey, Outcome: Simulated()}
}

// SyncUpdate mirrors one local ticket update onto the external issue. The
// local record has already been applied by the caller; every attempt here is
// independent and non-blocking-for-the-caller in the sense that no failure
// propagates as an error.
func (b *Bridge) SyncUpdate(data map[string]any) []Attempt {
	issueKey, _, ensured := b.EnsureIssue()

	var attempts []Attempt
	if ensured.Outcome.Kind != OutcomeSkipped {
		attempts = append(attempts, ensured)
	}

	if status, ok := data["status"].(string); ok && status != "" {
		attempts = append(attempts, b.syncStatus(issueKey, status)...)
	}

	for _, note := range toStringList(data["notes"]) {
		attempts = append(attempts, b.comment(issueKey, note))
	}

	for _, path := range toStringList(data["attachments"]) {
		attempts = append(attempts, b.attach(issueKey, path))
	}

	if steps := parseSteps(data["remediation_steps"]); len(steps) > 0 {
		attempts = append(attempts, b.syncRemediation(issueKey, steps)...)
	}

	if seconds, ok := toInt(data["time_spent_seconds"]); ok && seconds > 0 {
		comment, _ := data["worklog_comment"].(string)
		attempts = append(attempts, b.worklog(issueKey, seconds, comment))
	}

	if sal, ok := b.logger.(syncAttemptLogger); ok {
		for _, a := range attempts {
			sal.LogSyncAttempt(a.Op, issueKey, string(a.Outcome.Kind), a.Outcome.Cause)
		}
	}

	return attempts
}

// syncStatus maps an internal status onto an external workflow transition.
// A missing map entry is "no mapping", not an error. Transition resolution
// searches the issue's current transitions case-insensitively by name,
// falling back to a raw id match; no match records a failed attempt while
// the overall update still succeeds.
func (b *Bridge) syncStatus(issueKey, status string) []Attempt {
	target, ok := b.cfg.Tracker.StatusMap[status]
	if !ok {
		b.logger.Debug("bridge.transition.unmapped", "ticket_id", b.ticketID, "status", status)
		return []Attempt{{Op: "transition", Target: issueKey, Outcome: Skipped("no mapping for status " + status)}}
	}

	attempt := b.transition(issueKey, target)
	statusComment := b.comment(issueKey, "Incident status changed to: "+status)
	return []Attempt{attempt, statusComment}
}

func (b *Bridge) transition(issueKey, target string) Attempt {
	if b.simulated() {
		b.logger.Debug("bridge.transition.simulated", "issue_key", issueKey, "transition", target)
		return Attempt{Op: "transition", Target: target, Outcome: Simulated()}
	}

	transitions, err := b.tracker.ListTransitions(issueKey)
	if err != nil {
		b.logger.Warn("bridge.transition.list_failed", "issue_key", issueKey, "error", err.Error())
		return Attempt{Op: "transition", Target: target, Outcome: Failed(err)}
	}

	var transitionID string
	for _, tr := range transitions {
		if strings.EqualFold(tr.Name, target) || tr.ID == target {
			transitionID = tr.ID
			break
		}
	}

	if transitionID == "" {
		available := make([]string, 0, len(transitions))
		for _, tr := range transitions {
			available = append(available, tr.Name)
		}
		err := fmt.Errorf("transition %q not found, available: %s", target, strings.Join(available, ", "))
		b.logger.Warn("bridge.transition.unresolved", "issue_key", issueKey, "error", err.Error())
		return Attempt{Op: "transition", Target: target, Outcome: Failed(err)}
	}

	if err := b.tracker.TransitionIssue(issueKey, transitionID); err != nil {
		b.logger.Warn("bridge.transition.failed", "issue_key", issueKey, "error", err.Error())
		return Attempt{Op: "transition", Target: target, Outcome: Failed(err)}
	}

	b.logger.Info("bridge.transition.applied", "issue_key", issueKey, "transition", target)
	return Attempt{Op: "transition", Target: target, Outcome: Applied()}
}

func (b *Bridge) comment(issueKey, body string) Attempt {
	if b.simulated() {
		return Attempt{Op: "comment", Target: issueKey, Outcome: Simulated()}
	}
	if err := b.tracker.AddComment(issueKey, body); err != nil {
		b.logger.Warn("bridge.comment.failed", "issue_key", issueKey, "error", err.Error())
		return Attempt{Op: "comment", Target: issueKey, Outcome: Failed(err)}
	}
	return Attempt{Op: "comment", Target: issueKey, Outcome: Applied()}
}

func (b *Bridge) attach(issueKey, path string) Attempt {
	if b.simulated() {
		return Attempt{Op: "attachment", Target: path, Outcome: Simulated()}
	}
	if err := b.tracker.AddAttachment(issueKey, path); err != nil {
		b.logger.Warn("bridge.attachment.failed", "issue_key", issueKey, "path", path, "error", err.Error())
		return Attempt{Op: "attachment", Target: path, Outcome: Failed(err)}
	}
	return Attempt{Op: "attachment", Target: path, Outcome: Applied()}
}

func (b *Bridge) worklog(issueKey string, seconds int, comment string) Attempt {
	if b.simulated() {
		return Attempt{Op: "worklog", Target: issueKey, Outcome: Simulated()}
	}
	if err := b.tracker.AddWorklog(issueKey, seconds, comment); err != nil {
		b.logger.Warn("bridge.worklog.failed", "issue_key", issueKey, "error", err.Error())
		return Attempt{Op: "worklog", Target: issueKey, Outcome: Failed(err)}
	}
	return Attempt{Op: "worklog", Target: issueKey, Outcome: Applied()}
}

// syncRemediation posts a single composed comment enumerating all steps,
// then attempts one subtask per step. The subtask loop is fail-fast: the
// first failure stops further attempts for this call, but the comment
// already posted is not rolled back.
func (b *Bridge) syncRemediation(issueKey string, steps []Step) []Attempt {
	attempts := []Attempt{b.comment(issueKey, composeRemediationComment(steps))}

	for _, step := range steps {
		attempt := b.subtask(issueKey, step.Summary)
		attempts = append(attempts, attempt)
		if attempt.Outcome.Kind == OutcomeFailed {
			b.logger.Debug("bridge.subtask.fail_fast", "issue_key", issueKey)
			break
		}
	}
	return attempts
}

func (b *Bridge) subtask(parentKey, summary string) Attempt {
	if b.simulated() {
		return Attempt{Op: "subtask", Target: newSimulatedKey("SIM-SUB-"), Outcome: Simulated()}
	}
	key, err := b.tracker.CreateSubtask(parentKey, summary, "")
	if err != nil {
		b.logger.Warn("bridge.subtask.failed", "parent_key", parentKey, "error", err.Error())
		return Attempt{Op: "subtask", Target: summary, Outcome: Failed(err)}
	}
	return Attempt{Op: "subtask", Target: key, Outcome: Applied()}
}

// composeRemediationComment formats all steps into one comment with index,
// summary and optional detail lines.
func composeRemediationComment(steps []Step) string {
	var sb strings.Builder
	sb.WriteString("Remediation actions executed:\n\n")
	for i, step := range steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step.Summary)
		if step.Description != "" && step.Description != step.Summary {
			fmt.Fprintf(&sb, "   Details: %s\n", step.Description)
		}
	}
	sb.WriteString("\nAll remediation actions completed.")
	return sb.String()
}

// Step is one remediation action mirrored to the external tracker.
type Step struct {
	Summary     string
	Description string
}

// parseSteps normalizes the remediation_steps payload, which may arrive as
// []Step, []map[string]any or []any of maps.
func parseSteps(v any) []Step {
	switch vv := v.(type) {
	case []Step:
		return vv
	case []map[string]any:
		out := make([]Step, 0, len(vv))
		for _, m := range vv {
			out = append(out, stepFromMap(m))
		}
		return out
	case []any:
		out := make([]Step, 0, len(vv))
		for _, item := range vv {
			if m, ok := item.(map[string]any); ok {
				out = append(out, stepFromMap(m))
			}
		}
		return out
	default:
		return nil
	}
}

func stepFromMap(m map[string]any) Step {
	s := Step{}
	if summary, ok := m["summary"].(string); ok {
		s.Summary = summary
	}
	if s.Summary == "" {
		s.Summary = "Remediation step"
	}
	if desc, ok := m["description"].(string); ok {
		s.Description = desc
	}
	return s
}

// toStringList normalizes a string, []string or []any value into a list.
func toStringList(v any) []string {
	switch vv := v.(type) {
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toInt(v any) (int, bool) {
	switch vv := v.(type) {
	case int:
		return vv, true
	case int64:
		return int(vv), true
	case float64:
		return int(vv), true
	default:
		return 0, false
	}
}
