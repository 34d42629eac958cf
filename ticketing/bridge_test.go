package ticketing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/hupe1980/incidentmesh/config"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var simKeyPattern = regexp.MustCompile(`^SIM-[0-9A-F]{8}$`)

// fakeTracker is a scripted Tracker implementation recording every call.
type fakeTracker struct {
	calls []string

	createErr      error
	transitions    []Transition
	transitionsErr error
	transitionErr  error
	commentErr     error
	attachErr      error
	worklogErr     error
	subtaskErr     error

	created int
}

var _ Tracker = (*fakeTracker)(nil)

func (f *fakeTracker) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeTracker) CreateIssue(projectKey, issueType, summary, description string) (string, error) {
	f.record("create %s %s", projectKey, issueType)
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created++
	return fmt.Sprintf("%s-%d", projectKey, f.created), nil
}

func (f *fakeTracker) ListTransitions(issueKey string) ([]Transition, error) {
	f.record("list-transitions %s", issueKey)
	return f.transitions, f.transitionsErr
}

func (f *fakeTracker) TransitionIssue(issueKey, transitionID string) error {
	f.record("transition %s %s", issueKey, transitionID)
	return f.transitionErr
}

func (f *fakeTracker) AddComment(issueKey, body string) error {
	f.record("comment %s", issueKey)
	return f.commentErr
}

func (f *fakeTracker) AddAttachment(issueKey, path string) error {
	f.record("attach %s %s", issueKey, path)
	return f.attachErr
}

func (f *fakeTracker) AddWorklog(issueKey string, seconds int, comment string) error {
	f.record("worklog %s %d", issueKey, seconds)
	return f.worklogErr
}

func (f *fakeTracker) CreateSubtask(parentKey, summary, issueType string) (string, error) {
	f.record("subtask %s", parentKey)
	if f.subtaskErr != nil {
		return "", f.subtaskErr
	}
	f.created++
	return fmt.Sprintf("%s-%d", parentKey, f.created), nil
}

func (f *fakeTracker) countCalls(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func liveConfig() config.Resolved {
	return config.Resolve(&config.Tracker{
		BaseURL:  "https://tracker.example.com",
		Username: "svc",
		Token:    "secret",
	}, nil)
}

func simulatedConfig() config.Resolved {
	return config.Resolve(nil, nil)
}

// -------------------- Simulated Mode Tests --------------------

func TestBridgeSimulatedEnsureIssue(t *testing.T) {
	// A tracker passed alongside a simulated resolution must never be
	// touched.
	tracker := &fakeTracker{}
	bridge := NewBridge("T-1", "summary", "description", simulatedConfig(), tracker, nil)

	key, url, attempt := bridge.EnsureIssue()
	assert.Regexp(t, simKeyPattern, key)
	assert.Empty(t, url)
	assert.Equal(t, OutcomeSimulated, attempt.Outcome.Kind)
	assert.Empty(t, tracker.calls)

	// Idempotent: the key is minted once.
	again, _, attempt := bridge.EnsureIssue()
	assert.Equal(t, key, again)
	assert.Equal(t, OutcomeSkipped, attempt.Outcome.Kind)
}

func TestBridgeSimulatedSyncUpdate(t *testing.T) {
	tracker := &fakeTracker{}
	bridge := NewBridge("T-1", "s", "d", simulatedConfig(), tracker, nil)

	attempts := bridge.SyncUpdate(map[string]any{
		"status": "resolved",
		"notes":  []string{"fixed"},
	})

	require.NotEmpty(t, attempts)
	for _, a := range attempts {
		assert.Equal(t, OutcomeSimulated, a.Outcome.Kind, "op %s", a.Op)
	}
	assert.Empty(t, tracker.calls)
}

func TestBridgeSyncAttemptLogging(t *testing.T) {
	// A MeshLogger picks up the ticket id as context and records one entry
	// per sync attempt.
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "json", Output: &buf})
	bridge := NewBridge("T-9", "s", "d", simulatedConfig(), nil, logger)

	attempts := bridge.SyncUpdate(map[string]any{
		"status": "resolved",
		"notes":  []string{"fixed"},
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, len(attempts))
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, "External sync attempt", entry["msg"])
		assert.Equal(t, "T-9", entry["ticket_id"])
		assert.Equal(t, "simulated", entry["outcome"])
	}
}

// -------------------- Live Mode Tests --------------------

func TestBridgeLiveEnsureIssue(t *testing.T) {
	tracker := &fakeTracker{}
	bridge := NewBridge("T-1", "summary", "description", liveConfig(), tracker, nil)

	key, url, attempt := bridge.EnsureIssue()
	assert.Equal(t, "PROJ-1", key)
	assert.Equal(t, "https://tracker.example.com/browse/PROJ-1", url)
	assert.Equal(t, OutcomeApplied, attempt.Outcome.Kind)
	assert.Equal(t, 1, tracker.countCalls("create"))

	bridge.EnsureIssue()
	assert.Equal(t, 1, tracker.countCalls("create"))
}

func TestBridgeCreateFailureFallsBackToSimulatedKey(t *testing.T) {
	tracker := &fakeTracker{createErr: fmt.Errorf("503 unavailable")}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	key, _, attempt := bridge.EnsureIssue()
	assert.Regexp(t, simKeyPattern, key)
	assert.Equal(t, OutcomeSimulated, attempt.Outcome.Kind)
}

func TestBridgeStatusTransition(t *testing.T) {
	tracker := &fakeTracker{transitions: []Transition{
		{ID: "11", Name: "To Do"},
		{ID: "31", Name: "Done"},
	}}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	attempts := bridge.SyncUpdate(map[string]any{"status": "resolved"})

	// One transition plus its companion comment.
	require.Len(t, attempts, 3) // create + transition + comment
	assert.Equal(t, "create", attempts[0].Op)
	assert.Equal(t, "transition", attempts[1].Op)
	assert.Equal(t, OutcomeApplied, attempts[1].Outcome.Kind)
	assert.Equal(t, "comment", attempts[2].Op)

	assert.Contains(t, tracker.calls, "transition PROJ-1 31")
	assert.Equal(t, 1, tracker.countCalls("transition "))
}

func TestBridgeStatusTransitionCaseInsensitive(t *testing.T) {
	tracker := &fakeTracker{transitions: []Transition{{ID: "31", Name: "DONE"}}}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	attempts := bridge.SyncUpdate(map[string]any{"status": "resolved"})
	assert.Equal(t, OutcomeApplied, findAttempt(t, attempts, "transition").Outcome.Kind)
	assert.Contains(t, tracker.calls, "transition PROJ-1 31")
}

func TestBridgeStatusTransitionByRawID(t *testing.T) {
	cfg := config.Resolve(&config.Tracker{
		BaseURL:   "https://tracker.example.com",
		Username:  "svc",
		Token:     "secret",
		StatusMap: map[string]string{"resolved": "31"},
	}, nil)
	tracker := &fakeTracker{transitions: []Transition{{ID: "31", Name: "Done"}}}
	bridge := NewBridge("T-1", "s", "d", cfg, tracker, nil)

	attempts := bridge.SyncUpdate(map[string]any{"status": "resolved"})
	assert.Equal(t, OutcomeApplied, findAttempt(t, attempts, "transition").Outcome.Kind)
}

func TestBridgeUnmappedStatusSkipped(t *testing.T) {
	tracker := &fakeTracker{}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)
	bridge.EnsureIssue()

	attempts := bridge.SyncUpdate(map[string]any{"status": "open"})

	transition := findAttempt(t, attempts, "transition")
	assert.Equal(t, OutcomeSkipped, transition.Outcome.Kind)
	assert.Contains(t, transition.Outcome.Reason, "no mapping")
	// Neither transition nor companion comment calls happen for an unmapped
	// status.
	assert.Equal(t, 0, tracker.countCalls("list-transitions"))
	assert.Equal(t, 0, tracker.countCalls("comment"))
}

func TestBridgeUnresolvableTransitionFails(t *testing.T) {
	tracker := &fakeTracker{transitions: []Transition{{ID: "11", Name: "To Do"}}}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	attempts := bridge.SyncUpdate(map[string]any{"status": "resolved"})

	transition := findAttempt(t, attempts, "transition")
	assert.Equal(t, OutcomeFailed, transition.Outcome.Kind)
	assert.Contains(t, transition.Outcome.Cause.Error(), "available: To Do")
	// The companion comment is still attempted.
	assert.Equal(t, 1, tracker.countCalls("comment"))
}

func TestBridgeNotesAndAttachmentsIndependent(t *testing.T) {
	tracker := &fakeTracker{attachErr: fmt.Errorf("413 too large")}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	attempts := bridge.SyncUpdate(map[string]any{
		"notes":       []string{"note one", "note two"},
		"attachments": []string{"/tmp/a.log", "/tmp/b.log"},
	})

	comments := 0
	failedAttachments := 0
	for _, a := range attempts {
		switch a.Op {
		case "comment":
			comments++
			assert.Equal(t, OutcomeApplied, a.Outcome.Kind)
		case "attachment":
			failedAttachments++
			assert.Equal(t, OutcomeFailed, a.Outcome.Kind)
		}
	}
	assert.Equal(t, 2, comments)
	// Both attachments are attempted despite the first failing.
	assert.Equal(t, 2, failedAttachments)
}

func TestBridgeRemediationSteps(t *testing.T) {
	tracker := &fakeTracker{}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	steps := []Step{
		{Summary: "Restart db-primary", Description: "Recycle leaked connections"},
		{Summary: "Raise pool ceiling"},
		{Summary: "Enable slow-query logging"},
	}
	attempts := bridge.SyncUpdate(map[string]any{"remediation_steps": steps})

	// Exactly one composed comment regardless of step count.
	assert.Equal(t, 1, tracker.countCalls("comment"))
	assert.Equal(t, 3, tracker.countCalls("subtask"))

	subtasks := 0
	for _, a := range attempts {
		if a.Op == "subtask" {
			subtasks++
			assert.Equal(t, OutcomeApplied, a.Outcome.Kind)
		}
	}
	assert.Equal(t, 3, subtasks)
}

func TestBridgeRemediationSubtasksFailFast(t *testing.T) {
	tracker := &fakeTracker{subtaskErr: fmt.Errorf("403 forbidden")}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	steps := []Step{{Summary: "a"}, {Summary: "b"}, {Summary: "c"}}
	attempts := bridge.SyncUpdate(map[string]any{"remediation_steps": steps})

	// The comment lands, the first subtask fails, the rest are not attempted.
	assert.Equal(t, 1, tracker.countCalls("comment"))
	assert.Equal(t, 1, tracker.countCalls("subtask"))

	subtask := findAttempt(t, attempts, "subtask")
	assert.Equal(t, OutcomeFailed, subtask.Outcome.Kind)
}

func TestBridgeWorklog(t *testing.T) {
	tracker := &fakeTracker{}
	bridge := NewBridge("T-1", "s", "d", liveConfig(), tracker, nil)

	attempts := bridge.SyncUpdate(map[string]any{
		"time_spent_seconds": 1800,
		"worklog_comment":    "mitigation work",
	})

	assert.Equal(t, OutcomeApplied, findAttempt(t, attempts, "worklog").Outcome.Kind)
	assert.Contains(t, tracker.calls, "worklog PROJ-1 1800")
}

// findAttempt returns the first attempt with the given op.
func findAttempt(t *testing.T, attempts []Attempt, op string) Attempt {
	t.Helper()
	for _, a := range attempts {
		if a.Op == op {
			return a
		}
	}
	t.Fatalf("no attempt with op %q in %v", op, attempts)
	return Attempt{}
}

// -------------------- Helper Tests --------------------

func TestComposeRemediationComment(t *testing.T) {
	body := composeRemediationComment([]Step{
		{Summary: "Restart service", Description: "Rolling restart"},
		{Summary: "Verify metrics"},
	})

	assert.Contains(t, body, "1. Restart service")
	assert.Contains(t, body, "Details: Rolling restart")
	assert.Contains(t, body, "2. Verify metrics")
	assert.Contains(t, body, "All remediation actions completed.")
}

func TestParseSteps(t *testing.T) {
	typed := parseSteps([]Step{{Summary: "a"}})
	assert.Equal(t, "a", typed[0].Summary)

	fromMaps := parseSteps([]any{
		map[string]any{"summary": "b", "description": "detail"},
		map[string]any{},
	})
	require.Len(t, fromMaps, 2)
	assert.Equal(t, "b", fromMaps[0].Summary)
	assert.Equal(t, "detail", fromMaps[0].Description)
	assert.Equal(t, "Remediation step", fromMaps[1].Summary)

	assert.Nil(t, parseSteps("not a list"))
}

func TestAttemptDocument(t *testing.T) {
	doc := Attempt{Op: "transition", Target: "Done", Outcome: Failed(fmt.Errorf("boom"))}.Document()
	assert.Equal(t, "transition", doc["op"])
	assert.Equal(t, "failed", doc["outcome"])
	assert.Equal(t, "boom", doc["cause"])

	doc = Attempt{Op: "transition", Target: "X", Outcome: Skipped("no mapping")}.Document()
	assert.Equal(t, "no mapping", doc["reason"])
	_, hasCause := doc["cause"]
	assert.False(t, hasCause)
}
