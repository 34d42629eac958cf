package ticketing

// OutcomeKind classifies the result of one external sync attempt.
type OutcomeKind string

const (
	// OutcomeApplied means the external call was made and succeeded.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomeSkipped means the attempt was not made (e.g. no status mapping).
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeSimulated means a placeholder result was synthesized without an
	// external call.
	OutcomeSimulated OutcomeKind = "simulated"
	// OutcomeFailed means the external call was attempted and did not succeed.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the typed result of one best-effort sync attempt. A Failed
// outcome never propagates as an error to ticket operations; it is recorded
// here and logged.
type Outcome struct {
	Kind   OutcomeKind
	Reason string // Populated for Skipped
	Cause  error  // Populated for Failed
}

// Applied builds an Applied outcome.
func Applied() Outcome { return Outcome{Kind: OutcomeApplied} }

// Skipped builds a Skipped outcome with the given reason.
func Skipped(reason string) Outcome { return Outcome{Kind: OutcomeSkipped, Reason: reason} }

// Simulated builds a Simulated outcome.
func Simulated() Outcome { return Outcome{Kind: OutcomeSimulated} }

// Failed builds a Failed outcome wrapping the cause.
func Failed(cause error) Outcome { return Outcome{Kind: OutcomeFailed, Cause: cause} }

// Attempt pairs one sync operation with its outcome.
type Attempt struct {
	Op      string // transition, comment, attachment, subtask, worklog, create
	Target  string // External issue key (or transition / subtask detail)
	Outcome Outcome
}

// Document renders an attempt as a structured payload for tool results.
func (a Attempt) Document() map[string]any {
	doc := map[string]any{
		"op":      a.Op,
		"target":  a.Target,
		"outcome": string(a.Outcome.Kind),
	}
	if a.Outcome.Reason != "" {
		doc["reason"] = a.Outcome.Reason
	}
	if a.Outcome.Cause != nil {
		doc["cause"] = a.Outcome.Cause.Error()
	}
	return doc
}

// documents renders a slice of attempts.
func documents(attempts []Attempt) []any {
	out := make([]any, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, a.Document())
	}
	return out
}
