package core

import "fmt"

var (
	// ErrTaskNotFound is returned when the task table has no entry for the
	// requested task id.
	ErrTaskNotFound = fmt.Errorf("task not found")
)

// IllegalTransitionError reports an attempted task state regression. It is a
// programming-invariant violation: callers should treat it as fatal rather
// than silently correcting the state.
type IllegalTransitionError struct {
	TaskID string
	From   TaskState
	To     TaskState
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal task transition for %s: %s -> %s", e.TaskID, e.From, e.To)
}
