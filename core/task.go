package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskState enumerates the lifecycle states of a task.
type TaskState string

const (
	// TaskStateSubmitted is the initial state of a freshly created task.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateWorking marks a task whose owning agent is processing it.
	TaskStateWorking TaskState = "working"
	// TaskStateCompleted is the successful terminal state.
	TaskStateCompleted TaskState = "completed"
	// TaskStateFailed is the unsuccessful terminal state.
	TaskStateFailed TaskState = "failed"
	// TaskStateCancelled marks a task abandoned before completion.
	TaskStateCancelled TaskState = "cancelled"
)

// rank orders states along the allowed progression. Terminal states share a
// rank so no terminal state can follow another.
func (s TaskState) rank() int {
	switch s {
	case TaskStateSubmitted:
		return 0
	case TaskStateWorking:
		return 1
	case TaskStateCompleted, TaskStateFailed, TaskStateCancelled:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether the state ends the task lifecycle.
func (s TaskState) Terminal() bool { return s.rank() == 2 }

// Task is one unit of work owned by the agent that created it. It carries an
// ordered, append-only message history and a monotonic lifecycle state. Task
// is safe for concurrent access.
type Task struct {
	ID      string
	AgentID string
	Created time.Time

	mu       sync.RWMutex
	state    TaskState
	messages []*Message
}

// NewTask creates a task in the SUBMITTED state with the initial message
// appended.
func NewTask(agentID string, initial *Message) *Task {
	t := &Task{
		ID:      uuid.NewString(),
		AgentID: agentID,
		Created: time.Now(),
		state:   TaskStateSubmitted,
	}
	if initial != nil {
		t.messages = append(t.messages, initial)
	}
	return t
}

// State returns the current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// UpdateState advances the task to next. It fails with an
// *IllegalTransitionError if next does not strictly follow the current state
// in the SUBMITTED → WORKING → terminal ordering.
func (t *Task) UpdateState(next TaskState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if next.rank() <= t.state.rank() {
		return &IllegalTransitionError{TaskID: t.ID, From: t.state, To: next}
	}
	t.state = next
	return nil
}

// AddMessage appends a message to the history. There is no constraint on
// sender alternation.
func (t *Task) AddMessage(msg *Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Messages returns a defensive copy of the message history.
func (t *Task) Messages() []*Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// ResponseData returns the first structured payload of the first agent
// message, which by convention carries the dispatch result.
func (t *Task) ResponseData() map[string]any {
	for _, msg := range t.Messages() {
		if msg.Role == RoleAgent {
			if data := msg.FirstData(); data != nil {
				return data
			}
		}
	}
	return nil
}

// TaskStore is an agent-local task table keyed by task id. It is safe for
// concurrent access.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskStore constructs an empty task table.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task)}
}

// Create allocates a new task for agentID with the initial message and stores
// it, returning the task.
func (s *TaskStore) Create(agentID string, initial *Message) *Task {
	t := NewTask(agentID, initial)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return t
}

// Get returns the task with the given id or ErrTaskNotFound.
func (s *TaskStore) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, nil
}

// Len returns the number of stored tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
