package incident

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository is a volatile Repository implementation storing
// incidents in a process local map. It is safe for concurrent access. Each
// returned incident is cloned to prevent external mutation of internal state.
type InMemoryRepository struct {
	mu        sync.RWMutex
	incidents map[string]*Incident
}

// NewInMemoryRepository constructs an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{incidents: make(map[string]*Incident)}
}

// Create stores a new incident and returns its id.
func (r *InMemoryRepository) Create(p Params) (string, error) {
	severity := p.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	now := time.Now()
	inc := &Incident{
		ID:              "INC-" + uuid.NewString()[:8],
		Title:           p.Title,
		Description:     p.Description,
		Severity:        severity,
		AffectedSystems: append([]string(nil), p.AffectedSystems...),
		Tags:            append([]string(nil), p.Tags...),
		Status:          StatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.incidents[inc.ID] = inc
	return inc.ID, nil
}

// Get returns a copy of the incident or ErrNotFound.
func (r *InMemoryRepository) Get(id string) (*Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inc, ok := r.incidents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return inc.Clone(), nil
}

// UpdateStatus sets the lifecycle status and optionally appends a note.
func (r *InMemoryRepository) UpdateStatus(id, status, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	inc.Status = status
	if note != "" {
		inc.Notes = append(inc.Notes, note)
	}
	inc.UpdatedAt = time.Now()
	return nil
}

// Assign records the current owner of the incident.
func (r *InMemoryRepository) Assign(id, assignee string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	inc.AssignedTo = assignee
	inc.UpdatedAt = time.Now()
	return nil
}

// AddNote appends a free-form note.
func (r *InMemoryRepository) AddNote(id, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	inc.Notes = append(inc.Notes, note)
	inc.UpdatedAt = time.Now()
	return nil
}

// SetMetadata stores a metadata key/value pair.
func (r *InMemoryRepository) SetMetadata(id, key string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if inc.Metadata == nil {
		inc.Metadata = map[string]any{}
	}
	inc.Metadata[key] = value
	inc.UpdatedAt = time.Now()
	return nil
}

// List returns copies of all incidents.
func (r *InMemoryRepository) List() []*Incident {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Incident, 0, len(r.incidents))
	for _, inc := range r.incidents {
		out = append(out, inc.Clone())
	}
	return out
}
