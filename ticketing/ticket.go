package ticketing

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTicketNotFound is returned when no ticket exists for the requested id.
var ErrTicketNotFound = fmt.Errorf("ticket not found")

// Ticket is the local, authoritative record of a support ticket. It is
// mutated only through the store's Create/Apply operations.
type Ticket struct {
	ID               string
	Status           string
	Data             map[string]any
	ExternalIssueKey string
	ExternalIssueURL string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Clone returns a deep copy, detached from the store's record.
func (t *Ticket) Clone() *Ticket {
	c := *t
	c.Data = copyDoc(t.Data)
	return &c
}

// Document renders the ticket as a structured payload.
func (t *Ticket) Document() map[string]any {
	doc := make(map[string]any, len(t.Data)+6)
	for k, v := range t.Data {
		doc[k] = v
	}
	doc["ticket_id"] = t.ID
	doc["status"] = t.Status
	doc["created_at"] = t.CreatedAt.Format(time.RFC3339)
	doc["updated_at"] = t.UpdatedAt.Format(time.RFC3339)
	if t.ExternalIssueKey != "" {
		doc["external_issue_key"] = t.ExternalIssueKey
	}
	if t.ExternalIssueURL != "" {
		doc["external_issue_url"] = t.ExternalIssueURL
	}
	return doc
}

// Store holds tickets keyed by id. All mutations are serialized by a single
// lock; for one ticket, updates land on the local record in invocation order.
type Store struct {
	mu      sync.RWMutex
	tickets map[string]*Ticket
}

// NewStore constructs an empty ticket store.
func NewStore() *Store {
	return &Store{tickets: make(map[string]*Ticket)}
}

// Create stores a new ticket built from data. The ticket id is the incident
// id when present, otherwise a fresh uuid.
func (s *Store) Create(data map[string]any) *Ticket {
	id, _ := data["incident_id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	status, _ := data["status"].(string)
	if status == "" {
		status = "open"
	}

	now := time.Now()
	t := &Ticket{
		ID:        id,
		Status:    status,
		Data:      copyDoc(data),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[id] = t
	return t.Clone()
}

// Get returns a copy of the ticket or ErrTicketNotFound. Callers never see
// the live record, so reads stay safe against concurrent Apply calls.
func (s *Store) Get(id string) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	return t.Clone(), nil
}

// Apply merges data into the ticket unconditionally; the local record is
// authoritative and always succeeds if the ticket exists.
func (s *Store) Apply(id string, data map[string]any) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	for k, v := range data {
		t.Data[k] = v
	}
	if status, ok := data["status"].(string); ok && status != "" {
		t.Status = status
	}
	t.UpdatedAt = time.Now()
	return t.Clone(), nil
}

// setExternal records the external issue key/url obtained by the bridge.
func (s *Store) setExternal(id, issueKey, issueURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tickets[id]; ok {
		t.ExternalIssueKey = issueKey
		t.ExternalIssueURL = issueURL
	}
}

func copyDoc(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
