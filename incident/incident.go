// Package incident holds the incident record model and the repository
// abstraction through which agents and tools read and mutate incidents. The
// repository is constructed once and injected; nothing in this package is a
// process-global singleton.
package incident

import (
	"fmt"
	"time"
)

// Severity levels accepted for an incident.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Lifecycle statuses of an incident.
const (
	StatusOpen          = "open"
	StatusInvestigating = "investigating"
	StatusIdentified    = "identified"
	StatusResolving     = "resolving"
	StatusResolved      = "resolved"
	StatusClosed        = "closed"
)

// ErrNotFound is returned when no incident exists for the requested id.
var ErrNotFound = fmt.Errorf("incident not found")

// Incident is one tracked service disruption.
type Incident struct {
	ID              string         `json:"incident_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Severity        string         `json:"severity"`
	AffectedSystems []string       `json:"affected_systems"`
	Tags            []string       `json:"tags"`
	Status          string         `json:"status"`
	AssignedTo      string         `json:"assigned_to,omitempty"`
	Notes           []string       `json:"notes,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Clone returns a deep copy safe for independent mutation.
func (i *Incident) Clone() *Incident {
	c := *i
	c.AffectedSystems = append([]string(nil), i.AffectedSystems...)
	c.Tags = append([]string(nil), i.Tags...)
	c.Notes = append([]string(nil), i.Notes...)
	if i.Metadata != nil {
		c.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Document renders the incident as a structured payload for message parts and
// ticket data.
func (i *Incident) Document() map[string]any {
	doc := map[string]any{
		"incident_id":      i.ID,
		"title":            i.Title,
		"description":      i.Description,
		"severity":         i.Severity,
		"affected_systems": append([]string(nil), i.AffectedSystems...),
		"tags":             append([]string(nil), i.Tags...),
		"status":           i.Status,
		"created_at":       i.CreatedAt.Format(time.RFC3339),
		"updated_at":       i.UpdatedAt.Format(time.RFC3339),
	}
	if i.AssignedTo != "" {
		doc["assigned_to"] = i.AssignedTo
	}
	if len(i.Notes) > 0 {
		doc["notes"] = append([]string(nil), i.Notes...)
	}
	if len(i.Metadata) > 0 {
		meta := make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			meta[k] = v
		}
		doc["metadata"] = meta
	}
	return doc
}

// Params carries the caller supplied fields for creating an incident.
type Params struct {
	Title           string
	Description     string
	Severity        string
	AffectedSystems []string
	Tags            []string
}

// Repository is the collaborator interface the agent runtime consumes.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create stores a new incident and returns its id.
	Create(p Params) (string, error)
	// Get returns a copy of the incident or ErrNotFound.
	Get(id string) (*Incident, error)
	// UpdateStatus sets the lifecycle status and optionally appends a note.
	UpdateStatus(id, status, note string) error
	// Assign records the current owner of the incident.
	Assign(id, assignee string) error
	// AddNote appends a free-form note.
	AddNote(id, note string) error
	// SetMetadata stores a metadata key/value pair (e.g. an external issue key).
	SetMetadata(id, key string, value any) error
	// List returns copies of all incidents.
	List() []*Incident
}
