package core

import "github.com/google/uuid"

// Role identifies the producer of a message.
type Role string

const (
	// RoleUser marks messages originating from outside the agent mesh.
	RoleUser Role = "user"
	// RoleAgent marks messages produced by an agent.
	RoleAgent Role = "agent"
)

// Message is the envelope exchanged between a caller and an agent. It is
// built incrementally by the producer (AddTextPart/AddDataPart) and must be
// treated as immutable once attached to a Task.
type Message struct {
	ID       string
	Role     Role
	Parts    []Part
	Metadata map[string]string
}

// NewMessage allocates a message with a fresh id for the given role.
func NewMessage(role Role) *Message {
	return &Message{ID: uuid.NewString(), Role: role}
}

// AddTextPart appends a plain text part.
func (m *Message) AddTextPart(text string) *Message {
	m.Parts = append(m.Parts, TextPart{Text: text})
	return m
}

// AddDataPart appends a structured data part.
func (m *Message) AddDataPart(data map[string]any) *Message {
	m.Parts = append(m.Parts, DataPart{Data: data})
	return m
}

// SetMetadata attaches a metadata key/value pair (e.g. an idempotency key).
func (m *Message) SetMetadata(key, value string) *Message {
	if m.Metadata == nil {
		m.Metadata = map[string]string{}
	}
	m.Metadata[key] = value
	return m
}

// FirstData returns the payload of the first structured part, or nil if the
// message carries none.
func (m *Message) FirstData() map[string]any {
	for _, p := range m.Parts {
		if dp, ok := p.(DataPart); ok {
			return dp.Data
		}
	}
	return nil
}

// Texts returns all plain text segments in order.
func (m *Message) Texts() []string {
	var out []string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			out = append(out, tp.Text)
		}
	}
	return out
}
