package core

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// DataPart is a structured data segment (JSON-shaped key/value document).
type DataPart struct {
	Data map[string]any
}

// isPart implements the Part interface for DataPart.
func (DataPart) isPart() {}
