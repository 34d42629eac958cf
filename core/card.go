package core

// Capability describes one operation an agent advertises. The parameter
// schema follows the minimal JSON-Schema-like shape used by the tool
// subsystem. Capabilities are immutable and declared at agent construction.
type Capability struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// AgentCard is the immutable identity record of an agent.
type AgentCard struct {
	ID           string
	Name         string
	Description  string
	Version      string
	Endpoint     string
	Capabilities []Capability
}

// Capability returns the declared capability with the given name, if any.
func (c AgentCard) Capability(name string) (Capability, bool) {
	for _, cap := range c.Capabilities {
		if cap.Name == name {
			return cap, true
		}
	}
	return Capability{}, false
}
