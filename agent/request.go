package agent

import (
	"sort"

	"github.com/hupe1980/incidentmesh/core"
	"github.com/hupe1980/incidentmesh/ticketing"
)

// Request is the closed union of payloads an agent can receive. Concrete
// request types implement the unexported isRequest marker.
type Request interface{ isRequest() }

// CreateIncident asks the coordinator to open a new incident.
type CreateIncident struct {
	Title           string
	Description     string
	Severity        string
	AffectedSystems []string
	Tags            []string
}

func (CreateIncident) isRequest() {}

// UpdateIncident asks the coordinator to advance an incident's lifecycle.
type UpdateIncident struct {
	IncidentID       string
	Status           string
	Notes            string
	Attachments      []string
	RemediationSteps []ticketing.Step
}

func (UpdateIncident) isRequest() {}

// GetIncidentStatus asks the coordinator for the current incident record.
type GetIncidentStatus struct {
	IncidentID string
}

func (GetIncidentStatus) isRequest() {}

// AnalyzeIncident asks the diagnostic agent to investigate an incident.
type AnalyzeIncident struct {
	IncidentID string
}

func (AnalyzeIncident) isRequest() {}

// GetDiagnosticReport asks the diagnostic agent for a cached report.
type GetDiagnosticReport struct {
	IncidentID string
}

func (GetDiagnosticReport) isRequest() {}

// ImplementResolution asks the resolution agent to remediate an incident.
type ImplementResolution struct {
	IncidentID string
}

func (ImplementResolution) isRequest() {}

// GetResolutionStatus asks the resolution agent for a cached status.
type GetResolutionStatus struct {
	IncidentID string
}

func (GetResolutionStatus) isRequest() {}

// Unknown carries the payload keys of a request no agent recognizes.
// Receiving it is a defined condition, not an error.
type Unknown struct {
	Keys []string
}

func (Unknown) isRequest() {}

// DecodeRequest inspects the first structured part of a message for a
// recognized request key and builds the corresponding typed request. A
// message without a structured part, or with only unrecognized keys, decodes
// to Unknown.
func DecodeRequest(msg *core.Message) Request {
	data := msg.FirstData()
	if data == nil {
		return Unknown{}
	}

	if body, ok := payload(data, "create_incident"); ok {
		return CreateIncident{
			Title:           str(body, "title"),
			Description:     str(body, "description"),
			Severity:        str(body, "severity"),
			AffectedSystems: strs(body, "affected_systems"),
			Tags:            strs(body, "tags"),
		}
	}
	if body, ok := payload(data, "update_incident"); ok {
		return UpdateIncident{
			IncidentID:       str(body, "incident_id"),
			Status:           str(body, "status"),
			Notes:            str(body, "notes"),
			Attachments:      strs(body, "attachments"),
			RemediationSteps: steps(body["remediation_steps"]),
		}
	}
	if body, ok := payload(data, "get_incident_status"); ok {
		return GetIncidentStatus{IncidentID: str(body, "incident_id")}
	}
	if body, ok := payload(data, "analyze_incident"); ok {
		return AnalyzeIncident{IncidentID: str(body, "incident_id")}
	}
	if body, ok := payload(data, "get_diagnostic_report"); ok {
		return GetDiagnosticReport{IncidentID: str(body, "incident_id")}
	}
	if body, ok := payload(data, "implement_resolution"); ok {
		return ImplementResolution{IncidentID: str(body, "incident_id")}
	}
	if body, ok := payload(data, "get_resolution_status"); ok {
		return GetResolutionStatus{IncidentID: str(body, "incident_id")}
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Unknown{Keys: keys}
}

func payload(data map[string]any, key string) (map[string]any, bool) {
	v, ok := data[key]
	if !ok {
		return nil, false
	}
	body, _ := v.(map[string]any)
	if body == nil {
		body = map[string]any{}
	}
	return body, true
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func strs(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func steps(v any) []ticketing.Step {
	switch vv := v.(type) {
	case []ticketing.Step:
		return vv
	case []any:
		out := make([]ticketing.Step, 0, len(vv))
		for _, item := range vv {
			if m, ok := item.(map[string]any); ok {
				out = append(out, ticketing.Step{
					Summary:     str(m, "summary"),
					Description: str(m, "description"),
				})
			}
		}
		return out
	default:
		return nil
	}
}
