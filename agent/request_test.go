package agent

import (
	"testing"

	"github.com/hupe1980/incidentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCreateIncident(t *testing.T) {
	msg := core.NewMessage(core.RoleUser).AddDataPart(map[string]any{
		"create_incident": map[string]any{
			"title":            "t",
			"description":      "d",
			"severity":         "high",
			"affected_systems": []any{"db-primary", 42},
			"tags":             []string{"db"},
		},
	})

	req, ok := DecodeRequest(msg).(CreateIncident)
	require.True(t, ok)
	assert.Equal(t, "t", req.Title)
	assert.Equal(t, "high", req.Severity)
	// Non-string entries are dropped, not errors.
	assert.Equal(t, []string{"db-primary"}, req.AffectedSystems)
	assert.Equal(t, []string{"db"}, req.Tags)
}

func TestDecodeUpdateIncident(t *testing.T) {
	msg := core.NewMessage(core.RoleUser).AddDataPart(map[string]any{
		"update_incident": map[string]any{
			"incident_id": "INC-1",
			"status":      "resolved",
			"notes":       "done",
			"attachments": []string{"/tmp/a.log"},
			"remediation_steps": []any{
				map[string]any{"summary": "restart", "description": "rolling"},
			},
		},
	})

	req, ok := DecodeRequest(msg).(UpdateIncident)
	require.True(t, ok)
	assert.Equal(t, "INC-1", req.IncidentID)
	assert.Equal(t, "resolved", req.Status)
	require.Len(t, req.RemediationSteps, 1)
	assert.Equal(t, "restart", req.RemediationSteps[0].Summary)
}

func TestDecodeLookupRequests(t *testing.T) {
	cases := map[string]Request{
		"get_incident_status":   GetIncidentStatus{IncidentID: "INC-1"},
		"analyze_incident":      AnalyzeIncident{IncidentID: "INC-1"},
		"get_diagnostic_report": GetDiagnosticReport{IncidentID: "INC-1"},
		"implement_resolution":  ImplementResolution{IncidentID: "INC-1"},
		"get_resolution_status": GetResolutionStatus{IncidentID: "INC-1"},
	}

	for key, want := range cases {
		msg := core.NewMessage(core.RoleUser).AddDataPart(map[string]any{
			key: map[string]any{"incident_id": "INC-1"},
		})
		assert.Equal(t, want, DecodeRequest(msg), key)
	}
}

func TestDecodeUnknown(t *testing.T) {
	msg := core.NewMessage(core.RoleUser).AddDataPart(map[string]any{
		"zebra": 1, "apple": 2,
	})

	req, ok := DecodeRequest(msg).(Unknown)
	require.True(t, ok)
	assert.Equal(t, []string{"apple", "zebra"}, req.Keys)
}

func TestDecodeTextOnlyMessage(t *testing.T) {
	msg := core.NewMessage(core.RoleUser).AddTextPart("please help")
	_, ok := DecodeRequest(msg).(Unknown)
	assert.True(t, ok)
}

func TestDecodeNilBody(t *testing.T) {
	// A recognized key with a non-map body still decodes to the typed
	// request with zero values.
	msg := core.NewMessage(core.RoleUser).AddDataPart(map[string]any{
		"analyze_incident": "oops",
	})
	req, ok := DecodeRequest(msg).(AnalyzeIncident)
	require.True(t, ok)
	assert.Empty(t, req.IncidentID)
}
