package tool

import (
	"sync"
	"time"
)

// Alert is one notification recorded by the alert tool.
type Alert struct {
	Recipients []string
	Subject    string
	Message    string
	Severity   string
	SentAt     time.Time
}

// AlertTool is the notification collaborator. Delivery is simulated; sent
// alerts are retained in memory so callers (and tests) can inspect them.
type AlertTool struct {
	Base

	mu    sync.Mutex
	alert []Alert
}

// NewAlertTool constructs the simulated alert system.
func NewAlertTool() *AlertTool {
	return &AlertTool{Base: Base{
		BaseID:          "alert-system",
		BaseType:        TypeAlert,
		BaseName:        "Alert System",
		BaseDescription: "Sends notifications to incident stakeholders",
		BaseParameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"recipients": map[string]any{"type": "array", "description": "Notification recipients"},
				"subject":    map[string]any{"type": "string", "description": "Alert subject"},
				"message":    map[string]any{"type": "string", "description": "Alert body"},
				"severity":   map[string]any{"type": "string", "description": "Alert severity"},
			},
			"required": []string{"recipients", "subject", "message"},
		},
	}}
}

// Execute records the alert and acknowledges delivery.
func (t *AlertTool) Execute(params map[string]any) (Result, error) {
	if err := t.Validate(params); err != nil {
		return Result{}, err
	}

	severity, _ := params["severity"].(string)
	if severity == "" {
		severity = "info"
	}
	subject, _ := params["subject"].(string)
	message, _ := params["message"].(string)

	a := Alert{
		Recipients: toStrings(params["recipients"]),
		Subject:    subject,
		Message:    message,
		Severity:   severity,
		SentAt:     time.Now(),
	}

	t.mu.Lock()
	t.alert = append(t.alert, a)
	count := len(t.alert)
	t.mu.Unlock()

	return Success(map[string]any{"delivered": true, "alert_count": count}), nil
}

// Sent returns a copy of all recorded alerts.
func (t *AlertTool) Sent() []Alert {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Alert, len(t.alert))
	copy(out, t.alert)
	return out
}

// toStrings normalizes a []string or []any parameter into []string.
func toStrings(v any) []string {
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
