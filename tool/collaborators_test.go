package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Interface compliance checks for the collaborator tools.
var (
	_ Tool = (*LogAnalyzerTool)(nil)
	_ Tool = (*SystemMonitorTool)(nil)
	_ Tool = (*KnowledgeBaseTool)(nil)
	_ Tool = (*DeploymentTool)(nil)
	_ Tool = (*AlertTool)(nil)
)

func TestLogAnalyzer(t *testing.T) {
	la := NewLogAnalyzerTool()

	res, err := la.Execute(map[string]any{"system": "db-primary"})
	assert.NoError(t, err)
	assert.Equal(t, "db-primary", res.Data["system"])
	findings, _ := res.Data["findings"].([]any)
	assert.NotEmpty(t, findings)

	_, err = la.Execute(map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestSystemMonitor(t *testing.T) {
	sm := NewSystemMonitorTool()

	res, err := sm.Execute(map[string]any{"system": "api-gateway"})
	assert.NoError(t, err)
	metrics, _ := res.Data["metrics"].(map[string]any)
	assert.Contains(t, metrics, "cpu_percent")
	assert.Contains(t, metrics, "open_connections")
}

func TestKnowledgeBaseSearch(t *testing.T) {
	kb := NewKnowledgeBaseTool()

	res, err := kb.Execute(map[string]any{"query": "database connection pool exhausted"})
	assert.NoError(t, err)
	articles, _ := res.Data["articles"].([]any)
	if len(articles) == 0 {
		t.Fatalf("expected at least one matching article")
	}
	first, _ := articles[0].(map[string]any)
	assert.Equal(t, "KB-1001", first["article_id"])

	// A query matching nothing yields an empty result, not an error.
	res, err = kb.Execute(map[string]any{"query": "zzzzzz"})
	assert.NoError(t, err)
	articles, _ = res.Data["articles"].([]any)
	assert.Empty(t, articles)
}

func TestDeploymentActions(t *testing.T) {
	dep := NewDeploymentTool()

	res, err := dep.Execute(map[string]any{"action": "restart_service", "system": "db-primary"})
	assert.NoError(t, err)
	assert.Equal(t, "applied", res.Data["state"])
	assert.Contains(t, res.Data["change_id"], "CHG-")

	_, err = dep.Execute(map[string]any{"action": "format_disk", "system": "db-primary"})
	assert.Error(t, err)
	toolErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestAlertToolRecords(t *testing.T) {
	alerts := NewAlertTool()

	res, err := alerts.Execute(map[string]any{
		"recipients": []any{"it-team@example.com"},
		"subject":    "Incident resolved",
		"message":    "All clear",
		"severity":   "info",
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)

	sent := alerts.Sent()
	assert.Len(t, sent, 1)
	assert.Equal(t, []string{"it-team@example.com"}, sent[0].Recipients)
	assert.Equal(t, "Incident resolved", sent[0].Subject)

	// Missing required fields are rejected before anything is recorded.
	_, err = alerts.Execute(map[string]any{"subject": "broken"})
	assert.Error(t, err)
	assert.Len(t, alerts.Sent(), 1)
}
