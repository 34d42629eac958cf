package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNilTracker(t *testing.T) {
	resolved := Resolve(nil, nil)

	assert.Equal(t, ModeSimulated, resolved.Mode)
	assert.Equal(t, DefaultProjectKey, resolved.Tracker.ProjectKey)
	assert.Equal(t, DefaultIssueType, resolved.Tracker.IssueType)
	assert.Equal(t, "Done", resolved.Tracker.StatusMap["resolved"])
}

func TestResolvePartialCredentials(t *testing.T) {
	resolved := Resolve(&Tracker{BaseURL: "https://tracker.example.com"}, nil)
	assert.Equal(t, ModeSimulated, resolved.Mode)
}

func TestResolveComplete(t *testing.T) {
	resolved := Resolve(&Tracker{
		BaseURL:  "https://tracker.example.com",
		Username: "svc-incidents",
		Token:    "secret",
	}, nil)

	assert.Equal(t, ModeLive, resolved.Mode)
	// Optional fields still default.
	assert.Equal(t, DefaultProjectKey, resolved.Tracker.ProjectKey)
	assert.Equal(t, DefaultIssueType, resolved.Tracker.IssueType)
}

func TestResolveKeepsExplicitValues(t *testing.T) {
	resolved := Resolve(&Tracker{
		BaseURL:    "https://tracker.example.com",
		Username:   "svc-incidents",
		Token:      "secret",
		ProjectKey: "OPS",
		IssueType:  "Bug",
		StatusMap:  map[string]string{"resolved": "Closed"},
	}, nil)

	assert.Equal(t, "OPS", resolved.Tracker.ProjectKey)
	assert.Equal(t, "Bug", resolved.Tracker.IssueType)
	assert.Equal(t, "Closed", resolved.Tracker.StatusMap["resolved"])
	// A custom status map replaces the default wholesale.
	_, ok := resolved.Tracker.StatusMap["investigating"]
	assert.False(t, ok)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "simulated", ModeSimulated.String())
	assert.Equal(t, "live", ModeLive.String())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("JIRA_BASE_URL", "https://tracker.example.com")
	t.Setenv("JIRA_USERNAME", "svc-incidents")
	t.Setenv("JIRA_TOKEN", "secret")
	t.Setenv("JIRA_PROJECT_KEY", "OPS")
	t.Setenv("JIRA_ISSUE_TYPE", "")

	tracker := FromEnv()
	require.NotNil(t, tracker)
	assert.True(t, tracker.Complete())
	assert.Equal(t, "OPS", tracker.ProjectKey)
}

func TestFromEnvUnset(t *testing.T) {
	t.Setenv("JIRA_BASE_URL", "")
	t.Setenv("JIRA_USERNAME", "")
	t.Setenv("JIRA_TOKEN", "")

	assert.Nil(t, FromEnv())
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.toml")
	content := `
base_url = "https://tracker.example.com"
username = "svc-incidents"
token = "secret"
project_key = "OPS"

[status_map]
resolved = "Done"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tracker, err := FromFile(path)
	require.NoError(t, err)
	assert.True(t, tracker.Complete())
	assert.Equal(t, "OPS", tracker.ProjectKey)
	assert.Equal(t, "Done", tracker.StatusMap["resolved"])
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
