// Package config holds the external issue tracker configuration surface.
// Configuration can come from environment variables or a TOML file; in both
// cases Resolve decides exactly once whether the bridge runs live or in
// simulated mode. There is a single fallback branch: anything short of a
// complete base URL / username / token triple is simulated.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hupe1980/incidentmesh/logging"
)

// Defaults applied when the optional fields are not configured.
const (
	DefaultProjectKey = "PROJ"
	DefaultIssueType  = "Task"
)

// Tracker describes how to reach the external issue tracker and how internal
// incident statuses map onto its workflow transitions.
type Tracker struct {
	BaseURL    string            `toml:"base_url"`
	Username   string            `toml:"username"`
	Token      string            `toml:"token"`
	ProjectKey string            `toml:"project_key"`
	IssueType  string            `toml:"issue_type"`
	StatusMap  map[string]string `toml:"status_map"`
}

// Complete reports whether all credentials required for live operation are
// present.
func (t *Tracker) Complete() bool {
	return t != nil && t.BaseURL != "" && t.Username != "" && t.Token != ""
}

// partial reports whether some but not all credentials are present, i.e. a
// recognized misconfiguration.
func (t *Tracker) partial() bool {
	if t == nil {
		return false
	}
	return !t.Complete() && (t.BaseURL != "" || t.Username != "" || t.Token != "")
}

// Mode states whether external sync talks to a real tracker or synthesizes
// results locally.
type Mode int

const (
	// ModeSimulated synthesizes placeholder results; no external calls happen.
	ModeSimulated Mode = iota
	// ModeLive performs best-effort calls against the configured tracker.
	ModeLive
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "simulated"
}

// Resolved is the outcome of configuration resolution: settings with defaults
// applied plus the mode decided once at startup.
type Resolved struct {
	Tracker Tracker
	Mode    Mode
}

// DefaultStatusMap maps incident lifecycle statuses onto common tracker
// workflow transition names. Entries may be absent for a given workflow; the
// bridge treats a missing entry as "no mapping", not an error.
func DefaultStatusMap() map[string]string {
	return map[string]string{
		"investigating": "In Progress",
		"identified":    "To Do",
		"resolving":     "In Progress",
		"resolved":      "Done",
		"closed":        "Done",
	}
}

// Resolve applies defaults and decides the sync mode. A nil tracker or an
// incomplete credential triple resolves to simulated mode; partial
// credentials additionally log a misconfiguration warning.
func Resolve(t *Tracker, logger logging.Logger) Resolved {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	if !t.Complete() {
		if t.partial() {
			logger.Warn("Incomplete tracker configuration: set all of base URL, username and token. Falling back to simulated mode.")
		} else {
			logger.Info("External tracker not configured. Using simulated mode.")
		}
		return Resolved{Tracker: withDefaults(t), Mode: ModeSimulated}
	}

	return Resolved{Tracker: withDefaults(t), Mode: ModeLive}
}

func withDefaults(t *Tracker) Tracker {
	out := Tracker{}
	if t != nil {
		out = *t
	}
	if out.ProjectKey == "" {
		out.ProjectKey = DefaultProjectKey
	}
	if out.IssueType == "" {
		out.IssueType = DefaultIssueType
	}
	if out.StatusMap == nil {
		out.StatusMap = DefaultStatusMap()
	}
	return out
}

// FromEnv reads tracker configuration from JIRA_* environment variables.
// Returns nil when none of the credential variables are set.
func FromEnv() *Tracker {
	baseURL := os.Getenv("JIRA_BASE_URL")
	username := os.Getenv("JIRA_USERNAME")
	token := os.Getenv("JIRA_TOKEN")

	if baseURL == "" && username == "" && token == "" {
		return nil
	}

	return &Tracker{
		BaseURL:    baseURL,
		Username:   username,
		Token:      token,
		ProjectKey: os.Getenv("JIRA_PROJECT_KEY"),
		IssueType:  os.Getenv("JIRA_ISSUE_TYPE"),
	}
}

// FromFile loads tracker configuration from a TOML file.
func FromFile(path string) (*Tracker, error) {
	var t Tracker
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
