package ticketing

import (
	"fmt"
	"os"
	"path/filepath"

	jira "github.com/andygrunwald/go-jira"
	"github.com/hupe1980/incidentmesh/config"
)

// jiraTracker implements Tracker against a Jira instance using basic auth.
type jiraTracker struct {
	client     *jira.Client
	projectKey string
}

// NewJiraTracker builds a live Tracker from complete tracker settings.
func NewJiraTracker(cfg config.Tracker) (Tracker, error) {
	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create jira client: %w", err)
	}

	return &jiraTracker{client: client, projectKey: cfg.ProjectKey}, nil
}

// CreateIssue creates an issue and returns its key.
func (t *jiraTracker) CreateIssue(projectKey, issueType, summary, description string) (string, error) {
	if projectKey == "" {
		projectKey = t.projectKey
	}

	issue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: projectKey},
			Type:        jira.IssueType{Name: issueType},
			Summary:     summary,
			Description: description,
		},
	}

	created, _, err := t.client.Issue.Create(issue)
	if err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	return created.Key, nil
}

// ListTransitions returns the transitions currently available on an issue.
func (t *jiraTracker) ListTransitions(issueKey string) ([]Transition, error) {
	transitions, _, err := t.client.Issue.GetTransitions(issueKey)
	if err != nil {
		return nil, fmt.Errorf("list transitions for %s: %w", issueKey, err)
	}

	out := make([]Transition, 0, len(transitions))
	for _, tr := range transitions {
		out = append(out, Transition{ID: tr.ID, Name: tr.Name})
	}
	return out, nil
}

// TransitionIssue moves an issue through the transition with the given id.
func (t *jiraTracker) TransitionIssue(issueKey, transitionID string) error {
	if _, err := t.client.Issue.DoTransition(issueKey, transitionID); err != nil {
		return fmt.Errorf("transition %s via %s: %w", issueKey, transitionID, err)
	}
	return nil
}

// AddComment appends a comment to an issue.
func (t *jiraTracker) AddComment(issueKey, body string) error {
	if _, _, err := t.client.Issue.AddComment(issueKey, &jira.Comment{Body: body}); err != nil {
		return fmt.Errorf("add comment to %s: %w", issueKey, err)
	}
	return nil
}

// AddAttachment uploads the file at path to an issue.
func (t *jiraTracker) AddAttachment(issueKey, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment %s: %w", path, err)
	}
	defer f.Close()

	if _, _, err := t.client.Issue.PostAttachment(issueKey, f, filepath.Base(path)); err != nil {
		return fmt.Errorf("attach %s to %s: %w", path, issueKey, err)
	}
	return nil
}

// AddWorklog records time spent on an issue.
func (t *jiraTracker) AddWorklog(issueKey string, seconds int, comment string) error {
	record := &jira.WorklogRecord{
		TimeSpentSeconds: seconds,
		Comment:          comment,
	}
	if _, _, err := t.client.Issue.AddWorklogRecord(issueKey, record); err != nil {
		return fmt.Errorf("add worklog to %s: %w", issueKey, err)
	}
	return nil
}

// CreateSubtask creates a subtask under parentKey and returns its key.
func (t *jiraTracker) CreateSubtask(parentKey, summary, issueType string) (string, error) {
	if issueType == "" {
		issueType = "Sub-task"
	}

	issue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project: jira.Project{Key: t.projectKey},
			Type:    jira.IssueType{Name: issueType},
			Summary: summary,
			Parent:  &jira.Parent{Key: parentKey},
		},
	}

	created, _, err := t.client.Issue.Create(issue)
	if err != nil {
		return "", fmt.Errorf("create subtask under %s: %w", parentKey, err)
	}
	return created.Key, nil
}
