package ticketing

// Transition is one workflow transition currently available on an external
// issue.
type Transition struct {
	ID   string
	Name string
}

// Tracker is the external issue tracker contract consumed by the bridge.
// Network and API details are tracker specific; only this operation set
// matters. All calls are blocking I/O with no timeout or retry imposed here.
type Tracker interface {
	// CreateIssue creates an issue and returns its key.
	CreateIssue(projectKey, issueType, summary, description string) (string, error)
	// ListTransitions returns the transitions currently available on an issue.
	ListTransitions(issueKey string) ([]Transition, error)
	// TransitionIssue moves an issue through the transition with the given id.
	TransitionIssue(issueKey, transitionID string) error
	// AddComment appends a comment to an issue.
	AddComment(issueKey, body string) error
	// AddAttachment uploads the file at path to an issue.
	AddAttachment(issueKey, path string) error
	// AddWorklog records time spent on an issue.
	AddWorklog(issueKey string, seconds int, comment string) error
	// CreateSubtask creates a subtask under parentKey and returns its key.
	CreateSubtask(parentKey, summary, issueType string) (string, error)
}
