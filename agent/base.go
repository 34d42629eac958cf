package agent

import (
	"github.com/hupe1980/incidentmesh/core"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/hupe1980/incidentmesh/tool"
)

// Agent is a capability-scoped message handler that owns tasks.
type Agent interface {
	// Card returns the immutable identity record.
	Card() core.AgentCard
	// Dispatch delivers a message: a task is created, processed synchronously
	// and driven to a terminal state. The returned task carries the response.
	Dispatch(msg *core.Message) (*core.Task, error)
	// GetTask looks up a task owned by this agent.
	GetTask(taskID string) (*core.Task, error)
	// Cleanup releases the agent's tool session.
	Cleanup()
}

// processFunc is the domain logic a concrete agent plugs into the shared
// dispatch lifecycle. It appends content to response; the lifecycle plumbing
// around it is owned by BaseAgent.
type processFunc func(task *core.Task, msg *core.Message, req Request, response *core.Message)

// BaseAgent bundles the shared dispatch lifecycle: task creation, state
// transitions, response handling and tool host access. Embed it in concrete
// agents and supply a process function.
type BaseAgent struct {
	card      core.AgentCard
	tasks     *core.TaskStore
	host      *tool.Host
	sessionID string
	logger    logging.Logger
	process   processFunc
}

// NewBaseAgent wires the shared plumbing for a concrete agent. A tool host
// session is opened immediately and held until Cleanup.
func NewBaseAgent(card core.AgentCard, host *tool.Host, logger logging.Logger) BaseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	b := BaseAgent{
		card:   card,
		tasks:  core.NewTaskStore(),
		host:   host,
		logger: logger,
	}
	if host != nil {
		b.sessionID = host.OpenSession(card.ID)
	}
	return b
}

// Card returns the immutable identity record.
func (b *BaseAgent) Card() core.AgentCard { return b.card }

// GetTask looks up a task owned by this agent.
func (b *BaseAgent) GetTask(taskID string) (*core.Task, error) { return b.tasks.Get(taskID) }

// Tasks exposes the agent-local task table.
func (b *BaseAgent) Tasks() *core.TaskStore { return b.tasks }

// Dispatch runs the shared lifecycle: create task (SUBMITTED), move to
// WORKING, decode the request, run the agent's process function, append the
// response and complete. Tool failures inside process never fail the task;
// they surface only as response content.
func (b *BaseAgent) Dispatch(msg *core.Message) (*core.Task, error) {
	task := b.tasks.Create(b.card.ID, msg)
	if err := task.UpdateState(core.TaskStateWorking); err != nil {
		return nil, err
	}

	b.logger.Debug("agent.dispatch", "agent_id", b.card.ID, "task_id", task.ID, "message_id", msg.ID)

	response := core.NewMessage(core.RoleAgent)
	req := DecodeRequest(msg)
	b.process(task, msg, req, response)

	task.AddMessage(response)
	if !task.State().Terminal() {
		if err := task.UpdateState(core.TaskStateCompleted); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// ExecuteTool invokes a tool through the host using the agent's session.
// Failures are logged and returned; callers decide whether they matter.
func (b *BaseAgent) ExecuteTool(toolID string, params map[string]any) (tool.Result, error) {
	if b.host == nil {
		return tool.Result{}, tool.ErrToolNotFound
	}
	res, err := b.host.Execute(b.sessionID, toolID, params)
	if err != nil {
		b.logger.Warn("agent.tool.failed", "agent_id", b.card.ID, "tool_id", toolID, "error", err.Error())
	}
	return res, err
}

// Logger returns the agent's logger.
func (b *BaseAgent) Logger() logging.Logger { return b.logger }

// Cleanup releases the agent's tool session.
func (b *BaseAgent) Cleanup() {
	if b.host != nil && b.sessionID != "" {
		b.host.CloseSession(b.sessionID)
	}
}

// respondUnknown appends the defined "unknown request" notice.
func respondUnknown(response *core.Message) {
	response.AddTextPart("Unknown request")
	response.AddDataPart(map[string]any{"unknown_request": true})
}

// respondUnsupported appends a notice for a request recognized by the system
// but not handled by this agent.
func respondUnsupported(response *core.Message, agentID string) {
	response.AddTextPart("Request not supported by agent " + agentID)
	response.AddDataPart(map[string]any{"unsupported_request": true})
}
