package tool

import (
	"fmt"
	"time"
)

// DeploymentTool is a simulated deployment/remediation executor. Actions
// always succeed and return a synthetic change record.
type DeploymentTool struct {
	Base
}

// NewDeploymentTool constructs the simulated deployment system.
func NewDeploymentTool() *DeploymentTool {
	return &DeploymentTool{Base: Base{
		BaseID:          "deployment-system",
		BaseType:        TypeDeployment,
		BaseName:        "Deployment System",
		BaseDescription: "Executes remediation actions (restart, scale, rollback) on systems",
		BaseParameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{"type": "string", "description": "Action to perform (restart_service, scale_service, rollback)"},
				"system": map[string]any{"type": "string", "description": "Target system"},
			},
			"required": []string{"action", "system"},
		},
	}}
}

// Execute records and acknowledges the remediation action.
func (t *DeploymentTool) Execute(params map[string]any) (Result, error) {
	if err := t.Validate(params); err != nil {
		return Result{}, err
	}
	action, _ := params["action"].(string)
	system, _ := params["system"].(string)

	switch action {
	case "restart_service", "scale_service", "rollback":
	default:
		return Result{}, NewError(t.ID(), fmt.Sprintf("unsupported action: %s", action), "VALIDATION_ERROR")
	}

	return Success(map[string]any{
		"action":    action,
		"system":    system,
		"change_id": fmt.Sprintf("CHG-%d", time.Now().UnixNano()),
		"state":     "applied",
	}), nil
}
