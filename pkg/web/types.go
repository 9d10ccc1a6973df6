// Package web provides HTTP request and response types for the task API.
package web

import "github.com/chrisrneal/task-manager-sub000/pkg/models"

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateStateRequest represents the request body for adding a state to a
// project's catalog.
type CreateStateRequest struct {
	Name     string `json:"name"     validate:"required,min=1"`
	Position int    `json:"position" validate:"min=0"`
}

// UpdateStateRequest represents the request body for updating a state.
type UpdateStateRequest struct {
	Name     string `json:"name"     validate:"required,min=1"`
	Position int    `json:"position" validate:"min=0"`
}

// WorkflowStepRequest is one ordered member state of a workflow.
type WorkflowStepRequest struct {
	StateID   string `json:"state_id"   validate:"required"`
	StepOrder int    `json:"step_order"`
}

// WorkflowTransitionRequest is one directed edge of a workflow. A nil
// from_state means the transition is reachable from any member state.
type WorkflowTransitionRequest struct {
	FromStateID *string `json:"from_state"`
	ToStateID   string  `json:"to_state"   validate:"required"`
}

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string                      `json:"name"        validate:"required,min=3"`
	Steps       []WorkflowStepRequest       `json:"steps"       validate:"required,min=1,dive"`
	Transitions []WorkflowTransitionRequest `json:"transitions" validate:"omitempty,dive"`
}

// UpdateWorkflowRequest represents the request body for replacing a workflow's
// graph. The whole graph is submitted at once; there is no partial update.
type UpdateWorkflowRequest struct {
	Name        string                      `json:"name"        validate:"required,min=3"`
	Steps       []WorkflowStepRequest       `json:"steps"       validate:"required,min=1,dive"`
	Transitions []WorkflowTransitionRequest `json:"transitions" validate:"omitempty,dive"`
}

// CreateTaskTypeRequest represents the request body for creating a task type.
// The workflow binding is optional.
type CreateTaskTypeRequest struct {
	Name       string `json:"name"                  validate:"required,min=1"`
	WorkflowID string `json:"workflow_id,omitempty"`
}

// UpdateTaskTypeRequest represents the request body for updating a task type.
type UpdateTaskTypeRequest struct {
	Name       string `json:"name"                  validate:"required,min=1"`
	WorkflowID string `json:"workflow_id,omitempty"`
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Title      string  `json:"title"                  validate:"required,min=1"`
	TaskTypeID *string `json:"task_type_id,omitempty"`
}

// TransitionRequest represents the request body for moving a task to a
// target state.
type TransitionRequest struct {
	TargetStateID string `json:"target_state_id" validate:"required"`
}

// LegalStatesResponse lists the states a task may move to right now.
type LegalStatesResponse struct {
	TaskID string          `json:"task_id"`
	States []*models.State `json:"states"`
}

// toWorkflow maps a workflow request body onto the domain model.
func toWorkflow(projectID, name string, steps []WorkflowStepRequest, transitions []WorkflowTransitionRequest) *models.Workflow {
	workflow := &models.Workflow{
		ProjectID: projectID,
		Name:      name,
	}

	for _, step := range steps {
		workflow.Steps = append(workflow.Steps, models.WorkflowStep{
			StateID:   step.StateID,
			StepOrder: step.StepOrder,
		})
	}

	for _, transition := range transitions {
		source := models.FromAnyState()
		if transition.FromStateID != nil {
			source = models.FromState(*transition.FromStateID)
		}

		workflow.Transitions = append(workflow.Transitions, models.WorkflowTransition{
			From: source,
			To:   transition.ToStateID,
		})
	}

	return workflow
}
