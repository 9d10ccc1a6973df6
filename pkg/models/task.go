package models

import "time"

// TaskType categorizes tasks and optionally binds the category to a
// workflow. A bound workflow decides which states tasks of this type may
// occupy and which moves between them are legal; an unbound type leaves its
// tasks unconstrained.
type TaskType struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	Name       string `json:"name"                  validate:"required,min=1"`
	WorkflowID string `json:"workflow_id,omitempty"`
}

// Task is the tracked unit of work. TaskTypeID is nil for tasks created
// before typing existed; those fall back to an unconstrained status field.
// StateID is nil only until the task is assigned its first workflow state,
// and afterwards is mutated exclusively through the transition executor.
type Task struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Title      string    `json:"title"        validate:"required,min=1"`
	TaskTypeID *string   `json:"task_type_id,omitempty"`
	StateID    *string   `json:"state_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InState reports whether the task currently occupies stateID.
func (t *Task) InState(stateID string) bool {
	return t.StateID != nil && *t.StateID == stateID
}
