package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/google/uuid"
)

// ErrTaskTypeNotFound is returned when a task type is not found.
var ErrTaskTypeNotFound = persistence.ErrTaskTypeNotFound

type TaskType struct {
	persistence persistence.Persistence
}

// NewTaskType creates a new task type service.
func NewTaskType(persistence persistence.Persistence) *TaskType {
	return &TaskType{
		persistence: persistence,
	}
}

// ListByProject returns all task types defined in a project.
func (t *TaskType) ListByProject(ctx context.Context, projectID string) ([]*models.TaskType, error) {
	taskTypes, err := t.persistence.TaskTypes().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task types: %w", err)
	}

	return taskTypes, nil
}

// FetchByID retrieves a task type by its ID.
func (t *TaskType) FetchByID(ctx context.Context, id string) (*models.TaskType, error) {
	taskType, err := t.persistence.TaskTypes().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if taskType == nil {
		return nil, ErrTaskTypeNotFound
	}

	return taskType, nil
}

// Create adds a new task type. A workflow binding is optional; when present
// the workflow must exist in the same project.
func (t *TaskType) Create(ctx context.Context, taskType *models.TaskType) (*models.TaskType, error) {
	taskType.Name = strings.TrimSpace(taskType.Name)
	if taskType.Name == "" {
		return nil, NewValidationError("Create", "INVALID_TASK_TYPE", "task type name is required", ErrInvalidRequest)
	}

	err := t.validateBinding(ctx, taskType)
	if err != nil {
		return nil, err
	}

	taskType.ID = uuid.New().String()

	err = t.persistence.TaskTypes().Save(ctx, taskType)
	if err != nil {
		return nil, fmt.Errorf("failed to create task type: %w", err)
	}

	return taskType, nil
}

// Update modifies an existing task type by its ID. Rebinding to a different
// workflow is allowed; tasks of this type are re-resolved against the new
// workflow on their next transition.
func (t *TaskType) Update(ctx context.Context, taskTypeID string, taskType *models.TaskType) (*models.TaskType, error) {
	existing, err := t.persistence.TaskTypes().GetByID(ctx, taskTypeID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, ErrTaskTypeNotFound
	}

	taskType.Name = strings.TrimSpace(taskType.Name)
	if taskType.Name == "" {
		return nil, NewValidationError("Update", "INVALID_TASK_TYPE", "task type name is required", ErrInvalidRequest)
	}

	taskType.ID = taskTypeID
	taskType.ProjectID = existing.ProjectID

	err = t.validateBinding(ctx, taskType)
	if err != nil {
		return nil, err
	}

	err = t.persistence.TaskTypes().Save(ctx, taskType)
	if err != nil {
		return nil, fmt.Errorf("failed to update task type: %w", err)
	}

	return taskType, nil
}

// Delete removes a task type by its ID.
func (t *TaskType) Delete(ctx context.Context, taskTypeID string) error {
	existing, err := t.persistence.TaskTypes().GetByID(ctx, taskTypeID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrTaskTypeNotFound
	}

	err = t.persistence.TaskTypes().Delete(ctx, taskTypeID)
	if err != nil {
		return fmt.Errorf("failed to delete task type: %w", err)
	}

	return nil
}

func (t *TaskType) validateBinding(ctx context.Context, taskType *models.TaskType) error {
	if taskType.WorkflowID == "" {
		return nil
	}

	workflow, err := t.persistence.Workflows().GetByID(ctx, taskType.WorkflowID)
	if err != nil {
		return err
	}

	if workflow == nil {
		return ErrUnknownWorkflow
	}

	if workflow.ProjectID != taskType.ProjectID {
		return ErrProjectMismatch
	}

	return nil
}
