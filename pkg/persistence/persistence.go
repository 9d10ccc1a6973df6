// Package persistence provides the data storage abstraction layer for
// states, workflows, task types and tasks.
package persistence

import (
	"context"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
)

type Persistence interface {
	States() StateRepository
	Workflows() WorkflowRepository
	TaskTypes() TaskTypeRepository
	Tasks() TaskRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// StateRepository accesses the project state catalog.
type StateRepository interface {
	// ListByProject returns the project's states ordered by position.
	// Projects with no states yield an empty slice, not an error.
	ListByProject(ctx context.Context, projectID string) ([]*models.State, error)
	GetByID(ctx context.Context, id string) (*models.State, error)
	Save(ctx context.Context, state *models.State) error
	Delete(ctx context.Context, id string) error
}

type WorkflowRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]*models.Workflow, error)
	// GetByID returns (nil, nil) when the workflow does not exist.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

type TaskTypeRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]*models.TaskType, error)
	GetByID(ctx context.Context, id string) (*models.TaskType, error)
	Save(ctx context.Context, taskType *models.TaskType) error
	Delete(ctx context.Context, id string) error
}

type TaskRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Save(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error

	// UpdateState writes the task's new state only when its stored state
	// still equals expected (nil matches a task that has never been given a
	// state). A mismatch fails with ErrTaskStateConflict and leaves the task
	// untouched, so two racing transitions cannot silently overwrite each
	// other.
	UpdateState(ctx context.Context, id string, expected *string, target string) (*models.Task, error)
}
