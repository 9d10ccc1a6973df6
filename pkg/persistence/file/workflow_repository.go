package file

import (
	"context"
	"sort"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/google/uuid"
)

const workflowsDir = "workflows"

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	store *store
}

// ListByProject returns all workflows for a project ordered by creation time.
func (r *WorkflowRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids, err := r.store.ids(workflowsDir)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var workflow models.Workflow

		found, err := r.store.read(workflowsDir, id, &workflow)
		if err != nil {
			return nil, err
		}

		if found && workflow.ProjectID == projectID {
			workflows = append(workflows, &workflow)
		}
	}

	sort.SliceStable(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

// GetByID returns a workflow by its ID, or (nil, nil) when it does not exist.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var workflow models.Workflow

	found, err := r.store.read(workflowsDir, id, &workflow)
	if err != nil || !found {
		return nil, err
	}

	return &workflow, nil
}

// Save inserts or updates a workflow with its steps and transitions.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	return r.store.write(workflowsDir, workflow.ID, workflow)
}

// Delete removes a workflow with its steps and transitions.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.remove(workflowsDir, id)
}
