package file

import (
	"context"
	"sort"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/google/uuid"
)

const taskTypesDir = "task_types"

// TaskTypeRepository handles task type file operations.
type TaskTypeRepository struct {
	store *store
}

// ListByProject returns all task types for a project ordered by name.
func (r *TaskTypeRepository) ListByProject(ctx context.Context, projectID string) ([]*models.TaskType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids, err := r.store.ids(taskTypesDir)
	if err != nil {
		return nil, err
	}

	taskTypes := make([]*models.TaskType, 0, len(ids))

	for _, id := range ids {
		var taskType models.TaskType

		found, err := r.store.read(taskTypesDir, id, &taskType)
		if err != nil {
			return nil, err
		}

		if found && taskType.ProjectID == projectID {
			taskTypes = append(taskTypes, &taskType)
		}
	}

	sort.SliceStable(taskTypes, func(i, j int) bool {
		return taskTypes[i].Name < taskTypes[j].Name
	})

	return taskTypes, nil
}

// GetByID returns a task type by its ID, or (nil, nil) when it does not exist.
func (r *TaskTypeRepository) GetByID(ctx context.Context, id string) (*models.TaskType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var taskType models.TaskType

	found, err := r.store.read(taskTypesDir, id, &taskType)
	if err != nil || !found {
		return nil, err
	}

	return &taskType, nil
}

// Save inserts or updates a task type.
func (r *TaskTypeRepository) Save(ctx context.Context, taskType *models.TaskType) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if taskType.ID == "" {
		taskType.ID = uuid.New().String()
	}

	return r.store.write(taskTypesDir, taskType.ID, taskType)
}

// Delete removes a task type.
func (r *TaskTypeRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.remove(taskTypesDir, id)
}
