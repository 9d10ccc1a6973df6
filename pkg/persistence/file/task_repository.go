package file

import (
	"context"
	"sort"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/google/uuid"
)

const tasksDir = "tasks"

// TaskRepository handles task file operations.
type TaskRepository struct {
	store *store
}

// ListByProject returns all tasks for a project ordered by creation time.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids, err := r.store.ids(tasksDir)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(ids))

	for _, id := range ids {
		var task models.Task

		found, err := r.store.read(tasksDir, id, &task)
		if err != nil {
			return nil, err
		}

		if found && task.ProjectID == projectID {
			tasks = append(tasks, &task)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// GetByID returns a task by its ID, or (nil, nil) when it does not exist.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var task models.Task

	found, err := r.store.read(tasksDir, id, &task)
	if err != nil || !found {
		return nil, err
	}

	return &task, nil
}

// Save inserts or updates a task.
func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}

	task.UpdatedAt = now

	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	return r.store.write(tasksDir, task.ID, task)
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.remove(tasksDir, id)
}

// UpdateState performs the guarded state write under the store lock: read,
// compare against expected, write. Mismatch fails with ErrTaskStateConflict
// without touching the stored document.
func (r *TaskRepository) UpdateState(ctx context.Context, id string, expected *string, target string) (*models.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var task models.Task

	found, err := r.store.read(tasksDir, id, &task)
	if err != nil {
		return nil, persistence.NewTaskError("UpdateState", id, err)
	}

	if !found {
		return nil, persistence.NewTaskError("UpdateState", id, persistence.ErrTaskNotFound)
	}

	if !stateEquals(task.StateID, expected) {
		return nil, persistence.NewTaskError("UpdateState", id, persistence.ErrTaskStateConflict)
	}

	task.StateID = &target
	task.UpdatedAt = time.Now().UTC()

	err = r.store.write(tasksDir, task.ID, &task)
	if err != nil {
		return nil, persistence.NewTaskError("UpdateState", id, err)
	}

	return &task, nil
}

func stateEquals(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}
