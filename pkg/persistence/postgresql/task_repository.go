package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/google/uuid"
)

// TaskRepository handles task database operations, including the guarded
// state write used by the transition executor.
type TaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sql.DB, logger *slog.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// ListByProject returns all tasks for a project.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	query := `
		SELECT id, project_id, title, task_type_id, state_id, created_at, updated_at
		FROM tasks
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	tasks := make([]*models.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// GetByID returns a task by its ID, or (nil, nil) when it does not exist.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT id, project_id, title, task_type_id, state_id, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	return task, nil
}

// Save inserts or updates a task.
func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}

	task.UpdatedAt = now

	if task.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate task ID: %w", err)
		}

		task.ID = id.String()
	}

	query := `
		INSERT INTO tasks (id, project_id, title, task_type_id, state_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			task_type_id = EXCLUDED.task_type_id,
			state_id = EXCLUDED.state_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.TaskTypeID,
		task.StateID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// UpdateState performs the compare-and-swap state write: the row is updated
// only when its stored state still equals expected (NULL-safe comparison).
// When no row was touched, the task either no longer exists or another
// transition won the race; the two are told apart and surfaced as distinct
// errors.
func (r *TaskRepository) UpdateState(ctx context.Context, id string, expected *string, target string) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET state_id = $3, updated_at = NOW()
		WHERE id = $1 AND state_id IS NOT DISTINCT FROM $2
		RETURNING id, project_id, title, task_type_id, state_id, created_at, updated_at
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, expected, target))
	if err == nil {
		return task, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewTaskError("UpdateState", id, err)
	}

	var exists bool

	err = r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return nil, persistence.NewTaskError("UpdateState", id, err)
	}

	if !exists {
		return nil, persistence.NewTaskError("UpdateState", id, persistence.ErrTaskNotFound)
	}

	return nil, persistence.NewTaskError("UpdateState", id, persistence.ErrTaskStateConflict)
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*models.Task, error) {
	var (
		task       models.Task
		taskTypeID sql.NullString
		stateID    sql.NullString
	)

	err := scanner.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&taskTypeID,
		&stateID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if taskTypeID.Valid {
		task.TaskTypeID = &taskTypeID.String
	}

	if stateID.Valid {
		task.StateID = &stateID.String
	}

	return &task, nil
}
