package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/google/uuid"
)

// TaskTypeRepository handles task type database operations.
type TaskTypeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskTypeRepository creates a new task type repository.
func NewTaskTypeRepository(db *sql.DB, logger *slog.Logger) *TaskTypeRepository {
	return &TaskTypeRepository{db: db, logger: logger}
}

// ListByProject returns all task types for a project.
func (r *TaskTypeRepository) ListByProject(ctx context.Context, projectID string) ([]*models.TaskType, error) {
	query := `
		SELECT id, project_id, name, workflow_id
		FROM task_types
		WHERE project_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task types: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	taskTypes := make([]*models.TaskType, 0)

	for rows.Next() {
		var (
			taskType   models.TaskType
			workflowID sql.NullString
		)

		err := rows.Scan(&taskType.ID, &taskType.ProjectID, &taskType.Name, &workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task type: %w", err)
		}

		taskType.WorkflowID = workflowID.String

		taskTypes = append(taskTypes, &taskType)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating task types: %w", err)
	}

	return taskTypes, nil
}

// GetByID returns a task type by its ID, or (nil, nil) when it does not exist.
func (r *TaskTypeRepository) GetByID(ctx context.Context, id string) (*models.TaskType, error) {
	query := `
		SELECT id, project_id, name, workflow_id
		FROM task_types
		WHERE id = $1
	`

	var (
		taskType   models.TaskType
		workflowID sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&taskType.ID,
		&taskType.ProjectID,
		&taskType.Name,
		&workflowID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan task type: %w", err)
	}

	taskType.WorkflowID = workflowID.String

	return &taskType, nil
}

// Save inserts or updates a task type.
func (r *TaskTypeRepository) Save(ctx context.Context, taskType *models.TaskType) error {
	if taskType.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate task type ID: %w", err)
		}

		taskType.ID = id.String()
	}

	query := `
		INSERT INTO task_types (id, project_id, name, workflow_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			workflow_id = EXCLUDED.workflow_id
	`

	// An unbound type stores NULL so the column stays distinguishable from
	// a real workflow reference.
	workflowID := sql.NullString{String: taskType.WorkflowID, Valid: taskType.WorkflowID != ""}

	_, err := r.db.ExecContext(ctx, query, taskType.ID, taskType.ProjectID, taskType.Name, workflowID)
	if err != nil {
		return fmt.Errorf("failed to save task type: %w", err)
	}

	return nil
}

// Delete removes a task type.
func (r *TaskTypeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM task_types WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task type: %w", err)
	}

	return nil
}
