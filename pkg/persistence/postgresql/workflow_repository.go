package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/google/uuid"
)

// WorkflowRepository handles workflow-related database operations. A workflow
// row carries only identity; its steps and transitions live in child tables
// and are loaded and saved together with it.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// ListByProject returns all workflows for a project, steps and transitions included.
func (r *WorkflowRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Workflow, error) {
	query := `
		SELECT id, project_id, name, created_at, updated_at
		FROM workflows
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		var workflow models.Workflow

		err := rows.Scan(&workflow.ID, &workflow.ProjectID, &workflow.Name, &workflow.CreatedAt, &workflow.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, &workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	for _, workflow := range workflows {
		err = r.loadStepsAndTransitions(ctx, workflow)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow graph: %w", err)
		}
	}

	return workflows, nil
}

// GetByID returns a workflow by its ID, or (nil, nil) when it does not exist.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT id, project_id, name, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`

	var workflow models.Workflow

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&workflow.ID,
		&workflow.ProjectID,
		&workflow.Name,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	if err := r.loadStepsAndTransitions(ctx, &workflow); err != nil {
		return nil, fmt.Errorf("failed to load workflow graph: %w", err)
	}

	return &workflow, nil
}

// Save saves a workflow and replaces its steps and transitions atomically.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	workflowQuery := `
		INSERT INTO workflows (id, project_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, workflowQuery,
		workflow.ID,
		workflow.ProjectID,
		workflow.Name,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow base: %w", err)
	}

	// Replace existing steps and transitions (for updates)
	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_transitions WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing transitions: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_steps WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing steps: %w", err)
	}

	err = r.saveSteps(ctx, tx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow steps: %w", err)
	}

	err = r.saveTransitions(ctx, tx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow transitions: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a workflow; steps and transitions cascade with it.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

func (r *WorkflowRepository) loadStepsAndTransitions(ctx context.Context, workflow *models.Workflow) error {
	stepsQuery := `
		SELECT state_id, step_order
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY step_order ASC
	`

	rows, err := r.db.QueryContext(ctx, stepsQuery, workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to query workflow steps: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var steps []models.WorkflowStep

	for rows.Next() {
		var step models.WorkflowStep

		err := rows.Scan(&step.StateID, &step.StepOrder)
		if err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}

		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating steps: %w", err)
	}

	workflow.Steps = steps

	transitionsQuery := `
		SELECT from_state, to_state
		FROM workflow_transitions
		WHERE workflow_id = $1
	`

	rows, err = r.db.QueryContext(ctx, transitionsQuery, workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to query workflow transitions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var transitions []models.WorkflowTransition

	for rows.Next() {
		var (
			fromState sql.NullString
			toState   string
		)

		err := rows.Scan(&fromState, &toState)
		if err != nil {
			return fmt.Errorf("failed to scan transition: %w", err)
		}

		transition := models.WorkflowTransition{To: toState}
		if fromState.Valid {
			transition.From = models.FromState(fromState.String)
		} else {
			transition.From = models.FromAnyState()
		}

		transitions = append(transitions, transition)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transitions: %w", err)
	}

	workflow.Transitions = transitions

	return nil
}

func (r *WorkflowRepository) saveSteps(ctx context.Context, tx *sql.Tx, workflow *models.Workflow) error {
	query := `
		INSERT INTO workflow_steps (workflow_id, state_id, step_order)
		VALUES ($1, $2, $3)
	`

	for _, step := range workflow.Steps {
		_, err := tx.ExecContext(ctx, query, workflow.ID, step.StateID, step.StepOrder)
		if err != nil {
			return fmt.Errorf("failed to save step: %w", err)
		}
	}

	return nil
}

func (r *WorkflowRepository) saveTransitions(ctx context.Context, tx *sql.Tx, workflow *models.Workflow) error {
	query := `
		INSERT INTO workflow_transitions (workflow_id, from_state, to_state)
		VALUES ($1, $2, $3)
	`

	for _, transition := range workflow.Transitions {
		var fromState sql.NullString
		if !transition.From.AnyState {
			fromState = sql.NullString{String: transition.From.StateID, Valid: true}
		}

		_, err := tx.ExecContext(ctx, query, workflow.ID, fromState, transition.To)
		if err != nil {
			return fmt.Errorf("failed to save transition: %w", err)
		}
	}

	return nil
}
