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

// StateRepository handles state catalog database operations.
type StateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStateRepository creates a new state repository.
func NewStateRepository(db *sql.DB, logger *slog.Logger) *StateRepository {
	return &StateRepository{db: db, logger: logger}
}

// ListByProject returns the project's states ordered by position.
func (r *StateRepository) ListByProject(ctx context.Context, projectID string) ([]*models.State, error) {
	query := `
		SELECT id, project_id, name, position
		FROM states
		WHERE project_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query states: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	states := make([]*models.State, 0)

	for rows.Next() {
		var state models.State

		err := rows.Scan(&state.ID, &state.ProjectID, &state.Name, &state.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}

		states = append(states, &state)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating states: %w", err)
	}

	return states, nil
}

// GetByID returns a state by its ID, or (nil, nil) when it does not exist.
func (r *StateRepository) GetByID(ctx context.Context, id string) (*models.State, error) {
	query := `
		SELECT id, project_id, name, position
		FROM states
		WHERE id = $1
	`

	var state models.State

	err := r.db.QueryRowContext(ctx, query, id).Scan(&state.ID, &state.ProjectID, &state.Name, &state.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan state: %w", err)
	}

	return &state, nil
}

// Save inserts or updates a state.
func (r *StateRepository) Save(ctx context.Context, state *models.State) error {
	if state.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate state ID: %w", err)
		}

		state.ID = id.String()
	}

	query := `
		INSERT INTO states (id, project_id, name, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position
	`

	_, err := r.db.ExecContext(ctx, query, state.ID, state.ProjectID, state.Name, state.Position)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

// Delete removes a state. States referenced by steps, transitions or tasks
// are protected by foreign keys; the constraint violation propagates.
func (r *StateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM states WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return nil
}
