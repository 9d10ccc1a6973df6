package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/google/uuid"
)

// ErrStateNotFound is returned when a state is not found.
var ErrStateNotFound = persistence.ErrStateNotFound

type State struct {
	persistence persistence.Persistence
}

// NewState creates a new state service.
func NewState(persistence persistence.Persistence) *State {
	return &State{
		persistence: persistence,
	}
}

// ListByProject returns the project's state catalog ordered by position.
func (s *State) ListByProject(ctx context.Context, projectID string) ([]*models.State, error) {
	states, err := s.persistence.States().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	return states, nil
}

// FetchByID retrieves a state by its ID.
func (s *State) FetchByID(ctx context.Context, id string) (*models.State, error) {
	state, err := s.persistence.States().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if state == nil {
		return nil, ErrStateNotFound
	}

	return state, nil
}

// Create adds a new state to the project catalog. When no position is given
// the state is appended after the current highest position.
func (s *State) Create(ctx context.Context, state *models.State) (*models.State, error) {
	state.Name = strings.TrimSpace(state.Name)
	if state.Name == "" {
		return nil, ErrStateNameRequired
	}

	state.ID = uuid.New().String()

	if state.Position == 0 {
		existing, err := s.persistence.States().ListByProject(ctx, state.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to list states: %w", err)
		}

		for _, other := range existing {
			if other.Position >= state.Position {
				state.Position = other.Position + 1
			}
		}
	}

	err := s.persistence.States().Save(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to create state: %w", err)
	}

	return state, nil
}

// Update modifies an existing state by its ID.
func (s *State) Update(ctx context.Context, stateID string, state *models.State) (*models.State, error) {
	existing, err := s.persistence.States().GetByID(ctx, stateID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, ErrStateNotFound
	}

	state.Name = strings.TrimSpace(state.Name)
	if state.Name == "" {
		return nil, ErrStateNameRequired
	}

	state.ID = stateID
	state.ProjectID = existing.ProjectID

	err = s.persistence.States().Save(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to update state: %w", err)
	}

	return state, nil
}

// Delete removes a state from the catalog. Workflow steps and transitions
// pointing at the removed state are ignored at resolution time, so no
// referential cleanup happens here.
func (s *State) Delete(ctx context.Context, stateID string) error {
	existing, err := s.persistence.States().GetByID(ctx, stateID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrStateNotFound
	}

	err = s.persistence.States().Delete(ctx, stateID)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return nil
}
