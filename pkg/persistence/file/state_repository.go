package file

import (
	"context"
	"sort"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/google/uuid"
)

const statesDir = "states"

// StateRepository handles state catalog file operations.
type StateRepository struct {
	store *store
}

// ListByProject returns the project's states ordered by position.
func (r *StateRepository) ListByProject(ctx context.Context, projectID string) ([]*models.State, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.listByProject(projectID)
}

func (r *StateRepository) listByProject(projectID string) ([]*models.State, error) {
	ids, err := r.store.ids(statesDir)
	if err != nil {
		return nil, err
	}

	states := make([]*models.State, 0, len(ids))

	for _, id := range ids {
		var state models.State

		found, err := r.store.read(statesDir, id, &state)
		if err != nil {
			return nil, err
		}

		if found && state.ProjectID == projectID {
			states = append(states, &state)
		}
	}

	sort.SliceStable(states, func(i, j int) bool {
		if states[i].Position != states[j].Position {
			return states[i].Position < states[j].Position
		}

		return states[i].ID < states[j].ID
	})

	return states, nil
}

// GetByID returns a state by its ID, or (nil, nil) when it does not exist.
func (r *StateRepository) GetByID(ctx context.Context, id string) (*models.State, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var state models.State

	found, err := r.store.read(statesDir, id, &state)
	if err != nil || !found {
		return nil, err
	}

	return &state, nil
}

// Save inserts or updates a state.
func (r *StateRepository) Save(ctx context.Context, state *models.State) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if state.ID == "" {
		state.ID = uuid.New().String()
	}

	return r.store.write(statesDir, state.ID, state)
}

// Delete removes a state.
func (r *StateRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.remove(statesDir, id)
}
