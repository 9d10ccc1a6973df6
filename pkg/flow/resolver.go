package flow

import (
	"github.com/chrisrneal/task-manager-sub000/pkg/models"
)

// Resolver computes the set of legal next states for a task. It never
// returns an error: an empty result means "no legal moves" and is a valid,
// expected outcome for workflows with no steps.
type Resolver struct {
	catalog []*models.State
}

// NewResolver creates a resolver over the project's state catalog, ordered
// by position.
func NewResolver(catalog []*models.State) *Resolver {
	return &Resolver{catalog: catalog}
}

// LegalNextStates returns the states the task may move to (or stay in),
// deduplicated by state id.
//
// Untyped tasks, and typed tasks whose type resolves to no workflow, are not
// constrained: they may use any state in the catalog. Tasks that have never
// been assigned a state may only be set to the workflow's first state.
// Otherwise the legal set is the current state (a no-op move is always
// allowed) plus every declared transition target whose source matches the
// current state, wildcard sources matching everything.
func (r *Resolver) LegalNextStates(task *models.Task, def *Definition) []*models.State {
	if task.TaskTypeID == nil || def == nil {
		return r.unconstrainedFallback()
	}

	if task.StateID == nil {
		first, ok := def.FirstState()
		if !ok {
			return []*models.State{}
		}

		return []*models.State{first}
	}

	current := *task.StateID
	legal := make([]*models.State, 0, 1+len(def.TargetsFrom(current))+len(def.WildcardTargets()))
	seen := make(map[string]struct{})

	add := func(stateID string) {
		if _, dup := seen[stateID]; dup {
			return
		}

		state, ok := def.Member(stateID)
		if !ok {
			return
		}

		seen[stateID] = struct{}{}
		legal = append(legal, state)
	}

	add(current)

	for _, target := range def.TargetsFrom(current) {
		add(target)
	}

	for _, target := range def.WildcardTargets() {
		add(target)
	}

	return legal
}

// IsLegal reports whether targetStateID is in the task's legal next set.
func (r *Resolver) IsLegal(task *models.Task, def *Definition, targetStateID string) bool {
	for _, state := range r.LegalNextStates(task, def) {
		if state.ID == targetStateID {
			return true
		}
	}

	return false
}

// unconstrainedFallback is the backward-compatibility branch for tasks that
// predate typing: with no workflow to consult, every project state is legal.
// Deliberate behavior, not an accident of absent lookups.
func (r *Resolver) unconstrainedFallback() []*models.State {
	states := make([]*models.State, len(r.catalog))
	copy(states, r.catalog)

	return states
}
