// Package flow implements the workflow state-transition engine: compiling a
// workflow graph into an immutable definition, resolving the legal next
// states for a task, and executing validated state changes.
package flow

import (
	"sort"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
)

// Definition is a workflow compiled against the project's state catalog:
// member states in step order, explicit transitions indexed by source state,
// and wildcard transition targets. It is built once per load and never
// mutated, so repeated resolution is map lookups instead of linear scans.
type Definition struct {
	workflowID string
	states     []*models.State
	members    map[string]*models.State
	explicit   map[string][]string
	wildcard   []string
}

// BuildDefinition compiles a workflow against the project state catalog.
// Steps and transitions that reference states missing from the catalog are
// dropped silently: partially migrated data should degrade to fewer legal
// moves, not break the board.
func BuildDefinition(workflow *models.Workflow, catalog []*models.State) *Definition {
	if workflow == nil {
		return nil
	}

	byID := make(map[string]*models.State, len(catalog))
	for _, state := range catalog {
		byID[state.ID] = state
	}

	steps := make([]models.WorkflowStep, len(workflow.Steps))
	copy(steps, workflow.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})

	def := &Definition{
		workflowID: workflow.ID,
		members:    make(map[string]*models.State, len(steps)),
		explicit:   make(map[string][]string),
	}

	for _, step := range steps {
		state, ok := byID[step.StateID]
		if !ok {
			continue
		}

		if _, seen := def.members[state.ID]; seen {
			continue
		}

		def.members[state.ID] = state
		def.states = append(def.states, state)
	}

	for _, t := range workflow.Transitions {
		if _, ok := def.members[t.To]; !ok {
			continue
		}

		if t.From.AnyState {
			def.wildcard = append(def.wildcard, t.To)

			continue
		}

		if _, ok := def.members[t.From.StateID]; !ok {
			continue
		}

		def.explicit[t.From.StateID] = append(def.explicit[t.From.StateID], t.To)
	}

	return def
}

// WorkflowID returns the id of the workflow this definition was built from.
func (d *Definition) WorkflowID() string {
	return d.workflowID
}

// States returns the member states in step order.
func (d *Definition) States() []*models.State {
	return d.states
}

// FirstState returns the member state with the lowest step order. The second
// return value is false when the workflow has no steps.
func (d *Definition) FirstState() (*models.State, bool) {
	if len(d.states) == 0 {
		return nil, false
	}

	return d.states[0], true
}

// Member returns the member state with the given id, if any.
func (d *Definition) Member(stateID string) (*models.State, bool) {
	state, ok := d.members[stateID]

	return state, ok
}

// TargetsFrom returns the explicit transition targets declared from stateID.
func (d *Definition) TargetsFrom(stateID string) []string {
	return d.explicit[stateID]
}

// WildcardTargets returns the targets reachable from any member state.
func (d *Definition) WildcardTargets() []string {
	return d.wildcard
}
