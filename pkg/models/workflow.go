package models

import (
	"errors"
	"fmt"
	"time"
)

// Workflow is a named directed graph over a subset of a project's states.
// Steps define membership and ordering; Transitions define the legal moves.
type Workflow struct {
	ID          string               `json:"id"`
	ProjectID   string               `json:"project_id"`
	Name        string               `json:"name"        validate:"required,min=3"`
	Steps       []WorkflowStep       `json:"steps"`
	Transitions []WorkflowTransition `json:"transitions"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// WorkflowStep records that a state belongs to a workflow. The step with the
// lowest StepOrder is the workflow's first state, the only state a task with
// no state yet may be assigned.
type WorkflowStep struct {
	StateID   string `json:"state_id"   validate:"required"`
	StepOrder int    `json:"step_order"`
}

// WorkflowTransition declares a legal move between workflow states. The
// source is a tagged variant so "from any state" is expressed structurally
// instead of through a reserved state id.
type WorkflowTransition struct {
	From TransitionSource `json:"from"`
	To   string           `json:"to"   validate:"required"`
}

// TransitionSource is either a specific member state or any state in the
// workflow. The zero value is invalid; construct through FromState or
// FromAnyState.
type TransitionSource struct {
	AnyState bool   `json:"any_state,omitempty"`
	StateID  string `json:"state_id,omitempty"`
}

// FromState returns a source matching exactly one state.
func FromState(stateID string) TransitionSource {
	return TransitionSource{StateID: stateID}
}

// FromAnyState returns the wildcard source, legal from every member state.
func FromAnyState() TransitionSource {
	return TransitionSource{AnyState: true}
}

// Matches reports whether a task currently in stateID may use this source.
func (s TransitionSource) Matches(stateID string) bool {
	return s.AnyState || s.StateID == stateID
}

var (
	ErrDuplicateStepOrder   = errors.New("duplicate step order in workflow")
	ErrDuplicateStepState   = errors.New("state appears in more than one step")
	ErrTransitionNotMember  = errors.New("transition references a state that is not a workflow step")
	ErrInvalidTransitionSrc = errors.New("transition source must be a state id or the wildcard")
)

// Validate checks the structural invariants of the workflow graph: step
// orders are distinct, each state appears in at most one step, and every
// transition endpoint is a step member (the source only when not wildcard).
func (w *Workflow) Validate() error {
	orders := make(map[int]string, len(w.Steps))
	members := make(map[string]struct{}, len(w.Steps))

	for _, step := range w.Steps {
		if prev, ok := orders[step.StepOrder]; ok {
			return fmt.Errorf("%w: order %d used by %s and %s", ErrDuplicateStepOrder, step.StepOrder, prev, step.StateID)
		}

		orders[step.StepOrder] = step.StateID

		if _, ok := members[step.StateID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateStepState, step.StateID)
		}

		members[step.StateID] = struct{}{}
	}

	for _, t := range w.Transitions {
		if !t.From.AnyState && t.From.StateID == "" {
			return ErrInvalidTransitionSrc
		}

		if !t.From.AnyState {
			if _, ok := members[t.From.StateID]; !ok {
				return fmt.Errorf("%w: from %s", ErrTransitionNotMember, t.From.StateID)
			}
		}

		if _, ok := members[t.To]; !ok {
			return fmt.Errorf("%w: to %s", ErrTransitionNotMember, t.To)
		}
	}

	return nil
}

// HasStep reports whether stateID is a member of the workflow.
func (w *Workflow) HasStep(stateID string) bool {
	for _, step := range w.Steps {
		if step.StateID == stateID {
			return true
		}
	}

	return false
}
