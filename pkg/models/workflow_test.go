package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWorkflow() *Workflow {
	return &Workflow{
		ID:        "wf1",
		ProjectID: "p1",
		Name:      "Engineering Flow",
		Steps: []WorkflowStep{
			{StateID: "todo", StepOrder: 1},
			{StateID: "doing", StepOrder: 2},
			{StateID: "done", StepOrder: 3},
		},
		Transitions: []WorkflowTransition{
			{From: FromState("todo"), To: "doing"},
			{From: FromAnyState(), To: "done"},
		},
	}
}

func TestWorkflow_Validate(t *testing.T) {
	require.NoError(t, validWorkflow().Validate())
}

func TestWorkflow_ValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *Workflow)
		wantErr error
	}{
		{
			name: "duplicate step order",
			mutate: func(w *Workflow) {
				w.Steps[1].StepOrder = 1
			},
			wantErr: ErrDuplicateStepOrder,
		},
		{
			name: "state in two steps",
			mutate: func(w *Workflow) {
				w.Steps[1].StateID = "todo"
			},
			wantErr: ErrDuplicateStepState,
		},
		{
			name: "transition from non-member",
			mutate: func(w *Workflow) {
				w.Transitions[0].From = FromState("ghost")
			},
			wantErr: ErrTransitionNotMember,
		},
		{
			name: "transition to non-member",
			mutate: func(w *Workflow) {
				w.Transitions[0].To = "ghost"
			},
			wantErr: ErrTransitionNotMember,
		},
		{
			name: "zero-value transition source",
			mutate: func(w *Workflow) {
				w.Transitions[0].From = TransitionSource{}
			},
			wantErr: ErrInvalidTransitionSrc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWorkflow()
			tt.mutate(w)

			err := w.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransitionSource_Matches(t *testing.T) {
	assert.True(t, FromState("todo").Matches("todo"))
	assert.False(t, FromState("todo").Matches("doing"))
	assert.True(t, FromAnyState().Matches("todo"))
	assert.True(t, FromAnyState().Matches("anything"))
}

func TestWorkflow_HasStep(t *testing.T) {
	w := validWorkflow()

	assert.True(t, w.HasStep("doing"))
	assert.False(t, w.HasStep("ghost"))
}

func TestTask_InState(t *testing.T) {
	stateID := "todo"

	task := &Task{ID: "t1"}
	assert.False(t, task.InState("todo"))

	task.StateID = &stateID
	assert.True(t, task.InState("todo"))
	assert.False(t, task.InState("doing"))
}
