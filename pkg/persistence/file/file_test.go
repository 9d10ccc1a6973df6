package file

import (
	"testing"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestNewPersistence_StripsScheme(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence("file://" + dir)

	require.NoError(t, p.HealthCheck(t.Context()))
	require.NoError(t, p.Close(t.Context()))
}

func TestStateRepository_CRUD(t *testing.T) {
	p := NewPersistence(t.TempDir())

	state := &models.State{ProjectID: "p1", Name: "To Do", Position: 2}
	require.NoError(t, p.States().Save(t.Context(), state))
	assert.NotEmpty(t, state.ID)

	require.NoError(t, p.States().Save(t.Context(), &models.State{ProjectID: "p1", Name: "Done", Position: 9}))
	require.NoError(t, p.States().Save(t.Context(), &models.State{ProjectID: "p1", Name: "Doing", Position: 5}))
	require.NoError(t, p.States().Save(t.Context(), &models.State{ProjectID: "other", Name: "Elsewhere", Position: 1}))

	states, err := p.States().ListByProject(t.Context(), "p1")
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "To Do", states[0].Name)
	assert.Equal(t, "Doing", states[1].Name)
	assert.Equal(t, "Done", states[2].Name)

	fetched, err := p.States().GetByID(t.Context(), state.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "To Do", fetched.Name)

	require.NoError(t, p.States().Delete(t.Context(), state.ID))

	fetched, err = p.States().GetByID(t.Context(), state.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched)
}

func TestStateRepository_EmptyProject(t *testing.T) {
	p := NewPersistence(t.TempDir())

	states, err := p.States().ListByProject(t.Context(), "p1")
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestWorkflowRepository_RoundTrip(t *testing.T) {
	p := NewPersistence(t.TempDir())

	workflow := &models.Workflow{
		ProjectID: "p1",
		Name:      "Engineering Flow",
		Steps: []models.WorkflowStep{
			{StateID: "todo", StepOrder: 1},
			{StateID: "done", StepOrder: 2},
		},
		Transitions: []models.WorkflowTransition{
			{From: models.FromState("todo"), To: "done"},
			{From: models.FromAnyState(), To: "todo"},
		},
	}

	require.NoError(t, p.Workflows().Save(t.Context(), workflow))
	assert.NotEmpty(t, workflow.ID)
	assert.False(t, workflow.CreatedAt.IsZero())

	fetched, err := p.Workflows().GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	require.Len(t, fetched.Steps, 2)
	require.Len(t, fetched.Transitions, 2)
	assert.Equal(t, models.FromState("todo"), fetched.Transitions[0].From)
	assert.True(t, fetched.Transitions[1].From.AnyState)
}

func TestWorkflowRepository_GetByIDMissing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	workflow, err := p.Workflows().GetByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, workflow)
}

func TestTaskTypeRepository_SortsByName(t *testing.T) {
	p := NewPersistence(t.TempDir())

	require.NoError(t, p.TaskTypes().Save(t.Context(), &models.TaskType{ProjectID: "p1", Name: "Story"}))
	require.NoError(t, p.TaskTypes().Save(t.Context(), &models.TaskType{ProjectID: "p1", Name: "Bug", WorkflowID: "wf1"}))

	taskTypes, err := p.TaskTypes().ListByProject(t.Context(), "p1")
	require.NoError(t, err)
	require.Len(t, taskTypes, 2)
	assert.Equal(t, "Bug", taskTypes[0].Name)
	assert.Equal(t, "Story", taskTypes[1].Name)
}

func TestTaskRepository_UpdateState(t *testing.T) {
	p := NewPersistence(t.TempDir())

	task := &models.Task{ProjectID: "p1", Title: "Ship it"}
	require.NoError(t, p.Tasks().Save(t.Context(), task))

	// nil -> todo
	updated, err := p.Tasks().UpdateState(t.Context(), task.ID, nil, "todo")
	require.NoError(t, err)
	require.NotNil(t, updated.StateID)
	assert.Equal(t, "todo", *updated.StateID)

	// todo -> doing
	updated, err = p.Tasks().UpdateState(t.Context(), task.ID, strPtr("todo"), "doing")
	require.NoError(t, err)
	assert.Equal(t, "doing", *updated.StateID)
}

func TestTaskRepository_UpdateStateConflict(t *testing.T) {
	p := NewPersistence(t.TempDir())

	task := &models.Task{ProjectID: "p1", Title: "Ship it", StateID: strPtr("doing")}
	require.NoError(t, p.Tasks().Save(t.Context(), task))

	_, err := p.Tasks().UpdateState(t.Context(), task.ID, strPtr("todo"), "done")
	require.Error(t, err)
	assert.True(t, persistence.IsTaskStateConflict(err))

	// Expecting nil while a state is set is also a conflict.
	_, err = p.Tasks().UpdateState(t.Context(), task.ID, nil, "done")
	require.Error(t, err)
	assert.True(t, persistence.IsTaskStateConflict(err))

	stored, err := p.Tasks().GetByID(t.Context(), task.ID)
	require.NoError(t, err)
	assert.True(t, stored.InState("doing"))
}

func TestTaskRepository_UpdateStateMissingTask(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.Tasks().UpdateState(t.Context(), "missing", nil, "todo")
	require.Error(t, err)
	assert.True(t, persistence.IsTaskNotFound(err))
}
