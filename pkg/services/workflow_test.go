package services

import (
	"testing"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engineeringWorkflow(projectID string) *models.Workflow {
	return &models.Workflow{
		ProjectID: projectID,
		Name:      "Engineering Flow",
		Steps: []models.WorkflowStep{
			{StateID: "todo", StepOrder: 1},
			{StateID: "doing", StepOrder: 2},
			{StateID: "done", StepOrder: 3},
		},
		Transitions: []models.WorkflowTransition{
			{From: models.FromState("todo"), To: "doing"},
			{From: models.FromState("doing"), To: "done"},
		},
	}
}

func TestWorkflow_Create(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	created, err := service.Create(t.Context(), engineeringWorkflow("p1"))
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())
}

func TestWorkflow_CreateRejectsBrokenGraph(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	workflow := engineeringWorkflow("p1")
	workflow.Transitions = append(workflow.Transitions, models.WorkflowTransition{
		From: models.FromState("todo"),
		To:   "ghost",
	})

	_, err := service.Create(t.Context(), workflow)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = service.Create(t.Context(), nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_FetchByID(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	created, err := service.Create(t.Context(), engineeringWorkflow("p1"))
	require.NoError(t, err)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Len(t, fetched.Steps, 3)

	_, err = service.FetchByID(t.Context(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_Lookup(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	missing, err := service.Lookup(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWorkflow_Update(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	created, err := service.Create(t.Context(), engineeringWorkflow("p1"))
	require.NoError(t, err)

	replacement := engineeringWorkflow("ignored")
	replacement.Name = "Engineering Flow v2"
	replacement.Steps = replacement.Steps[:2]
	replacement.Transitions = replacement.Transitions[:1]

	updated, err := service.Update(t.Context(), created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "p1", updated.ProjectID)
	assert.Equal(t, "Engineering Flow v2", updated.Name)
	assert.Len(t, updated.Steps, 2)
}

func TestWorkflow_Delete(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	created, err := service.Create(t.Context(), engineeringWorkflow("p1"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	err = service.Delete(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_Import(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	doc := []byte(`{
		"name": "Imported Flow",
		"steps": [
			{"state_id": "todo", "step_order": 1},
			{"state_id": "done", "step_order": 2}
		],
		"transitions": [
			{"from_state": "todo", "to_state": "done"},
			{"from_state": null, "to_state": "todo"}
		]
	}`)

	created, err := service.Import(t.Context(), "p1", doc)
	require.NoError(t, err)

	assert.Equal(t, "p1", created.ProjectID)
	assert.Equal(t, "Imported Flow", created.Name)
	require.Len(t, created.Steps, 2)
	require.Len(t, created.Transitions, 2)
	assert.Equal(t, models.FromState("todo"), created.Transitions[0].From)
	assert.True(t, created.Transitions[1].From.AnyState)
	assert.Equal(t, "todo", created.Transitions[1].To)
}

func TestWorkflow_ImportRejectsInvalidDocs(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{"name": `},
		{name: "missing name", doc: `{"steps": [{"state_id": "todo", "step_order": 1}]}`},
		{name: "no steps", doc: `{"name": "Flow", "steps": []}`},
		{name: "transition without target", doc: `{"name": "Flow", "steps": [{"state_id": "todo", "step_order": 1}], "transitions": [{"from_state": "todo"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Import(t.Context(), "p1", []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestWorkflow_HealthCheck(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence, nil, nil)

	message, ok := service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.NotEmpty(t, message)
}
