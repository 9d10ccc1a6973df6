package flow

import (
	"testing"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func linearWorkflow() *models.Workflow {
	return &models.Workflow{
		ID: "wf1",
		Steps: []models.WorkflowStep{
			{StateID: "todo", StepOrder: 1},
			{StateID: "doing", StepOrder: 2},
			{StateID: "review", StepOrder: 3},
			{StateID: "done", StepOrder: 4},
		},
		Transitions: []models.WorkflowTransition{
			{From: models.FromState("todo"), To: "doing"},
			{From: models.FromState("doing"), To: "review"},
			{From: models.FromState("review"), To: "done"},
			{From: models.FromState("review"), To: "doing"},
		},
	}
}

func stateIDs(states []*models.State) []string {
	ids := make([]string, 0, len(states))
	for _, state := range states {
		ids = append(ids, state.ID)
	}

	return ids
}

func TestLegalNextStates_UntypedTaskGetsWholeCatalog(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)
	def := BuildDefinition(linearWorkflow(), catalog)

	task := &models.Task{ID: "t1", ProjectID: "p1", StateID: strPtr("todo")}

	legal := resolver.LegalNextStates(task, def)
	assert.ElementsMatch(t, []string{"todo", "doing", "review", "done"}, stateIDs(legal))
}

func TestLegalNextStates_NoWorkflowGetsWholeCatalog(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)

	task := &models.Task{ID: "t1", ProjectID: "p1", TaskTypeID: strPtr("tt1"), StateID: strPtr("todo")}

	legal := resolver.LegalNextStates(task, nil)
	assert.ElementsMatch(t, []string{"todo", "doing", "review", "done"}, stateIDs(legal))
}

func TestLegalNextStates_StatelessTaskGetsFirstStateOnly(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)
	def := BuildDefinition(linearWorkflow(), catalog)

	task := &models.Task{ID: "t1", ProjectID: "p1", TaskTypeID: strPtr("tt1")}

	legal := resolver.LegalNextStates(task, def)
	assert.Equal(t, []string{"todo"}, stateIDs(legal))
}

func TestLegalNextStates_StatelessTaskWithEmptyWorkflow(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)
	def := BuildDefinition(&models.Workflow{ID: "wf-empty"}, catalog)

	task := &models.Task{ID: "t1", ProjectID: "p1", TaskTypeID: strPtr("tt1")}

	legal := resolver.LegalNextStates(task, def)
	require.NotNil(t, legal)
	assert.Empty(t, legal)
}

func TestLegalNextStates_CurrentStateAlwaysLegal(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)

	// "done" declares no outgoing transitions; staying put is still legal.
	def := BuildDefinition(linearWorkflow(), catalog)
	task := &models.Task{ID: "t1", ProjectID: "p1", TaskTypeID: strPtr("tt1"), StateID: strPtr("done")}

	legal := resolver.LegalNextStates(task, def)
	assert.Equal(t, []string{"done"}, stateIDs(legal))
	assert.True(t, resolver.IsLegal(task, def, "done"))
}

func TestLegalNextStates_ExplicitTransitions(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)
	def := BuildDefinition(linearWorkflow(), catalog)

	task := &models.Task{ID: "t1", ProjectID: "p1", TaskTypeID: strPtr("tt1"), StateID: strPtr("review")}

	legal := resolver.LegalNextStates(task, def)
	assert.ElementsMatch(t, []string{"review", "done", "doing"}, stateIDs(legal))

	assert.True(t, resolver.IsLegal(task, def, "done"))
	assert.False(t, resolver.IsLegal(task, def, "todo"))
}

func TestLegalNextStates_WildcardUnionDeduplicated(t *testing.T) {
	catalog := catalogFixture()
	workflow := linearWorkflow()
	workflow.Transitions = append(workflow.Transitions,
		models.WorkflowTransition{From: models.FromAnyState(), To: "done"},
		models.WorkflowTransition{From: models.FromAnyState(), To: "todo"},
	)

	resolver := NewResolver(catalog)
	def := BuildDefinition(workflow, catalog)

	// From review: current + explicit{done, doing} + wildcard{done, todo};
	// done appears in both sets but only once in the result.
	task := &models.Task{ID: "t1", ProjectID: "p1", TaskTypeID: strPtr("tt1"), StateID: strPtr("review")}

	legal := resolver.LegalNextStates(task, def)
	assert.ElementsMatch(t, []string{"review", "done", "doing", "todo"}, stateIDs(legal))
	assert.Len(t, legal, 4)
}

func TestLegalNextStates_CurrentStateOutsideWorkflow(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)

	// Workflow without "done"; a task stranded there can only use wildcard
	// targets, since neither its current state nor any explicit source
	// matches a member.
	workflow := &models.Workflow{
		ID: "wf1",
		Steps: []models.WorkflowStep{
			{StateID: "todo", StepOrder: 1},
			{StateID: "doing", StepOrder: 2},
		},
		Transitions: []models.WorkflowTransition{
			{From: models.FromState("todo"), To: "doing"},
			{From: models.FromAnyState(), To: "todo"},
		},
	}

	def := BuildDefinition(workflow, catalog)
	task := &models.Task{ID: "t1", ProjectID: "p1", TaskTypeID: strPtr("tt1"), StateID: strPtr("done")}

	legal := resolver.LegalNextStates(task, def)
	assert.Equal(t, []string{"todo"}, stateIDs(legal))
}

func TestLegalNextStates_FallbackCopiesCatalog(t *testing.T) {
	catalog := catalogFixture()
	resolver := NewResolver(catalog)

	task := &models.Task{ID: "t1", ProjectID: "p1"}

	legal := resolver.LegalNextStates(task, nil)
	require.Len(t, legal, len(catalog))

	// Mutating the result must not corrupt the resolver's catalog.
	legal[0] = nil
	again := resolver.LegalNextStates(task, nil)
	assert.NotNil(t, again[0])
}
