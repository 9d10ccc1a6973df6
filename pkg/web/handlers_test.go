package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chrisrneal/task-manager-sub000/pkg/flow"
	"github.com/chrisrneal/task-manager-sub000/pkg/log"
	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence/file"
	"github.com/chrisrneal/task-manager-sub000/pkg/services"
	"github.com/chrisrneal/task-manager-sub000/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app *fiber.App
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	stateService := services.NewState(persistence)
	workflowService := services.NewWorkflow(persistence, nil, nil)
	taskTypeService := services.NewTaskType(persistence)
	taskService := services.NewTask(persistence, workflowService, nil, nil, log.WithModule("test"))

	handlers := web.NewAPIHandlers(stateService, workflowService, taskTypeService, taskService, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	p := app.Group("/projects/:projectId")
	p.Get("/states", handlers.GetStates)
	p.Post("/states", handlers.CreateState)
	p.Get("/workflows", handlers.GetWorkflows)
	p.Post("/workflows", handlers.CreateWorkflow)
	p.Post("/workflows/import", handlers.ImportWorkflow)
	p.Get("/task-types", handlers.GetTaskTypes)
	p.Post("/task-types", handlers.CreateTaskType)
	p.Get("/tasks", handlers.GetTasks)
	p.Post("/tasks", handlers.CreateTask)

	app.Get("/workflows/:id", handlers.GetWorkflow)
	app.Delete("/workflows/:id", handlers.DeleteWorkflow)
	app.Get("/tasks/:id", handlers.GetTask)
	app.Get("/tasks/:id/legal-states", handlers.GetLegalStates)
	app.Post("/tasks/:id/transition", handlers.TransitionTask)

	return &testEnv{app: app}
}

func (e *testEnv) request(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()

	var body []byte

	if payload != nil {
		var err error

		if str, ok := payload.(string); ok {
			body = []byte(str)
		} else {
			body, err = json.Marshal(payload)
			require.NoError(t, err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

// seedBoard creates a catalog, a linear workflow over it and a bound task
// type through the HTTP surface, returning the created ids.
func seedBoard(t *testing.T, e *testEnv) (workflowID, taskTypeID string, stateIDs map[string]string) {
	t.Helper()

	stateIDs = make(map[string]string)

	for _, name := range []string{"To Do", "In Progress", "Done"} {
		resp := e.request(t, http.MethodPost, "/projects/p1/states", web.CreateStateRequest{Name: name})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var state models.State

		decodeBody(t, resp, &state)
		stateIDs[name] = state.ID
	}

	todoID := stateIDs["To Do"]
	doingID := stateIDs["In Progress"]

	resp := e.request(t, http.MethodPost, "/projects/p1/workflows", web.CreateWorkflowRequest{
		Name: "Engineering Flow",
		Steps: []web.WorkflowStepRequest{
			{StateID: stateIDs["To Do"], StepOrder: 1},
			{StateID: stateIDs["In Progress"], StepOrder: 2},
			{StateID: stateIDs["Done"], StepOrder: 3},
		},
		Transitions: []web.WorkflowTransitionRequest{
			{FromStateID: &todoID, ToStateID: stateIDs["In Progress"]},
			{FromStateID: &doingID, ToStateID: stateIDs["Done"]},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow

	decodeBody(t, resp, &workflow)

	resp = e.request(t, http.MethodPost, "/projects/p1/task-types", web.CreateTaskTypeRequest{
		Name:       "Bug",
		WorkflowID: workflow.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var taskType models.TaskType

	decodeBody(t, resp, &taskType)

	return workflow.ID, taskType.ID, stateIDs
}

func TestCreateState(t *testing.T) {
	e := setupTestApp(t)

	resp := e.request(t, http.MethodPost, "/projects/p1/states", web.CreateStateRequest{Name: "To Do"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var state models.State

	decodeBody(t, resp, &state)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "p1", state.ProjectID)
	assert.Equal(t, "To Do", state.Name)

	resp = e.request(t, http.MethodPost, "/projects/p1/states", web.CreateStateRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateWorkflow_RejectsBrokenGraph(t *testing.T) {
	e := setupTestApp(t)

	resp := e.request(t, http.MethodPost, "/projects/p1/workflows", web.CreateWorkflowRequest{
		Name: "Broken Flow",
		Steps: []web.WorkflowStepRequest{
			{StateID: "a", StepOrder: 1},
			{StateID: "b", StepOrder: 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestImportWorkflow(t *testing.T) {
	e := setupTestApp(t)

	resp := e.request(t, http.MethodPost, "/projects/p1/workflows/import", `{
		"name": "Imported Flow",
		"steps": [
			{"state_id": "todo", "step_order": 1},
			{"state_id": "done", "step_order": 2}
		],
		"transitions": [
			{"from_state": null, "to_state": "done"}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow

	decodeBody(t, resp, &workflow)
	assert.Equal(t, "Imported Flow", workflow.Name)
	assert.Len(t, workflow.Steps, 2)

	resp = e.request(t, http.MethodPost, "/projects/p1/workflows/import", `{"steps": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetWorkflow_NotFound(t *testing.T) {
	e := setupTestApp(t)

	resp := e.request(t, http.MethodGet, "/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDeleteWorkflow(t *testing.T) {
	e := setupTestApp(t)
	workflowID, _, _ := seedBoard(t, e)

	resp := e.request(t, http.MethodDelete, "/workflows/"+workflowID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = e.request(t, http.MethodDelete, "/workflows/"+workflowID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateTaskType_UnknownWorkflow(t *testing.T) {
	e := setupTestApp(t)

	resp := e.request(t, http.MethodPost, "/projects/p1/task-types", web.CreateTaskTypeRequest{
		Name:       "Bug",
		WorkflowID: "ghost",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	e := setupTestApp(t)
	_, taskTypeID, states := seedBoard(t, e)

	resp := e.request(t, http.MethodPost, "/projects/p1/tasks", web.CreateTaskRequest{
		Title:      "Fix login flow",
		TaskTypeID: &taskTypeID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task models.Task

	decodeBody(t, resp, &task)
	require.NotEmpty(t, task.ID)
	assert.Nil(t, task.StateID)

	// A new typed task may only enter the first workflow state.
	resp = e.request(t, http.MethodGet, "/tasks/"+task.ID+"/legal-states", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var legal web.LegalStatesResponse

	decodeBody(t, resp, &legal)
	require.Len(t, legal.States, 1)
	assert.Equal(t, states["To Do"], legal.States[0].ID)

	// Jumping straight to Done is a conflict.
	resp = e.request(t, http.MethodPost, "/tasks/"+task.ID+"/transition", web.TransitionRequest{
		TargetStateID: states["Done"],
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var rejectedProposal flow.Proposal

	decodeBody(t, resp, &rejectedProposal)
	assert.Equal(t, flow.ProposalRejected, rejectedProposal.Status)
	assert.Equal(t, flow.RejectionIllegalTarget, rejectedProposal.Reason)

	// The legal first move succeeds.
	resp = e.request(t, http.MethodPost, "/tasks/"+task.ID+"/transition", web.TransitionRequest{
		TargetStateID: states["To Do"],
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var appliedProposal flow.Proposal

	decodeBody(t, resp, &appliedProposal)
	require.Equal(t, flow.ProposalApplied, appliedProposal.Status)
	require.NotNil(t, appliedProposal.Task)
	assert.Equal(t, states["To Do"], *appliedProposal.Task.StateID)

	resp = e.request(t, http.MethodGet, "/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Task

	decodeBody(t, resp, &stored)
	assert.True(t, stored.InState(states["To Do"]))
}

func TestTransition_UnknownTargetState(t *testing.T) {
	e := setupTestApp(t)
	_, taskTypeID, _ := seedBoard(t, e)

	resp := e.request(t, http.MethodPost, "/projects/p1/tasks", web.CreateTaskRequest{
		Title:      "Fix login flow",
		TaskTypeID: &taskTypeID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task models.Task

	decodeBody(t, resp, &task)

	resp = e.request(t, http.MethodPost, "/tasks/"+task.ID+"/transition", web.TransitionRequest{
		TargetStateID: "ghost",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestTransition_MissingTask(t *testing.T) {
	e := setupTestApp(t)
	seedBoard(t, e)

	resp := e.request(t, http.MethodPost, "/tasks/missing/transition", web.TransitionRequest{
		TargetStateID: "anything",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetTasks(t *testing.T) {
	e := setupTestApp(t)
	seedBoard(t, e)

	resp := e.request(t, http.MethodPost, "/projects/p1/tasks", web.CreateTaskRequest{Title: "Untyped chore"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = e.request(t, http.MethodGet, "/projects/p1/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Tasks []*models.Task `json:"tasks"`
	}

	decodeBody(t, resp, &payload)
	require.Len(t, payload.Tasks, 1)
	assert.Equal(t, "Untyped chore", payload.Tasks[0].Title)
}
