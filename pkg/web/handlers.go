// Package web provides HTTP handlers and REST API endpoints for task and
// workflow management.
package web

import (
	"net/http"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/flow"
	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/chrisrneal/task-manager-sub000/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	stateService    *services.State
	workflowService *services.Workflow
	taskTypeService *services.TaskType
	taskService     *services.Task
	validator       *validator.Validate
}

func NewAPIHandlers(
	stateService *services.State,
	workflowService *services.Workflow,
	taskTypeService *services.TaskType,
	taskService *services.Task,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		stateService:    stateService,
		workflowService: workflowService,
		taskTypeService: taskTypeService,
		taskService:     taskService,
		validator:       validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Task API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Task API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// States

func (h *APIHandlers) GetStates(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	states, err := h.stateService.ListByProject(c.Context(), projectID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"states": states})
}

func (h *APIHandlers) CreateState(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	var req CreateStateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state := &models.State{
		ProjectID: projectID,
		Name:      req.Name,
		Position:  req.Position,
	}

	created, err := h.stateService.Create(c.Context(), state)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateState(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "State ID is required")
	}

	var req UpdateStateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.stateService.Update(c.Context(), id, &models.State{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteState(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "State ID is required")
	}

	err := h.stateService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsStateNotFound(err) {
			return notFound(c, "State not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Workflows

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	workflows, err := h.workflowService.ListByProject(c.Context(), projectID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := toWorkflow(projectID, req.Name, req.Steps, req.Transitions)

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := toWorkflow("", req.Name, req.Steps, req.Transitions)

	updated, err := h.workflowService.Update(c.Context(), id, workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ImportWorkflow(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	created, err := h.workflowService.Import(c.Context(), projectID, c.Body())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Task types

func (h *APIHandlers) GetTaskTypes(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	taskTypes, err := h.taskTypeService.ListByProject(c.Context(), projectID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"task_types": taskTypes})
}

func (h *APIHandlers) GetTaskType(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task type ID is required")
	}

	taskType, err := h.taskTypeService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsTaskTypeNotFound(err) {
			return notFound(c, "Task type not found")
		}

		return internalError(c, err)
	}

	return c.JSON(taskType)
}

func (h *APIHandlers) CreateTaskType(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	var req CreateTaskTypeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	taskType := &models.TaskType{
		ProjectID:  projectID,
		Name:       req.Name,
		WorkflowID: req.WorkflowID,
	}

	created, err := h.taskTypeService.Create(c.Context(), taskType)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTaskType(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task type ID is required")
	}

	var req UpdateTaskTypeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.taskTypeService.Update(c.Context(), id, &models.TaskType{
		Name:       req.Name,
		WorkflowID: req.WorkflowID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteTaskType(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task type ID is required")
	}

	err := h.taskTypeService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsTaskTypeNotFound(err) {
			return notFound(c, "Task type not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Tasks

func (h *APIHandlers) GetTasks(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	tasks, err := h.taskService.ListByProject(c.Context(), projectID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"tasks": tasks})
}

func (h *APIHandlers) GetTask(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task ID is required")
	}

	task, err := h.taskService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsTaskNotFound(err) {
			return notFound(c, "Task not found")
		}

		return internalError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) CreateTask(c fiber.Ctx) error {
	projectID := c.Params("projectId")
	if projectID == "" {
		return badRequest(c, "Project ID is required")
	}

	var req CreateTaskRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	task := &models.Task{
		ProjectID:  projectID,
		Title:      req.Title,
		TaskTypeID: req.TaskTypeID,
	}

	created, err := h.taskService.Create(c.Context(), task)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetLegalStates(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task ID is required")
	}

	states, err := h.taskService.LegalStates(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(LegalStatesResponse{
		TaskID: id,
		States: states,
	})
}

// TransitionTask proposes a state change. A rejected proposal is reported
// with 409 and the proposal body so the caller can re-resolve and retry.
func (h *APIHandlers) TransitionTask(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task ID is required")
	}

	var req TransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	proposal, err := h.taskService.Transition(c.Context(), id, req.TargetStateID)
	if err != nil {
		return handleServiceError(c, err)
	}

	if proposal.Status == flow.ProposalRejected {
		return c.Status(fiber.StatusConflict).JSON(proposal)
	}

	return c.JSON(proposal)
}
