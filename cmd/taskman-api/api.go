// Package main provides the Taskman API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/chrisrneal/task-manager-sub000/pkg/cache"
	"github.com/chrisrneal/task-manager-sub000/pkg/eventbus"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/chrisrneal/task-manager-sub000/pkg/services"
	"github.com/chrisrneal/task-manager-sub000/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger        *slog.Logger
	persistence   persistence.Persistence
	eventBus      eventbus.EventBus
	workflowCache *cache.WorkflowCache
	tracer        trace.Tracer
	validate      *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	workflowCache *cache.WorkflowCache,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:        logger,
		persistence:   persistence,
		eventBus:      eventBus,
		workflowCache: workflowCache,
		tracer:        tracer,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	stateService := services.NewState(a.persistence)
	workflowService := services.NewWorkflow(a.persistence, a.eventBus, a.workflowCache)
	taskTypeService := services.NewTaskType(a.persistence)
	taskService := services.NewTask(a.persistence, workflowService, a.eventBus, a.tracer, a.logger)

	handlers := web.NewAPIHandlers(stateService, workflowService, taskTypeService, taskService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Taskman API")
	})

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

	s := app.Group("/states")
	s.Put("/:id", handlers.UpdateState)
	s.Delete("/:id", handlers.DeleteState)

	w := app.Group("/workflows")
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	tt := app.Group("/task-types")
	tt.Get("/:id", handlers.GetTaskType)
	tt.Put("/:id", handlers.UpdateTaskType)
	tt.Delete("/:id", handlers.DeleteTaskType)

	t := app.Group("/tasks")
	t.Get("/:id", handlers.GetTask)
	t.Get("/:id/legal-states", handlers.GetLegalStates)
	t.Post("/:id/transition", handlers.TransitionTask)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
