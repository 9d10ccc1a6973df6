package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chrisrneal/task-manager-sub000/pkg/eventbus"
	"github.com/chrisrneal/task-manager-sub000/pkg/events"
	"github.com/chrisrneal/task-manager-sub000/pkg/flow"
	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ErrTaskNotFound is returned when a task is not found.
var ErrTaskNotFound = persistence.ErrTaskNotFound

type Task struct {
	persistence persistence.Persistence
	workflows   *Workflow
	publisher   eventbus.EventPublisher
	executor    *flow.Executor
	logger      *slog.Logger
}

// NewTask creates a new task service. The publisher may be nil; transition
// events are then skipped. The tracer may be nil to disable tracing.
func NewTask(
	persistence persistence.Persistence,
	workflows *Workflow,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Task {
	return &Task{
		persistence: persistence,
		workflows:   workflows,
		publisher:   publisher,
		executor:    flow.NewExecutor(persistence.Tasks(), tracer),
		logger:      logger,
	}
}

// ListByProject returns all tasks in a project.
func (t *Task) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	tasks, err := t.persistence.Tasks().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// FetchByID retrieves a task by its ID.
func (t *Task) FetchByID(ctx context.Context, id string) (*models.Task, error) {
	task, err := t.persistence.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if task == nil {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

// Create adds a new task. Tasks always start without a state; the first
// transition assigns one.
func (t *Task) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return nil, ErrTaskTitleRequired
	}

	if task.TaskTypeID != nil {
		taskType, err := t.persistence.TaskTypes().GetByID(ctx, *task.TaskTypeID)
		if err != nil {
			return nil, err
		}

		if taskType == nil {
			return nil, ErrUnknownTaskType
		}

		if taskType.ProjectID != task.ProjectID {
			return nil, ErrProjectMismatch
		}
	}

	task.ID = uuid.New().String()
	task.StateID = nil

	err := t.persistence.Tasks().Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// LegalStates resolves the set of states a task may move to right now. The
// set is never an error condition; an unconstrained task yields the whole
// project catalog.
func (t *Task) LegalStates(ctx context.Context, taskID string) ([]*models.State, error) {
	task, err := t.FetchByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	catalog, err := t.persistence.States().ListByProject(ctx, task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	def, err := t.definitionFor(ctx, task, catalog)
	if err != nil {
		return nil, err
	}

	return flow.NewResolver(catalog).LegalNextStates(task, def), nil
}

// Transition proposes moving a task to the target state and applies it when
// legal. The returned proposal reports applied or rejected along with the
// rejection reason; rejection is a normal outcome, not an error.
func (t *Task) Transition(ctx context.Context, taskID, targetStateID string) (flow.Proposal, error) {
	task, err := t.FetchByID(ctx, taskID)
	if err != nil {
		return flow.Proposal{}, err
	}

	catalog, err := t.persistence.States().ListByProject(ctx, task.ProjectID)
	if err != nil {
		return flow.Proposal{}, fmt.Errorf("failed to list states: %w", err)
	}

	target, err := t.persistence.States().GetByID(ctx, targetStateID)
	if err != nil {
		return flow.Proposal{}, err
	}

	if target == nil || target.ProjectID != task.ProjectID {
		return flow.Proposal{}, ErrUnknownState
	}

	def, err := t.definitionFor(ctx, task, catalog)
	if err != nil {
		return flow.Proposal{}, err
	}

	var fromStateID string
	if task.StateID != nil {
		fromStateID = *task.StateID
	}

	proposal, err := t.executor.Propose(ctx, task, flow.NewResolver(catalog), def, targetStateID)
	if err != nil {
		return proposal, err
	}

	var workflowID string
	if def != nil {
		workflowID = def.WorkflowID()
	}

	switch proposal.Status {
	case flow.ProposalApplied:
		t.publish(ctx, task.ID, events.TaskTransitionApplied{
			BaseEvent:   events.NewBaseEvent(events.TaskTransitionAppliedEvent, task.ProjectID),
			TaskID:      task.ID,
			WorkflowID:  workflowID,
			FromStateID: fromStateID,
			ToStateID:   targetStateID,
		})
	case flow.ProposalRejected:
		t.publish(ctx, task.ID, events.TaskTransitionRejected{
			BaseEvent:     events.NewBaseEvent(events.TaskTransitionRejectedEvent, task.ProjectID),
			TaskID:        task.ID,
			WorkflowID:    workflowID,
			TargetStateID: targetStateID,
			Reason:        proposal.Reason,
		})
	case flow.ProposalPending:
	}

	return proposal, nil
}

// definitionFor loads the workflow graph governing a task. Any broken link
// in the chain task type -> binding -> workflow leaves the task
// unconstrained, signalled by a nil definition.
func (t *Task) definitionFor(ctx context.Context, task *models.Task, catalog []*models.State) (*flow.Definition, error) {
	if task.TaskTypeID == nil {
		return nil, nil
	}

	taskType, err := t.persistence.TaskTypes().GetByID(ctx, *task.TaskTypeID)
	if err != nil {
		return nil, err
	}

	if taskType == nil || taskType.WorkflowID == "" {
		return nil, nil
	}

	workflow, err := t.workflows.Lookup(ctx, taskType.WorkflowID)
	if err != nil {
		return nil, err
	}

	return flow.BuildDefinition(workflow, catalog), nil
}

func (t *Task) publish(ctx context.Context, key string, event eventbus.Event) {
	if t.publisher == nil {
		return
	}

	err := t.publisher.Publish(ctx, key, event)
	if err != nil {
		t.logger.WarnContext(ctx, "failed to publish transition event", "key", key, "error", err)
	}
}
