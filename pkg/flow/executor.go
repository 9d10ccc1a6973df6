package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/otelhelper"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidTransition indicates the requested target state is not in the
// task's resolved legal set. Recoverable by the caller; never fatal.
var ErrInvalidTransition = errors.New("invalid transition")

// InvalidTransitionError carries the rejected move's details.
type InvalidTransitionError struct {
	TaskID        string
	TargetStateID string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for task %s: state %s is not a legal next state", e.TaskID, e.TargetStateID)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsInvalidTransition checks if an error indicates a rejected state move.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// Executor is the sole writer of a task's state. It validates the requested
// move against the resolver and persists it with a guarded write, so a
// racing transition surfaces as a conflict instead of a silent overwrite.
type Executor struct {
	tasks  persistence.TaskRepository
	tracer trace.Tracer
}

// NewExecutor creates an executor over the given task repository. The tracer
// may be nil, in which case no spans are recorded.
func NewExecutor(tasks persistence.TaskRepository, tracer trace.Tracer) *Executor {
	return &Executor{tasks: tasks, tracer: tracer}
}

// Apply validates and persists a state change for the task. On success the
// updated task is returned and exactly one write occurred; on failure the
// stored task is untouched. The failure modes callers must handle:
// ErrInvalidTransition for an illegal target, persistence.ErrTaskStateConflict
// when the stored state moved under us, persistence.ErrTaskNotFound when the
// task disappeared. Other persistence errors propagate unmodified.
func (e *Executor) Apply(ctx context.Context, task *models.Task, resolver *Resolver, def *Definition, targetStateID string) (*models.Task, error) {
	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "flow.apply_transition",
			attribute.String(otelhelper.TaskIDKey, task.ID),
			attribute.String(otelhelper.TargetStateIDKey, targetStateID),
		)
		defer span.End()
	}

	if !resolver.IsLegal(task, def, targetStateID) {
		err := &InvalidTransitionError{TaskID: task.ID, TargetStateID: targetStateID}
		e.recordError(ctx, err)

		return nil, err
	}

	updated, err := e.tasks.UpdateState(ctx, task.ID, task.StateID, targetStateID)
	if err != nil {
		e.recordError(ctx, err)

		return nil, err
	}

	return updated, nil
}

// ProposalStatus is the lifecycle of a transition command.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApplied  ProposalStatus = "applied"
	ProposalRejected ProposalStatus = "rejected"
)

// Rejection reasons surfaced on proposals.
const (
	RejectionIllegalTarget = "target state is not a legal next state"
	RejectionStateConflict = "task state changed concurrently; re-resolve and retry"
)

// Proposal is the result of a requested transition. A board UI submits the
// drop optimistically, renders the pending proposal, and reverts when the
// settled status comes back rejected.
type Proposal struct {
	TaskID        string         `json:"task_id"`
	TargetStateID string         `json:"target_state_id"`
	Status        ProposalStatus `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	Task          *models.Task   `json:"task,omitempty"`
}

// Propose runs Apply and folds its domain outcomes into a settled proposal:
// applied with the updated task, or rejected with a reason for an illegal
// target or a lost race. Infrastructure failures (task gone, storage errors)
// are returned as errors alongside the still-pending proposal.
func (e *Executor) Propose(ctx context.Context, task *models.Task, resolver *Resolver, def *Definition, targetStateID string) (Proposal, error) {
	proposal := Proposal{
		TaskID:        task.ID,
		TargetStateID: targetStateID,
		Status:        ProposalPending,
	}

	updated, err := e.Apply(ctx, task, resolver, def, targetStateID)

	switch {
	case err == nil:
		proposal.Status = ProposalApplied
		proposal.Task = updated
	case IsInvalidTransition(err):
		proposal.Status = ProposalRejected
		proposal.Reason = RejectionIllegalTarget
	case persistence.IsTaskStateConflict(err):
		proposal.Status = ProposalRejected
		proposal.Reason = RejectionStateConflict
	default:
		return proposal, err
	}

	return proposal, nil
}

func (e *Executor) recordError(ctx context.Context, err error) {
	if e.tracer == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	otelhelper.SetError(span, err)
}
