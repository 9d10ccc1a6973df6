// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrStateNotFound indicates a state was not found by the given identifier.
	ErrStateNotFound = errors.New("state not found")

	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTaskTypeNotFound indicates a task type was not found by the given identifier.
	ErrTaskTypeNotFound = errors.New("task type not found")

	// ErrTaskNotFound indicates a task was not found by the given identifier.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskStateConflict indicates a guarded state write found the task in a
	// different state than the caller expected. The caller should re-resolve
	// the legal moves and retry.
	ErrTaskStateConflict = errors.New("task state changed concurrently")
)

// TaskError wraps task-related errors with additional context.
type TaskError struct {
	Op     string // Operation being performed (e.g. "GetByID", "UpdateState")
	TaskID string
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s operation failed for task %s: %v", e.Op, e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func (e *TaskError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTaskError creates a new task error with context.
func NewTaskError(op, taskID string, err error) *TaskError {
	return &TaskError{Op: op, TaskID: taskID, Err: err}
}

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{Op: op, WorkflowID: workflowID, Err: err}
}

// IsStateNotFound checks if an error indicates a state was not found.
func IsStateNotFound(err error) bool {
	return errors.Is(err, ErrStateNotFound)
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsTaskTypeNotFound checks if an error indicates a task type was not found.
func IsTaskTypeNotFound(err error) bool {
	return errors.Is(err, ErrTaskTypeNotFound)
}

// IsTaskNotFound checks if an error indicates a task was not found.
func IsTaskNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}

// IsTaskStateConflict checks if an error indicates a guarded state write lost a race.
func IsTaskStateConflict(err error) bool {
	return errors.Is(err, ErrTaskStateConflict)
}
