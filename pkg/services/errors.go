// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/chrisrneal/task-manager-sub000/pkg/flow"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest    = errors.New("invalid request")
	ErrStateNameRequired = errors.New("state name is required")
	ErrTaskTitleRequired = errors.New("task title is required")
	ErrUnknownState      = errors.New("state does not exist in this project")
	ErrUnknownWorkflow   = errors.New("workflow does not exist in this project")
	ErrUnknownTaskType   = errors.New("task type does not exist in this project")
	ErrProjectMismatch   = errors.New("referenced entity belongs to a different project")
	ErrWorkflowNil       = errors.New("workflow cannot be nil")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrStateNameRequired) ||
		errors.Is(err, ErrTaskTitleRequired) ||
		errors.Is(err, ErrUnknownState) ||
		errors.Is(err, ErrUnknownWorkflow) ||
		errors.Is(err, ErrUnknownTaskType) ||
		errors.Is(err, ErrProjectMismatch) ||
		errors.Is(err, ErrWorkflowNil)
}

// IsNotFoundError checks if an error means the requested entity does not
// exist and should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsStateNotFound(err) ||
		persistence.IsWorkflowNotFound(err) ||
		persistence.IsTaskTypeNotFound(err) ||
		persistence.IsTaskNotFound(err)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return flow.IsInvalidTransition(err) ||
		persistence.IsTaskStateConflict(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
