// Package events defines event types and structures for task transition notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topic.
const Topic = "taskman.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Transition lifecycle events.
	TaskTransitionAppliedEvent  EventType = "task.transition.applied"
	TaskTransitionRejectedEvent EventType = "task.transition.rejected"

	// Workflow definition lifecycle events.
	WorkflowCreatedEvent EventType = "workflow.created"
	WorkflowDeletedEvent EventType = "workflow.deleted"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ProjectID string         `json:"project_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent creates a base event with a fresh id and timestamp.
func NewBaseEvent(eventType EventType, projectID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ProjectID: projectID,
	}
}

// TaskTransitionApplied is published after the executor persisted a state
// change. FromStateID is empty for the initial assignment of a state.
type TaskTransitionApplied struct {
	BaseEvent

	TaskID      string `json:"task_id"`
	WorkflowID  string `json:"workflow_id,omitempty"`
	FromStateID string `json:"from_state_id,omitempty"`
	ToStateID   string `json:"to_state_id"`
}

func (e TaskTransitionApplied) GetType() EventType {
	return TaskTransitionAppliedEvent
}

// TaskTransitionRejected is published when a requested move was refused,
// either as illegal or because the task's state changed concurrently.
type TaskTransitionRejected struct {
	BaseEvent

	TaskID        string `json:"task_id"`
	WorkflowID    string `json:"workflow_id,omitempty"`
	TargetStateID string `json:"target_state_id"`
	Reason        string `json:"reason"`
}

func (e TaskTransitionRejected) GetType() EventType {
	return TaskTransitionRejectedEvent
}

type WorkflowCreated struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	Name       string `json:"name"`
}

func (e WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowDeleted struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
}

func (e WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}
