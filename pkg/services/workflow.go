package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/cache"
	"github.com/chrisrneal/task-manager-sub000/pkg/eventbus"
	"github.com/chrisrneal/task-manager-sub000/pkg/events"
	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

type Workflow struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	cache       *cache.WorkflowCache
}

// NewWorkflow creates a new workflow service. The publisher and cache may be
// nil; lifecycle events and caching are then skipped.
func NewWorkflow(persistence persistence.Persistence, publisher eventbus.EventPublisher, workflowCache *cache.WorkflowCache) *Workflow {
	return &Workflow{
		persistence: persistence,
		publisher:   publisher,
		cache:       workflowCache,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListByProject returns all workflows defined in a project.
func (w *Workflow) ListByProject(ctx context.Context, projectID string) ([]*models.Workflow, error) {
	workflows, err := w.persistence.Workflows().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// Lookup retrieves a workflow by ID, consulting the cache first. It returns
// (nil, nil) when the workflow does not exist.
func (w *Workflow) Lookup(ctx context.Context, id string) (*models.Workflow, error) {
	if w.cache != nil {
		if cached, ok := w.cache.Get(ctx, id); ok {
			return cached, nil
		}
	}

	workflow, err := w.persistence.Workflows().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow != nil && w.cache != nil {
		w.cache.Set(ctx, workflow)
	}

	return workflow, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// Create adds a new workflow to the repository after structural validation.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	err := workflow.Validate()
	if err != nil {
		return nil, NewValidationError("Create", "INVALID_WORKFLOW", err.Error(), err)
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	err = w.persistence.Workflows().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	if w.cache != nil {
		w.cache.Set(ctx, workflow)
	}

	w.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent:  events.NewBaseEvent(events.WorkflowCreatedEvent, workflow.ProjectID),
		WorkflowID: workflow.ID,
		Name:       workflow.Name,
	})

	return workflow, nil
}

// Update modifies an existing workflow by its ID.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, ErrWorkflowNotFound
	}

	err = workflow.Validate()
	if err != nil {
		return nil, NewValidationError("Update", "INVALID_WORKFLOW", err.Error(), err)
	}

	workflow.ID = workflowID
	workflow.ProjectID = existing.ProjectID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	err = w.persistence.Workflows().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	if w.cache != nil {
		w.cache.Set(ctx, workflow)
	}

	return workflow, nil
}

// Delete removes a workflow by its ID. Task types still bound to the removed
// workflow fall back to unconstrained resolution.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	existing, err := w.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrWorkflowNotFound
	}

	err = w.persistence.Workflows().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	if w.cache != nil {
		w.cache.Invalidate(ctx, workflowID)
	}

	w.publish(ctx, workflowID, events.WorkflowDeleted{
		BaseEvent:  events.NewBaseEvent(events.WorkflowDeletedEvent, existing.ProjectID),
		WorkflowID: workflowID,
	})

	return nil
}

// workflowImportSchema describes the accepted import document shape.
var workflowImportSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "steps"},
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "minLength": 1},
		"steps": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"state_id", "step_order"},
				"properties": map[string]any{
					"state_id":   map[string]any{"type": "string", "minLength": 1},
					"step_order": map[string]any{"type": "integer"},
				},
			},
		},
		"transitions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"to_state"},
				"properties": map[string]any{
					"from_state": map[string]any{"type": []any{"string", "null"}},
					"to_state":   map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

type workflowImportDoc struct {
	Name  string `json:"name"`
	Steps []struct {
		StateID   string `json:"state_id"`
		StepOrder int    `json:"step_order"`
	} `json:"steps"`
	Transitions []struct {
		FromState *string `json:"from_state"`
		ToState   string  `json:"to_state"`
	} `json:"transitions"`
}

// Import validates a JSON workflow document against the import schema and
// creates the workflow. A null or absent from_state marks a transition as
// reachable from any member state.
func (w *Workflow) Import(ctx context.Context, projectID string, doc []byte) (*models.Workflow, error) {
	var raw map[string]any

	err := json.Unmarshal(doc, &raw)
	if err != nil {
		return nil, NewValidationError("Import", "INVALID_JSON", err.Error(), ErrInvalidRequest)
	}

	err = w.validateImportDoc(raw)
	if err != nil {
		return nil, err
	}

	var parsed workflowImportDoc

	err = json.Unmarshal(doc, &parsed)
	if err != nil {
		return nil, NewValidationError("Import", "INVALID_JSON", err.Error(), ErrInvalidRequest)
	}

	workflow := &models.Workflow{
		ProjectID: projectID,
		Name:      strings.TrimSpace(parsed.Name),
	}

	for _, step := range parsed.Steps {
		workflow.Steps = append(workflow.Steps, models.WorkflowStep{
			StateID:   step.StateID,
			StepOrder: step.StepOrder,
		})
	}

	for _, transition := range parsed.Transitions {
		source := models.FromAnyState()
		if transition.FromState != nil {
			source = models.FromState(*transition.FromState)
		}

		workflow.Transitions = append(workflow.Transitions, models.WorkflowTransition{
			From: source,
			To:   transition.ToState,
		})
	}

	return w.Create(ctx, workflow)
}

// validateImportDoc validates an import document against the JSON schema.
func (w *Workflow) validateImportDoc(doc map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(workflowImportSchema)
	dataLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate workflow document: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return NewValidationError("Import", "INVALID_WORKFLOW_DOC", strings.Join(messages, "; "), ErrInvalidRequest)
	}

	return nil
}

func (w *Workflow) publish(ctx context.Context, key string, event eventbus.Event) {
	if w.publisher == nil {
		return
	}

	// Lifecycle events are best effort; a publish failure never fails the write.
	_ = w.publisher.Publish(ctx, key, event)
}
