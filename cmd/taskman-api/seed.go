package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chrisrneal/task-manager-sub000/pkg/config"
	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/chrisrneal/task-manager-sub000/pkg/services"
)

// applySeed bootstraps a project board from a YAML seed file. A project that
// already has states is left alone, so restarting with the same seed is safe.
func applySeed(ctx context.Context, logger *slog.Logger, p persistence.Persistence, path string) error {
	seed, err := config.LoadSeed(path)
	if err != nil {
		return err
	}

	stateService := services.NewState(p)
	workflowService := services.NewWorkflow(p, nil, nil)
	taskTypeService := services.NewTaskType(p)

	existing, err := stateService.ListByProject(ctx, seed.ProjectID)
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		logger.InfoContext(ctx, "Project already seeded, skipping", "project_id", seed.ProjectID)

		return nil
	}

	stateIDs := make(map[string]string, len(seed.States))

	for i, state := range seed.States {
		position := state.Position
		if position == 0 {
			position = i + 1
		}

		created, err := stateService.Create(ctx, &models.State{
			ProjectID: seed.ProjectID,
			Name:      state.Name,
			Position:  position,
		})
		if err != nil {
			return fmt.Errorf("failed to seed state %q: %w", state.Name, err)
		}

		stateIDs[state.Name] = created.ID
	}

	workflowIDs := make(map[string]string, len(seed.Workflows))

	for _, workflowSeed := range seed.Workflows {
		workflow := &models.Workflow{
			ProjectID: seed.ProjectID,
			Name:      workflowSeed.Name,
		}

		for i, step := range workflowSeed.Steps {
			order := step.Order
			if order == 0 {
				order = i + 1
			}

			workflow.Steps = append(workflow.Steps, models.WorkflowStep{
				StateID:   stateIDs[step.State],
				StepOrder: order,
			})
		}

		for _, transition := range workflowSeed.Transitions {
			source := models.FromAnyState()
			if transition.From != nil {
				source = models.FromState(stateIDs[*transition.From])
			}

			workflow.Transitions = append(workflow.Transitions, models.WorkflowTransition{
				From: source,
				To:   stateIDs[transition.To],
			})
		}

		created, err := workflowService.Create(ctx, workflow)
		if err != nil {
			return fmt.Errorf("failed to seed workflow %q: %w", workflowSeed.Name, err)
		}

		workflowIDs[workflowSeed.Name] = created.ID
	}

	for _, taskTypeSeed := range seed.TaskTypes {
		_, err := taskTypeService.Create(ctx, &models.TaskType{
			ProjectID:  seed.ProjectID,
			Name:       taskTypeSeed.Name,
			WorkflowID: workflowIDs[taskTypeSeed.Workflow],
		})
		if err != nil {
			return fmt.Errorf("failed to seed task type %q: %w", taskTypeSeed.Name, err)
		}
	}

	logger.InfoContext(ctx, "Project seeded",
		"project_id", seed.ProjectID,
		"states", len(seed.States),
		"workflows", len(seed.Workflows),
		"task_types", len(seed.TaskTypes))

	return nil
}
