// Package postgresql provides PostgreSQL persistence implementation for
// states, workflows, task types and tasks.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence/sqlbase"
	_ "github.com/lib/pq" // postgres driver
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	stateRepo    *StateRepository
	workflowRepo *WorkflowRepository
	taskTypeRepo *TaskTypeRepository
	taskRepo     *TaskRepository
}

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		stateRepo:    NewStateRepository(database, logger),
		workflowRepo: NewWorkflowRepository(database, logger),
		taskTypeRepo: NewTaskTypeRepository(database, logger),
		taskRepo:     NewTaskRepository(database, logger),
	}

	// Run migrations on initialization
	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// States returns the state repository implementation.
func (p *Persistence) States() persistence.StateRepository {
	return p.stateRepo
}

// Workflows returns the workflow repository implementation.
func (p *Persistence) Workflows() persistence.WorkflowRepository {
	return p.workflowRepo
}

// TaskTypes returns the task type repository implementation.
func (p *Persistence) TaskTypes() persistence.TaskTypeRepository {
	return p.taskTypeRepo
}

// Tasks returns the task repository implementation.
func (p *Persistence) Tasks() persistence.TaskRepository {
	return p.taskRepo
}
