// Package file provides file-based persistence implementation for states,
// workflows, task types and tasks. Each entity is stored as one JSON
// document; intended for development and tests, not for concurrent
// production load.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	stateRepo    *StateRepository
	workflowRepo *WorkflowRepository
	taskTypeRepo *TaskTypeRepository
	taskRepo     *TaskRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)
	store := newStore(cleanRoot)

	return &Persistence{
		root:         cleanRoot,
		stateRepo:    &StateRepository{store: store},
		workflowRepo: &WorkflowRepository{store: store},
		taskTypeRepo: &TaskTypeRepository{store: store},
		taskRepo:     &TaskRepository{store: store},
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// States returns the state repository implementation for file persistence.
func (fp *Persistence) States() persistence.StateRepository {
	return fp.stateRepo
}

// Workflows returns the workflow repository implementation for file persistence.
func (fp *Persistence) Workflows() persistence.WorkflowRepository {
	return fp.workflowRepo
}

// TaskTypes returns the task type repository implementation for file persistence.
func (fp *Persistence) TaskTypes() persistence.TaskTypeRepository {
	return fp.taskTypeRepo
}

// Tasks returns the task repository implementation for file persistence.
func (fp *Persistence) Tasks() persistence.TaskRepository {
	return fp.taskRepo
}

// store serializes access to the JSON documents under root. A single lock
// for the whole tree keeps the guarded task-state write race-free within
// one process, which is all file persistence promises.
type store struct {
	root string
	mu   sync.RWMutex
}

func newStore(root string) *store {
	return &store{root: root}
}

func (s *store) read(dir, id string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.root, dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s/%s: %w", dir, id, err)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s/%s: %w", dir, id, err)
	}

	return true, nil
}

func (s *store) write(dir, id string, in any) error {
	err := os.MkdirAll(filepath.Join(s.root, dir), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", dir, id, err)
	}

	err = os.WriteFile(filepath.Join(s.root, dir, id+".json"), data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", dir, id, err)
	}

	return nil
}

func (s *store) remove(dir, id string) error {
	err := os.Remove(filepath.Join(s.root, dir, id+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s/%s: %w", dir, id, err)
	}

	return nil
}

func (s *store) ids(dir string) ([]string, error) {
	root := os.DirFS(filepath.Join(s.root, dir))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", dir, err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}
