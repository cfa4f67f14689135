package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// WorkflowStore implements ports.WorkflowStore on the local filesystem,
// one JSON file per workflow.
type WorkflowStore struct {
	BasePath string
}

// NewWorkflowStore creates a store rooted at basePath.
// If basePath is empty, it defaults to ".lattice/workflows".
func NewWorkflowStore(basePath string) *WorkflowStore {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "workflows")
	}
	return &WorkflowStore{BasePath: basePath}
}

// Save creates or overwrites a workflow atomically.
func (s *WorkflowStore) Save(ctx context.Context, wf *domain.Workflow) error {
	if wf.ID == "" {
		return fmt.Errorf("workflow id cannot be empty")
	}
	return writeJSON(s.BasePath, wf.ID+".json", wf)
}

// Get retrieves a workflow by ID.
func (s *WorkflowStore) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	var wf domain.Workflow
	if err := readJSON(s.BasePath, id+".json", &wf); err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}
	return &wf, nil
}

// List returns all stored workflows sorted by ID.
func (s *WorkflowStore) List(ctx context.Context) ([]domain.Workflow, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Workflow{}, nil
		}
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	var out []domain.Workflow
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var wf domain.Workflow
		if err := readJSON(s.BasePath, entry.Name(), &wf); err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes a workflow.
func (s *WorkflowStore) Delete(ctx context.Context, id string) error {
	err := os.Remove(filepath.Join(s.BasePath, id+".json"))
	if os.IsNotExist(err) {
		return domain.ErrWorkflowNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}
