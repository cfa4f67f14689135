package ports

import (
	"context"
	"io"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// WorkflowStore persists workflow definitions.
type WorkflowStore interface {
	// Save creates or overwrites a workflow by its ID.
	Save(ctx context.Context, wf *domain.Workflow) error

	// Get retrieves a workflow by ID.
	// Returns domain.ErrWorkflowNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Workflow, error)

	// List returns all stored workflows.
	List(ctx context.Context) ([]domain.Workflow, error)

	// Delete removes a workflow.
	// Returns domain.ErrWorkflowNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// DocumentStore owns uploaded document bytes and their metadata.
// The engine only ever looks documents up by their filename reference.
type DocumentStore interface {
	// Store saves the content under the given filename and records metadata.
	// Re-uploading the same filename overwrites the bytes (note: the
	// knowledge index does not re-ingest an already indexed collection).
	Store(ctx context.Context, filename, contentType string, r io.Reader) (*domain.Document, error)

	// Open returns a reader over the stored content.
	// Returns domain.ErrDocumentNotFound if the filename is unknown.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)

	// List returns metadata for all stored documents.
	List(ctx context.Context) ([]domain.Document, error)
}

// ChatStore persists chat exchanges made against workflows.
type ChatStore interface {
	// Append records one exchange.
	Append(ctx context.Context, log *domain.ChatLog) error

	// History returns all exchanges for a workflow, oldest first.
	History(ctx context.Context, workflowID string) ([]domain.ChatLog, error)
}
