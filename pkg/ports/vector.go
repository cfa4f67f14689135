package ports

import (
	"context"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// VectorStore is a durable store of embedded document chunks grouped into
// named collections. Collections are created implicitly on first Add.
//
// Implementations must make Add atomic with respect to visibility: a
// concurrent reader sees either all chunks of the call or none, so the
// knowledge index's count-based ingest check never observes a partial
// collection.
type VectorStore interface {
	// Count returns the number of chunks in a collection. Unknown
	// collections count zero.
	Count(ctx context.Context, collection string) (int, error)

	// Add appends chunks with their embedding vectors to a collection.
	// vectors[i] corresponds to chunks[i].
	Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error

	// Query returns the topK chunks nearest to the given vector under the
	// store's similarity metric, most similar first.
	Query(ctx context.Context, collection string, vector []float32, topK int) ([]domain.DocumentChunk, error)
}
