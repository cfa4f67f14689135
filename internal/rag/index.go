package rag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/lattice-ai/lattice/pkg/domain"
	"github.com/lattice-ai/lattice/pkg/ports"
)

// retrieveTopK is how many chunks a retrieval folds into the context output.
const retrieveTopK = 3

// Index turns uploaded documents into queryable knowledge collections and
// serves nearest-neighbor context snippets.
//
// Ingestion is lazy and idempotent: a document is extracted, chunked and
// embedded on the first retrieval that finds its collection empty, and never
// again while the collection holds chunks. Concurrent first-retrievals of
// the same document are serialized per collection key so ingestion happens
// exactly once.
type Index struct {
	store    ports.VectorStore
	embedder ports.Embedder
	docs     ports.DocumentStore
	logger   *slog.Logger

	chunkSize    int
	chunkOverlap int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithChunking overrides the default chunk window parameters.
func WithChunking(size, overlap int) IndexOption {
	return func(ix *Index) {
		ix.chunkSize = size
		ix.chunkOverlap = overlap
	}
}

// WithLogger sets a structured logger for the index.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndex creates a knowledge index over the given vector store, embedder
// and document store.
func NewIndex(store ports.VectorStore, embedder ports.Embedder, docs ports.DocumentStore, opts ...IndexOption) *Index {
	ix := &Index{
		store:        store,
		embedder:     embedder,
		docs:         docs,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		locks:        make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// CollectionKey derives the durable collection identity for a document
// reference by stripping every non-alphanumeric character.
func CollectionKey(documentRef string) string {
	var b strings.Builder
	for _, r := range documentRef {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Retrieve answers a query against the named document's collection,
// ingesting the document first if it was never indexed.
//
// Every failure short-circuits into an explanatory text output rather than
// an error: the rag node always produces a value and the run continues.
func (ix *Index) Retrieve(ctx context.Context, query, documentRef, embeddingModel string) domain.Output {
	if query == "" {
		return domain.TextOutput("Error: No query provided for Knowledge Base.")
	}
	if documentRef == "" {
		return domain.TextOutput("Warning: No file selected. Queries against general knowledge.")
	}

	data, err := ix.readDocument(ctx, documentRef)
	if err != nil {
		return domain.TextOutput(fmt.Sprintf("Error: File '%s' not found. Please upload it first.", documentRef))
	}

	key := CollectionKey(documentRef)
	if err := ix.ensureIngested(ctx, key, documentRef, data, embeddingModel); err != nil {
		ix.logger.Warn("ingestion failed", "document", documentRef, "err", err)
		return domain.TextOutput(fmt.Sprintf("Error processing Knowledge Base: %v", err))
	}

	vectors, err := ix.embedder.Embed(ctx, embeddingModel, []string{query})
	if err != nil || len(vectors) == 0 {
		if err == nil {
			err = fmt.Errorf("embedder returned no vector")
		}
		return domain.TextOutput(fmt.Sprintf("Error processing Knowledge Base: %v", err))
	}

	chunks, err := ix.store.Query(ctx, key, vectors[0], retrieveTopK)
	if err != nil {
		return domain.TextOutput(fmt.Sprintf("Error processing Knowledge Base: %v", err))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return domain.TextOutput(strings.Join(texts, "\n\n"))
}

func (ix *Index) readDocument(ctx context.Context, documentRef string) ([]byte, error) {
	rc, err := ix.docs.Open(ctx, documentRef)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ensureIngested performs the one-time ingest for a collection key. The
// emptiness check and the ingest run under a per-key lock so two concurrent
// first-queries cannot double-ingest.
func (ix *Index) ensureIngested(ctx context.Context, key, documentRef string, data []byte, embeddingModel string) error {
	lock := ix.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	count, err := ix.store.Count(ctx, key)
	if err != nil {
		return err
	}
	if count > 0 {
		// Already indexed. Re-uploads under the same reference are served
		// from the existing collection (no invalidation).
		return nil
	}

	text, err := ExtractText(documentRef, data)
	if err != nil {
		return err
	}

	pieces := Chunk(text, ix.chunkSize, ix.chunkOverlap)
	if len(pieces) == 0 {
		return nil
	}

	vectors, err := ix.embedder.Embed(ctx, embeddingModel, pieces)
	if err != nil {
		return err
	}
	if len(vectors) != len(pieces) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	chunks := make([]domain.DocumentChunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.DocumentChunk{ID: fmt.Sprintf("id%d", i), Text: p}
	}

	if err := ix.store.Add(ctx, key, chunks, vectors); err != nil {
		return err
	}
	ix.logger.Info("indexed document", "document", documentRef, "collection", key, "chunks", len(chunks))
	return nil
}

func (ix *Index) keyLock(key string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	lock, ok := ix.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		ix.locks[key] = lock
	}
	return lock
}
