package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/lattice-ai/lattice/internal/rag"
	"github.com/lattice-ai/lattice/pkg/domain"
)

// VectorStore implements ports.VectorStore on the local filesystem, one
// JSON file per collection. Collection files are replaced atomically, so a
// concurrent reader sees either the old chunk set or the new one. The
// knowledge index's emptiness check relies on that all-or-none visibility.
//
// Queries load the collection and rank by cosine similarity; collections are
// document-sized (hundreds of chunks), so a linear scan is fine.
type VectorStore struct {
	BasePath string

	mu sync.RWMutex
}

// NewVectorStore creates a store rooted at basePath.
// If basePath is empty, it defaults to ".lattice/vectors".
func NewVectorStore(basePath string) *VectorStore {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "vectors")
	}
	return &VectorStore{BasePath: basePath}
}

type storedChunk struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

type collectionFile struct {
	Chunks []storedChunk `json:"chunks"`
}

func (s *VectorStore) load(collection string) (*collectionFile, error) {
	var cf collectionFile
	if err := readJSON(s.BasePath, collection+".json", &cf); err != nil {
		if os.IsNotExist(err) {
			return &collectionFile{}, nil
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	return &cf, nil
}

// Count returns the number of chunks in a collection.
func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cf, err := s.load(collection)
	if err != nil {
		return 0, err
	}
	return len(cf.Chunks), nil
}

// Add appends chunks with their vectors to a collection.
func (s *VectorStore) Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cf, err := s.load(collection)
	if err != nil {
		return err
	}
	for i, c := range chunks {
		cf.Chunks = append(cf.Chunks, storedChunk{ID: c.ID, Text: c.Text, Vector: vectors[i]})
	}
	return writeJSON(s.BasePath, collection+".json", cf)
}

// Query returns the topK most similar chunks, most similar first.
func (s *VectorStore) Query(ctx context.Context, collection string, vector []float32, topK int) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cf, err := s.load(collection)
	if err != nil {
		return nil, err
	}

	type scored struct {
		chunk domain.DocumentChunk
		score float64
	}
	ranked := make([]scored, 0, len(cf.Chunks))
	for _, c := range cf.Chunks {
		ranked = append(ranked, scored{
			chunk: domain.DocumentChunk{ID: c.ID, Text: c.Text},
			score: rag.Cosine(vector, c.Vector),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if topK > len(ranked) {
		topK = len(ranked)
	}
	out := make([]domain.DocumentChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = ranked[i].chunk
	}
	return out, nil
}
