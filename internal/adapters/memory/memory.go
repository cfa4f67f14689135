// Package memory provides in-memory implementations of the persistence
// ports, used by tests and by one-shot CLI runs that need no durability.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lattice-ai/lattice/internal/rag"
	"github.com/lattice-ai/lattice/pkg/domain"
)

// WorkflowStore implements ports.WorkflowStore in memory.
type WorkflowStore struct {
	mu        sync.RWMutex
	workflows map[string]domain.Workflow
}

// NewWorkflowStore creates an empty store.
func NewWorkflowStore() *WorkflowStore {
	return &WorkflowStore{workflows: make(map[string]domain.Workflow)}
}

func (s *WorkflowStore) Save(ctx context.Context, wf *domain.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = *wf
	return nil
}

func (s *WorkflowStore) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return &wf, nil
}

func (s *WorkflowStore) List(ctx context.Context) ([]domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *WorkflowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return domain.ErrWorkflowNotFound
	}
	delete(s.workflows, id)
	return nil
}

// DocumentStore implements ports.DocumentStore in memory.
type DocumentStore struct {
	mu       sync.RWMutex
	contents map[string][]byte
	meta     map[string]domain.Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		contents: make(map[string][]byte),
		meta:     make(map[string]domain.Document),
	}
}

func (s *DocumentStore) Store(ctx context.Context, filename, contentType string, r io.Reader) (*domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := domain.Document{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}
	s.contents[filename] = data
	s.meta[filename] = doc
	return &doc, nil
}

func (s *DocumentStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.contents[filename]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *DocumentStore) List(ctx context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.meta))
	for _, doc := range s.meta {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

// ChatStore implements ports.ChatStore in memory.
type ChatStore struct {
	mu   sync.RWMutex
	logs map[string][]domain.ChatLog
}

// NewChatStore creates an empty store.
func NewChatStore() *ChatStore {
	return &ChatStore{logs: make(map[string][]domain.ChatLog)}
}

func (s *ChatStore) Append(ctx context.Context, log *domain.ChatLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	s.logs[log.WorkflowID] = append(s.logs[log.WorkflowID], *log)
	return nil
}

func (s *ChatStore) History(ctx context.Context, workflowID string) ([]domain.ChatLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChatLog{}, s.logs[workflowID]...), nil
}

// VectorStore implements ports.VectorStore in memory with cosine ranking.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string][]vectorChunk
}

type vectorChunk struct {
	chunk  domain.DocumentChunk
	vector []float32
}

// NewVectorStore creates an empty store.
func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string][]vectorChunk)}
}

func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

func (s *VectorStore) Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		s.collections[collection] = append(s.collections[collection], vectorChunk{chunk: c, vector: vectors[i]})
	}
	return nil
}

func (s *VectorStore) Query(ctx context.Context, collection string, vector []float32, topK int) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.collections[collection]
	type scored struct {
		chunk domain.DocumentChunk
		score float64
	}
	ranked := make([]scored, 0, len(entries))
	for _, e := range entries {
		ranked = append(ranked, scored{chunk: e.chunk, score: rag.Cosine(vector, e.vector)})
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
