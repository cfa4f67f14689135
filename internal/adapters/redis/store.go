// Package redis provides Redis-backed workflow and chat stores for
// deployments where several server replicas share state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// Store implements ports.WorkflowStore and ports.ChatStore on Redis.
// Workflows live under <prefix>workflow:<id> with a set index; chat history
// is an RPUSH list per workflow.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiration on workflow keys. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "lattice:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) workflowKey(id string) string { return s.prefix + "workflow:" + id }
func (s *Store) workflowIndex() string        { return s.prefix + "workflow:index" }
func (s *Store) chatKey(workflowID string) string {
	if workflowID == "" {
		workflowID = "_global"
	}
	return s.prefix + "chat:" + workflowID
}

// Save persists a workflow and registers it in the index.
func (s *Store) Save(ctx context.Context, wf *domain.Workflow) error {
	if wf.ID == "" {
		return fmt.Errorf("workflow id cannot be empty")
	}
	data, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.workflowKey(wf.ID), data, s.ttl)
	pipe.SAdd(ctx, s.workflowIndex(), wf.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// Get retrieves a workflow by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	data, err := s.client.Get(ctx, s.workflowKey(id)).Bytes()
	if err == backend.Nil {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	var wf domain.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &wf, nil
}

// List returns all indexed workflows. Entries whose key expired are dropped
// from the index lazily.
func (s *Store) List(ctx context.Context) ([]domain.Workflow, error) {
	ids, err := s.client.SMembers(ctx, s.workflowIndex()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	out := make([]domain.Workflow, 0, len(ids))
	for _, id := range ids {
		wf, err := s.Get(ctx, id)
		if err == domain.ErrWorkflowNotFound {
			s.client.SRem(ctx, s.workflowIndex(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *wf)
	}
	return out, nil
}

// Delete removes a workflow and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.workflowKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	s.client.SRem(ctx, s.workflowIndex(), id)
	if removed == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

// Append records one chat exchange.
func (s *Store) Append(ctx context.Context, log *domain.ChatLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal chat log: %w", err)
	}
	if err := s.client.RPush(ctx, s.chatKey(log.WorkflowID), data).Err(); err != nil {
		return fmt.Errorf("failed to append chat log: %w", err)
	}
	return nil
}

// History returns all chat exchanges for a workflow, oldest first.
func (s *Store) History(ctx context.Context, workflowID string) ([]domain.ChatLog, error) {
	entries, err := s.client.LRange(ctx, s.chatKey(workflowID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}

	out := make([]domain.ChatLog, 0, len(entries))
	for _, entry := range entries {
		var log domain.ChatLog
		if err := json.Unmarshal([]byte(entry), &log); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat log: %w", err)
		}
		out = append(out, log)
	}
	return out, nil
}
