package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// ChatStore implements ports.ChatStore on the local filesystem, one JSON
// file per workflow holding its full history.
type ChatStore struct {
	BasePath string

	mu sync.Mutex
}

// NewChatStore creates a store rooted at basePath.
// If basePath is empty, it defaults to ".lattice/chat".
func NewChatStore(basePath string) *ChatStore {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "chat")
	}
	return &ChatStore{BasePath: basePath}
}

func (s *ChatStore) fileName(workflowID string) string {
	if workflowID == "" {
		workflowID = "_global"
	}
	return workflowID + ".json"
}

// Append records one exchange. The read-modify-write is serialized so
// concurrent appends do not lose entries.
func (s *ChatStore) Append(ctx context.Context, log *domain.ChatLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}

	var history []domain.ChatLog
	if err := readJSON(s.BasePath, s.fileName(log.WorkflowID), &history); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read chat history: %w", err)
	}
	history = append(history, *log)
	return writeJSON(s.BasePath, s.fileName(log.WorkflowID), history)
}

// History returns all exchanges for a workflow, oldest first.
func (s *ChatStore) History(ctx context.Context, workflowID string) ([]domain.ChatLog, error) {
	var history []domain.ChatLog
	if err := readJSON(s.BasePath, s.fileName(workflowID), &history); err != nil {
		if os.IsNotExist(err) {
			return []domain.ChatLog{}, nil
		}
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}
	return history, nil
}
