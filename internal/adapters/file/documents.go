package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// DocumentStore implements ports.DocumentStore on the local filesystem.
// Uploaded bytes live under uploads/, metadata records under meta/.
type DocumentStore struct {
	BasePath string
}

// NewDocumentStore creates a store rooted at basePath.
// If basePath is empty, it defaults to ".lattice/documents".
func NewDocumentStore(basePath string) *DocumentStore {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "documents")
	}
	return &DocumentStore{BasePath: basePath}
}

func (s *DocumentStore) uploadsDir() string { return filepath.Join(s.BasePath, "uploads") }
func (s *DocumentStore) metaDir() string    { return filepath.Join(s.BasePath, "meta") }

// Store saves the content and records metadata. Path traversal in the
// filename is rejected; re-uploads overwrite the bytes in place.
func (s *DocumentStore) Store(ctx context.Context, filename, contentType string, r io.Reader) (*domain.Document, error) {
	clean := filepath.Base(filename)
	if clean == "" || clean == "." || clean == ".." {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	if err := os.MkdirAll(s.uploadsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure uploads directory: %w", err)
	}

	dest := filepath.Join(s.uploadsDir(), clean)
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	doc := &domain.Document{
		ID:          uuid.NewString(),
		Filename:    clean,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}
	if err := writeJSON(s.metaDir(), clean+".json", doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Open returns a reader over a stored document's content.
func (s *DocumentStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.uploadsDir(), filepath.Base(filename)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

// List returns metadata for all stored documents sorted by filename.
func (s *DocumentStore) List(ctx context.Context) ([]domain.Document, error) {
	entries, err := os.ReadDir(s.metaDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Document{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var out []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var doc domain.Document
		if err := readJSON(s.metaDir(), entry.Name(), &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}
