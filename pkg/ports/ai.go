package ports

import (
	"context"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// ModelProvider is a single language model backend. One blocking round trip
// per call; implementations honor ctx cancellation.
type ModelProvider interface {
	// Generate sends the prompt to the named model and returns the
	// generated text.
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Embedder turns texts into embedding vectors using the named model.
type Embedder interface {
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// SearchQuery describes one web search request. APIKey, when set, overrides
// the searcher's configured default (workflows may carry a per-node key).
type SearchQuery struct {
	Query  string
	Limit  int
	APIKey string
}

// WebSearcher fetches top-N result snippets from an external search provider.
type WebSearcher interface {
	Search(ctx context.Context, q SearchQuery) ([]domain.SearchResult, error)
}
