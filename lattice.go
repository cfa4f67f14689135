// Package lattice is the high-level entry point for the Lattice workflow
// engine. It wires the graph scheduler, the model dispatcher, the knowledge
// index and the persistence stores into one explicitly constructed service
// object; nothing in the engine reaches for ambient global state.
package lattice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	fileAdapter "github.com/lattice-ai/lattice/internal/adapters/file"
	"github.com/lattice-ai/lattice/internal/logging"
	"github.com/lattice-ai/lattice/internal/providers/gemini"
	"github.com/lattice-ai/lattice/internal/providers/openai"
	"github.com/lattice-ai/lattice/internal/providers/serp"
	"github.com/lattice-ai/lattice/internal/rag"
	"github.com/lattice-ai/lattice/internal/runtime"
	"github.com/lattice-ai/lattice/pkg/domain"
	"github.com/lattice-ai/lattice/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the released version of Lattice.
const Version = "0.3.0"

// Lattice owns a fully wired engine plus the stores the HTTP and CLI
// surfaces need. Construct it with New and share it freely; all methods are
// safe for concurrent use.
type Lattice struct {
	engine    *runtime.Engine
	workflows ports.WorkflowStore
	documents ports.DocumentStore
	chat      ports.ChatStore
	vectors   ports.VectorStore
	embedder  ports.Embedder
	searcher  ports.WebSearcher
	logger    *slog.Logger

	basePath     string
	openAIKey    string
	googleKey    string
	serpKey      string
	chunkSize    int
	chunkOverlap int
	registry     prometheus.Registerer
	providers    []providerRoute
}

type providerRoute struct {
	match    string
	name     string
	provider ports.ModelProvider
}

// Option configures a Lattice instance.
type Option func(*Lattice)

// WithLogger sets the structured logger used across all components.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lattice) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBasePath roots the default filesystem stores (default ".lattice").
func WithBasePath(path string) Option {
	return func(l *Lattice) {
		l.basePath = path
	}
}

// WithWorkflowStore replaces the default file-backed workflow store.
func WithWorkflowStore(s ports.WorkflowStore) Option {
	return func(l *Lattice) {
		l.workflows = s
	}
}

// WithDocumentStore replaces the default file-backed document store.
func WithDocumentStore(s ports.DocumentStore) Option {
	return func(l *Lattice) {
		l.documents = s
	}
}

// WithChatStore replaces the default file-backed chat store.
func WithChatStore(s ports.ChatStore) Option {
	return func(l *Lattice) {
		l.chat = s
	}
}

// WithVectorStore replaces the default file-backed vector store.
func WithVectorStore(s ports.VectorStore) Option {
	return func(l *Lattice) {
		l.vectors = s
	}
}

// WithEmbedder replaces the default OpenAI embedder.
func WithEmbedder(e ports.Embedder) Option {
	return func(l *Lattice) {
		l.embedder = e
	}
}

// WithWebSearcher replaces the default SerpAPI searcher.
func WithWebSearcher(s ports.WebSearcher) Option {
	return func(l *Lattice) {
		l.searcher = s
	}
}

// WithModelProvider registers an additional provider routed by
// case-insensitive substring match on the model identifier. Providers
// registered this way take precedence over the built-in routes.
func WithModelProvider(match, name string, p ports.ModelProvider) Option {
	return func(l *Lattice) {
		l.providers = append(l.providers, providerRoute{match: match, name: name, provider: p})
	}
}

// WithProviderKeys sets the OpenAI, Google and SerpAPI credentials for the
// built-in providers. Empty keys leave the matching provider degraded.
func WithProviderKeys(openAIKey, googleKey, serpKey string) Option {
	return func(l *Lattice) {
		l.openAIKey = openAIKey
		l.googleKey = googleKey
		l.serpKey = serpKey
	}
}

// WithChunking overrides the document splitting window for ingestion.
func WithChunking(size, overlap int) Option {
	return func(l *Lattice) {
		l.chunkSize = size
		l.chunkOverlap = overlap
	}
}

// WithMetrics registers engine metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(l *Lattice) {
		l.registry = reg
	}
}

// New builds a Lattice instance. With no options it persists everything
// under ".lattice" and reads provider credentials set via WithProviderKeys;
// callers that want environment lookup do it at the process entry point.
func New(opts ...Option) (*Lattice, error) {
	l := &Lattice{
		logger:       logging.NewNop(),
		basePath:     ".lattice",
		chunkSize:    rag.DefaultChunkSize,
		chunkOverlap: rag.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.workflows == nil {
		l.workflows = fileAdapter.NewWorkflowStore(filepath.Join(l.basePath, "workflows"))
	}
	if l.documents == nil {
		l.documents = fileAdapter.NewDocumentStore(filepath.Join(l.basePath, "documents"))
	}
	if l.chat == nil {
		l.chat = fileAdapter.NewChatStore(filepath.Join(l.basePath, "chat"))
	}
	if l.vectors == nil {
		l.vectors = fileAdapter.NewVectorStore(filepath.Join(l.basePath, "vectors"))
	}

	openAI := openai.New(l.openAIKey)
	if l.embedder == nil {
		l.embedder = openAI
	}
	if l.searcher == nil {
		l.searcher = serp.New(l.serpKey)
	}

	var metrics *runtime.Metrics
	if l.registry != nil {
		metrics = runtime.NewMetrics(l.registry)
	}

	dispatcher := runtime.NewDispatcher(
		runtime.WithSearcher(l.searcher),
		runtime.WithDispatcherLogger(l.logger),
		runtime.WithDispatcherMetrics(metrics),
	)
	for _, r := range l.providers {
		dispatcher.Register(r.match, r.name, r.provider)
	}
	dispatcher.Register("gpt", "openai", openAI)
	dispatcher.Register("gemini", "gemini", gemini.New(l.googleKey))

	index := rag.NewIndex(l.vectors, l.embedder, l.documents,
		rag.WithChunking(l.chunkSize, l.chunkOverlap),
		rag.WithLogger(l.logger),
	)

	l.engine = runtime.NewEngine(
		runtime.WithDispatcher(dispatcher),
		runtime.WithRetriever(index),
		runtime.WithLogger(l.logger),
		runtime.WithMetrics(metrics),
	)
	return l, nil
}

// Execute runs a graph directly against the named runtime inputs.
func (l *Lattice) Execute(ctx context.Context, graph *domain.Graph, inputs map[string]any) (map[string]domain.Output, error) {
	return l.engine.Execute(ctx, graph, inputs)
}

// RunWorkflow loads a stored workflow by id and executes it.
func (l *Lattice) RunWorkflow(ctx context.Context, workflowID string, inputs map[string]any) (map[string]domain.Output, error) {
	wf, err := l.workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
	}
	return l.engine.Execute(ctx, &wf.Data, inputs)
}

// Workflows exposes the workflow store for transport adapters.
func (l *Lattice) Workflows() ports.WorkflowStore { return l.workflows }

// Documents exposes the document store for transport adapters.
func (l *Lattice) Documents() ports.DocumentStore { return l.documents }

// Chat exposes the chat store for transport adapters.
func (l *Lattice) Chat() ports.ChatStore { return l.chat }
