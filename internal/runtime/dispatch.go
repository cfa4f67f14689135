package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lattice-ai/lattice/pkg/domain"
	"github.com/lattice-ai/lattice/pkg/ports"
)

// webSearchLimit caps how many search snippets are folded into a prompt.
const webSearchLimit = 3

// DispatchRequest describes one model call.
type DispatchRequest struct {
	Model     string
	Prompt    string
	WebSearch bool
	// SearchKey overrides the searcher's default API key when set.
	SearchKey string
}

type route struct {
	match    string
	name     string
	provider ports.ModelProvider
}

// Dispatcher routes composed prompts to a model provider selected by
// case-insensitive substring match on the model identifier, optionally
// augmenting the prompt with web search context first.
//
// Dispatch never returns an error: provider failures, missing credentials
// and unknown models all become textual outputs, preserving the engine's
// node-local degradation policy.
type Dispatcher struct {
	routes   []route
	searcher ports.WebSearcher
	logger   *slog.Logger
	metrics  *Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSearcher enables web search augmentation.
func WithSearcher(s ports.WebSearcher) DispatcherOption {
	return func(d *Dispatcher) {
		d.searcher = s
	}
}

// WithDispatcherLogger sets a structured logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDispatcherMetrics records provider call durations.
func WithDispatcherMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates an empty dispatcher; register providers with Register.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds a provider to every model identifier containing match
// (case-insensitive). Routes are tried in registration order.
func (d *Dispatcher) Register(match, name string, provider ports.ModelProvider) {
	d.routes = append(d.routes, route{match: strings.ToLower(match), name: name, provider: provider})
}

// Dispatch composes the effective prompt and performs a single provider
// round trip.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) domain.Output {
	prompt := req.Prompt
	if req.WebSearch {
		prompt = d.augment(ctx, prompt, req.SearchKey)
	}

	model := strings.ToLower(req.Model)
	for _, r := range d.routes {
		if !strings.Contains(model, r.match) {
			continue
		}
		start := time.Now()
		text, err := r.provider.Generate(ctx, req.Model, prompt)
		d.metrics.ObserveProviderCall(r.name, time.Since(start))
		if err != nil {
			d.logger.Warn("provider call failed", "provider", r.name, "model", req.Model, "err", err)
			return domain.TextOutput(fmt.Sprintf("Error: %v", err))
		}
		return domain.TextOutput(text)
	}

	return domain.TextOutput("Error: Unsupported model")
}

// augment prepends formatted web search results for the prompt text, so the
// provider sees retrieved snippets before the user's request.
func (d *Dispatcher) augment(ctx context.Context, prompt, apiKey string) string {
	searchContext := d.searchContext(ctx, prompt, apiKey)
	return searchContext + "\n\nUser Prompt: " + prompt
}

func (d *Dispatcher) searchContext(ctx context.Context, query, apiKey string) string {
	if d.searcher == nil {
		return "Error: no web search provider configured."
	}

	results, err := d.searcher.Search(ctx, ports.SearchQuery{
		Query:  query,
		Limit:  webSearchLimit,
		APIKey: apiKey,
	})
	if err != nil {
		d.logger.Warn("web search failed", "err", err)
		return fmt.Sprintf("Web search error: %v", err)
	}
	if len(results) == 0 {
		return "No web search results found."
	}

	var b strings.Builder
	b.WriteString("Web Search Results:")
	for _, res := range results {
		b.WriteString(fmt.Sprintf("\n- %s: %s", res.Title, res.Snippet))
	}
	return b.String()
}
