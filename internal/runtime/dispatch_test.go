package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ai/lattice/pkg/domain"
	"github.com/lattice-ai/lattice/pkg/ports"
)

// stubSearcher returns canned results and records the queries it received.
type stubSearcher struct {
	results []domain.SearchResult
	err     error
	queries []ports.SearchQuery
}

func (s *stubSearcher) Search(ctx context.Context, q ports.SearchQuery) ([]domain.SearchResult, error) {
	s.queries = append(s.queries, q)
	return s.results, s.err
}

func TestDispatch_RoutesBySubstring(t *testing.T) {
	openAI := &stubProvider{reply: "from openai"}
	gemini := &stubProvider{reply: "from gemini"}
	d := NewDispatcher()
	d.Register("gpt", "openai", openAI)
	d.Register("gemini", "gemini", gemini)

	out := d.Dispatch(context.Background(), DispatchRequest{Model: "GPT-4o", Prompt: "hi"})
	assert.Equal(t, "from openai", out.Text())

	out = d.Dispatch(context.Background(), DispatchRequest{Model: "gemini-1.5-pro", Prompt: "hi"})
	assert.Equal(t, "from gemini", out.Text())
}

func TestDispatch_UnsupportedModel(t *testing.T) {
	d := NewDispatcher()
	d.Register("gpt", "openai", &stubProvider{reply: "x"})

	out := d.Dispatch(context.Background(), DispatchRequest{Model: "claude-3", Prompt: "hi"})
	assert.Equal(t, "Error: Unsupported model", out.Text())
}

func TestDispatch_ProviderErrorDegrades(t *testing.T) {
	d := NewDispatcher()
	d.Register("gpt", "openai", &stubProvider{err: errors.New("rate limited")})

	out := d.Dispatch(context.Background(), DispatchRequest{Model: "gpt-4", Prompt: "hi"})
	assert.Equal(t, "Error: rate limited", out.Text())
}

func TestDispatch_WebSearchAugmentsPrompt(t *testing.T) {
	provider := &stubProvider{reply: "answer"}
	searcher := &stubSearcher{results: []domain.SearchResult{
		{Title: "Go", Snippet: "A programming language"},
		{Title: "Gopher", Snippet: "The mascot"},
	}}
	d := NewDispatcher(WithSearcher(searcher))
	d.Register("gpt", "openai", provider)

	d.Dispatch(context.Background(), DispatchRequest{
		Model:     "gpt-4",
		Prompt:    "what is go",
		WebSearch: true,
		SearchKey: "override-key",
	})

	require.Len(t, provider.prompts, 1)
	want := "Web Search Results:\n- Go: A programming language\n- Gopher: The mascot\n\nUser Prompt: what is go"
	assert.Equal(t, want, provider.prompts[0])

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, "what is go", searcher.queries[0].Query)
	assert.Equal(t, webSearchLimit, searcher.queries[0].Limit)
	assert.Equal(t, "override-key", searcher.queries[0].APIKey)
}

func TestDispatch_WebSearchErrorStillCallsProvider(t *testing.T) {
	provider := &stubProvider{reply: "answer"}
	searcher := &stubSearcher{err: errors.New("quota exceeded")}
	d := NewDispatcher(WithSearcher(searcher))
	d.Register("gpt", "openai", provider)

	d.Dispatch(context.Background(), DispatchRequest{Model: "gpt-4", Prompt: "q", WebSearch: true})

	require.Len(t, provider.prompts, 1)
	assert.Equal(t, "Web search error: quota exceeded\n\nUser Prompt: q", provider.prompts[0])
}

func TestDispatch_WebSearchNoResults(t *testing.T) {
	provider := &stubProvider{reply: "answer"}
	d := NewDispatcher(WithSearcher(&stubSearcher{}))
	d.Register("gpt", "openai", provider)

	d.Dispatch(context.Background(), DispatchRequest{Model: "gpt-4", Prompt: "q", WebSearch: true})

	require.Len(t, provider.prompts, 1)
	assert.Equal(t, "No web search results found.\n\nUser Prompt: q", provider.prompts[0])
}

func TestDispatch_WebSearchWithoutSearcher(t *testing.T) {
	provider := &stubProvider{reply: "answer"}
	d := NewDispatcher()
	d.Register("gpt", "openai", provider)

	d.Dispatch(context.Background(), DispatchRequest{Model: "gpt-4", Prompt: "q", WebSearch: true})

	require.Len(t, provider.prompts, 1)
	assert.Equal(t, "Error: no web search provider configured.\n\nUser Prompt: q", provider.prompts[0])
}

func TestDispatch_FirstMatchingRouteWins(t *testing.T) {
	first := &stubProvider{reply: "first"}
	second := &stubProvider{reply: "second"}
	d := NewDispatcher()
	d.Register("gpt", "custom", first)
	d.Register("gpt", "openai", second)

	out := d.Dispatch(context.Background(), DispatchRequest{Model: "gpt-4", Prompt: "hi"})
	assert.Equal(t, "first", out.Text())
	assert.Empty(t, second.prompts)
}
