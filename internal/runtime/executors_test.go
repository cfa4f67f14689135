package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// stubRetriever echoes the arguments it was called with.
type stubRetriever struct {
	calls []string
	out   domain.Output
}

func (r *stubRetriever) Retrieve(ctx context.Context, query, documentRef, embeddingModel string) domain.Output {
	r.calls = append(r.calls, query+"|"+documentRef+"|"+embeddingModel)
	return r.out
}

func TestExecuteModel_EmptyPromptSkipsProvider(t *testing.T) {
	provider := &stubProvider{reply: "should never be seen"}
	dispatcher := NewDispatcher()
	dispatcher.Register("gpt", "openai", provider)
	engine := NewEngine(WithDispatcher(dispatcher))

	out := engine.executeModel(context.Background(), node("llm", domain.NodeTypeModel, nil), nil)

	assert.Equal(t, "Error: Prompt is empty. Please enter a prompt or connect an input.", out.Text())
	assert.Empty(t, provider.prompts, "provider must not be contacted for an empty prompt")
}

func TestExecuteModel_ComposesPromptSources(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	dispatcher := NewDispatcher()
	dispatcher.Register("gpt", "openai", provider)
	engine := NewEngine(WithDispatcher(dispatcher))

	n := node("llm", domain.NodeTypeModel, map[string]any{
		"model":  "gpt-4",
		"prompt": "Summarize:",
	})
	inputs := map[string]any{
		"prompt":  "the user question",
		"context": domain.Output{"output": "retrieved facts"},
	}

	engine.executeModel(context.Background(), n, inputs)

	require.Len(t, provider.prompts, 1)
	assert.Equal(t, "Summarize:\n\nthe user question\n\nretrieved facts", provider.prompts[0])
}

func TestExecuteModel_NoDispatcher(t *testing.T) {
	engine := NewEngine()

	out := engine.executeModel(context.Background(), node("llm", domain.NodeTypeModel, map[string]any{"prompt": "hi"}), nil)
	assert.Equal(t, "Error: no model provider configured", out.Text())
}

func TestExecuteRag_ForwardsConfig(t *testing.T) {
	retriever := &stubRetriever{out: domain.TextOutput("snippets")}
	engine := NewEngine(WithRetriever(retriever))

	n := node("rag", domain.NodeTypeRag, map[string]any{
		"fileName":       "notes.pdf",
		"embeddingModel": "text-embedding-3-small",
	})
	out := engine.executeRag(context.Background(), n, map[string]any{"query": "what is go"})

	assert.Equal(t, "snippets", out.Text())
	require.Len(t, retriever.calls, 1)
	assert.Equal(t, "what is go|notes.pdf|text-embedding-3-small", retriever.calls[0])
}

func TestExecuteRag_NoRetriever(t *testing.T) {
	engine := NewEngine()

	out := engine.executeRag(context.Background(), node("rag", domain.NodeTypeRag, nil), map[string]any{"query": "q"})
	assert.Equal(t, "Error: no knowledge index configured", out.Text())
}

func TestDecodeConfigs_Defaults(t *testing.T) {
	assert.Equal(t, "input", decodeInputConfig(nil).Key)
	assert.Equal(t, "question", decodeInputConfig(map[string]any{"key": "question"}).Key)

	model := decodeModelConfig(nil)
	assert.Equal(t, "gpt-3.5-turbo", model.Model)

	rag := decodeRagConfig(map[string]any{"fileName": "a.txt"})
	assert.Equal(t, "text-embedding-3-large", rag.EmbeddingModel)
	assert.Equal(t, "a.txt", rag.FileName)
}

func TestDecodeModelConfig_WeakTyping(t *testing.T) {
	// Frontends serialize booleans as strings more often than they should.
	cfg := decodeModelConfig(map[string]any{
		"model":     "gemini-pro",
		"webSearch": "true",
		"serpKey":   "abc",
	})
	assert.Equal(t, "gemini-pro", cfg.Model)
	assert.True(t, cfg.WebSearch)
	assert.Equal(t, "abc", cfg.SerpKey)
}
