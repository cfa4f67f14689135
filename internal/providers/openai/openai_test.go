package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hello there"}},
			},
		})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	got, err := c.Generate(context.Background(), "gpt-4", "say hello")
	require.NoError(t, err)

	assert.Equal(t, "hello there", got)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "say hello", gotBody.Messages[0].Content)
}

func TestGenerate_MissingKey(t *testing.T) {
	c := New("")
	_, err := c.Generate(context.Background(), "gpt-4", "hi")
	require.Error(t, err)
	assert.Equal(t, "OPENAI_API_KEY not found", err.Error())
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	c := New("sk-bad", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "gpt-4", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "gpt-4", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestEmbed_PreservesInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		// Return the embeddings out of order; Index must restore it.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0, 1}},
				{"index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	got, err := c.Embed(context.Background(), "text-embedding-3-large", []string{"a", "b"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, []float32{1, 0}, got[0])
	assert.Equal(t, []float32{0, 1}, got[1])
}

func TestEmbed_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{1}}},
		})
	}))
	defer srv.Close()

	c := New("sk-test", WithBaseURL(srv.URL))
	_, err := c.Embed(context.Background(), "text-embedding-3-large", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 embeddings for 2 inputs")
}

func TestEmbed_NoTexts(t *testing.T) {
	c := New("sk-test")
	_, err := c.Embed(context.Background(), "text-embedding-3-large", nil)
	require.Error(t, err)
}
