package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ai/lattice/internal/adapters/memory"
	"github.com/lattice-ai/lattice/pkg/domain"
)

// stubRunner returns canned results or a fixed error.
type stubRunner struct {
	results map[string]domain.Output
	err     error
}

func (r *stubRunner) Execute(ctx context.Context, graph *domain.Graph, inputs map[string]any) (map[string]domain.Output, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.results, nil
}

func newTestServer(t *testing.T, runner Runner) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(&Server{
		Runner:    runner,
		Workflows: memory.NewWorkflowStore(),
		Documents: memory.NewDocumentStore(),
		Chat:      memory.NewChatStore(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestWorkflowLifecycle(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})

	// Create.
	res := postJSON(t, srv.URL+"/api/workflows", map[string]any{
		"name": "summarizer",
		"data": map[string]any{
			"nodes": []map[string]any{{"id": "in", "type": "inputNode"}},
			"edges": []any{},
		},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	created := decodeBody[domain.Workflow](t, res)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "summarizer", created.Name)

	// Get.
	getRes, err := http.Get(srv.URL + "/api/workflows/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getRes.StatusCode)
	got := decodeBody[domain.Workflow](t, getRes)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Data.Nodes, 1)
	assert.Equal(t, domain.NodeTypeInput, got.Data.Nodes[0].Type)

	// Update.
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/workflows/"+created.ID,
		strings.NewReader(`{"name":"renamed","data":{"nodes":[],"edges":[]}}`))
	require.NoError(t, err)
	putRes, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, putRes.StatusCode)
	updated := decodeBody[domain.Workflow](t, putRes)
	assert.Equal(t, "renamed", updated.Name)
	assert.NotNil(t, updated.UpdatedAt)

	// List.
	listRes, err := http.Get(srv.URL + "/api/workflows")
	require.NoError(t, err)
	list := decodeBody[[]domain.Workflow](t, listRes)
	assert.Len(t, list, 1)

	// Delete.
	delReq, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/workflows/"+created.ID, nil)
	require.NoError(t, err)
	delRes, err := http.DefaultClient.Do(delReq)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delRes.StatusCode)
	delRes.Body.Close()

	missingRes, err := http.Get(srv.URL + "/api/workflows/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missingRes.StatusCode)
	missingRes.Body.Close()
}

func TestCreateWorkflow_RequiresName(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	res := postJSON(t, srv.URL+"/api/workflows", map[string]any{"data": map[string]any{}})
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRunWorkflow(t *testing.T) {
	runner := &stubRunner{results: map[string]domain.Output{
		"out": {"output": "done"},
	}}
	srv := newTestServer(t, runner)

	created := decodeBody[domain.Workflow](t, postJSON(t, srv.URL+"/api/workflows", map[string]any{
		"name": "wf", "data": map[string]any{"nodes": []any{}, "edges": []any{}},
	}))

	res := postJSON(t, srv.URL+"/api/run/"+created.ID, map[string]any{
		"inputs": map[string]string{"input": "hello"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decodeBody[runResponse](t, res)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "done", body.Results["out"].Text())
}

func TestRunWorkflow_StructuralErrorIs400(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("%w: a -> ghost", domain.ErrMalformedEdge)}
	srv := newTestServer(t, runner)

	created := decodeBody[domain.Workflow](t, postJSON(t, srv.URL+"/api/workflows", map[string]any{
		"name": "wf", "data": map[string]any{"nodes": []any{}, "edges": []any{}},
	}))

	res := postJSON(t, srv.URL+"/api/run/"+created.ID, map[string]any{"inputs": map[string]string{}})
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRunWorkflow_MissingWorkflowIs404(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	res := postJSON(t, srv.URL+"/api/run/ghost", map[string]any{"inputs": map[string]string{}})
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUploadAndListDocuments(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("uploaded content"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	res, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	doc := decodeBody[domain.Document](t, res)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, int64(len("uploaded content")), doc.Size)

	listRes, err := http.Get(srv.URL + "/api/documents")
	require.NoError(t, err)
	docs := decodeBody[[]domain.Document](t, listRes)
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.txt", docs[0].Filename)
}

func TestUpload_MissingFileField(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	res, err := http.Post(srv.URL+"/api/upload", "multipart/form-data", strings.NewReader(""))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestChatLogAndHistory(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})

	res := postJSON(t, srv.URL+"/api/chat/log", map[string]string{
		"workflow_id":  "wf-1",
		"user_message": "hi",
		"ai_response":  "hello",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	histRes, err := http.Get(srv.URL + "/api/chat/history/wf-1")
	require.NoError(t, err)
	history := decodeBody[[]domain.ChatLog](t, histRes)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].UserMessage)
	assert.Equal(t, "hello", history[0].AIResponse)
}
