package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ai/lattice/pkg/domain"
)

func TestWorkflowStore_RoundTrip(t *testing.T) {
	store := NewWorkflowStore(t.TempDir())
	ctx := context.Background()

	wf := &domain.Workflow{
		ID:        "wf-1",
		Name:      "summarizer",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Data: domain.Graph{
			Nodes: []domain.Node{{ID: "in", Type: domain.NodeTypeInput}},
		},
	}
	require.NoError(t, store.Save(ctx, wf))

	got, err := store.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "summarizer", got.Name)
	require.Len(t, got.Data.Nodes, 1)
	assert.Equal(t, domain.NodeTypeInput, got.Data.Nodes[0].Type)
}

func TestWorkflowStore_GetMissing(t *testing.T) {
	store := NewWorkflowStore(t.TempDir())
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestWorkflowStore_SaveRejectsEmptyID(t *testing.T) {
	store := NewWorkflowStore(t.TempDir())
	err := store.Save(context.Background(), &domain.Workflow{Name: "unnamed"})
	require.Error(t, err)
}

func TestWorkflowStore_ListSortedByID(t *testing.T) {
	store := NewWorkflowStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, store.Save(ctx, &domain.Workflow{ID: id, Name: id}))
	}

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "alpha", got[0].ID)
	assert.Equal(t, "bravo", got[1].ID)
	assert.Equal(t, "charlie", got[2].ID)
}

func TestWorkflowStore_ListEmptyDir(t *testing.T) {
	store := NewWorkflowStore(t.TempDir() + "/never-created")
	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWorkflowStore_Delete(t *testing.T) {
	store := NewWorkflowStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Workflow{ID: "wf-1", Name: "x"}))
	require.NoError(t, store.Delete(ctx, "wf-1"))

	_, err := store.Get(ctx, "wf-1")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "wf-1"), domain.ErrWorkflowNotFound)
}
