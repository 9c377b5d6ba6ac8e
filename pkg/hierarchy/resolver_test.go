package hierarchy

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/store"
)

func seededStore() *store.MemoryStore {
	s := store.NewMemoryStore()
	s.AddSpace(&models.Space{ID: "space-1", WorkspaceID: "ws-1"})
	s.AddFolder(&models.Folder{ID: "folder-1", SpaceID: "space-1"})
	s.AddList(&models.List{ID: "list-1", SpaceID: "space-1", FolderID: "folder-1"})
	s.AddList(&models.List{ID: "list-2", SpaceID: "space-1"})

	return s
}

func TestResolveAncestorsList(t *testing.T) {
	r := NewResolver(seededStore(), slog.Default())

	ancestry, err := r.ResolveAncestors(context.Background(), models.ListScope("list-1"))
	require.NoError(t, err)

	assert.Equal(t, "space-1", ancestry.SpaceID)
	assert.Equal(t, "folder-1", ancestry.FolderID)
	assert.Equal(t, "list-1", ancestry.ListID)
	assert.False(t, ancestry.Orphaned)
}

func TestResolveAncestorsFolderlessList(t *testing.T) {
	r := NewResolver(seededStore(), slog.Default())

	ancestry, err := r.ResolveAncestors(context.Background(), models.ListScope("list-2"))
	require.NoError(t, err)

	assert.Equal(t, "space-1", ancestry.SpaceID)
	assert.Empty(t, ancestry.FolderID)
}

func TestResolveAncestorsWorkspaceAndSpace(t *testing.T) {
	r := NewResolver(seededStore(), slog.Default())

	ancestry, err := r.ResolveAncestors(context.Background(), models.WorkspaceScope("ws-1"))
	require.NoError(t, err)
	assert.Equal(t, Ancestry{}, ancestry)

	ancestry, err = r.ResolveAncestors(context.Background(), models.SpaceScope("space-1"))
	require.NoError(t, err)
	assert.Equal(t, "space-1", ancestry.SpaceID)
}

func TestResolveAncestorsOrphanedScope(t *testing.T) {
	r := NewResolver(seededStore(), slog.Default())

	ancestry, err := r.ResolveAncestors(context.Background(), models.ListScope("deleted-list"))
	require.NoError(t, err)

	assert.True(t, ancestry.Orphaned)
}

func TestResolveScopeChain(t *testing.T) {
	r := NewResolver(seededStore(), slog.Default())

	chain, err := r.ResolveScopeChain(context.Background(), "ws-1", "list-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-1", "space-1", "folder-1", "list-1"}, chain)
}

func TestResolveScopeChainVanishedList(t *testing.T) {
	r := NewResolver(seededStore(), slog.Default())

	chain, err := r.ResolveScopeChain(context.Background(), "ws-1", "deleted-list")
	require.NoError(t, err)

	// Workspace-scoped rules still apply even when the list is gone.
	assert.Equal(t, []string{"ws-1"}, chain)
}

func TestBatchCacheServesRepeatLookups(t *testing.T) {
	s := seededStore()
	r := NewResolver(s, slog.Default())
	cache := NewBatchCache(r)

	first, err := cache.ResolveAncestors(context.Background(), models.ListScope("list-1"))
	require.NoError(t, err)

	// The underlying entity disappears mid-batch; the cache keeps serving
	// the snapshot taken at first lookup.
	s.RemoveList("list-1")

	second, err := cache.ResolveAncestors(context.Background(), models.ListScope("list-1"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	chain, err := cache.ResolveScopeChain(context.Background(), "ws-1", "list-2")
	require.NoError(t, err)
	chainAgain, err := cache.ResolveScopeChain(context.Background(), "ws-1", "list-2")
	require.NoError(t, err)
	assert.Equal(t, chain, chainAgain)
}
