package scope

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/pkg/hierarchy"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/store"
)

func testResolver() *hierarchy.Resolver {
	s := store.NewMemoryStore()
	s.AddSpace(&models.Space{ID: "space-1", WorkspaceID: "ws-1"})
	s.AddSpace(&models.Space{ID: "space-2", WorkspaceID: "ws-1"})
	s.AddFolder(&models.Folder{ID: "folder-1", SpaceID: "space-1"})
	s.AddFolder(&models.Folder{ID: "folder-2", SpaceID: "space-2"})
	s.AddList(&models.List{ID: "list-1", SpaceID: "space-1", FolderID: "folder-1"})
	s.AddList(&models.List{ID: "list-2", SpaceID: "space-2"})

	return hierarchy.NewResolver(s, slog.Default())
}

func TestSelectorDefaultsToWorkspace(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())

	scope, err := sel.Scope()
	require.NoError(t, err)
	assert.Equal(t, models.WorkspaceScope("ws-1"), scope)
}

func TestSelectorSetTypeClearsSelection(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())

	sel.SetType(models.ScopeList)

	_, err := sel.Scope()
	assert.ErrorIs(t, err, ErrScopeIncomplete)

	sel.SetType(models.ScopeWorkspace)

	scope, err := sel.Scope()
	require.NoError(t, err)
	assert.Equal(t, models.WorkspaceScope("ws-1"), scope)
}

func TestSelectorSetSpaceResetsFolder(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())
	sel.SetType(models.ScopeFolder)

	require.NoError(t, sel.SetFolder(context.Background(), "folder-1"))
	assert.Equal(t, "folder-1", sel.FolderID())

	sel.SetSpace("space-2")

	assert.Empty(t, sel.FolderID())

	_, err := sel.Scope()
	assert.ErrorIs(t, err, ErrScopeIncomplete)
}

func TestSelectorSetFolderInfersSpace(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())
	sel.SetType(models.ScopeFolder)

	require.NoError(t, sel.SetFolder(context.Background(), "folder-2"))

	assert.Equal(t, "space-2", sel.SpaceID())

	scope, err := sel.Scope()
	require.NoError(t, err)
	assert.Equal(t, models.FolderScope("folder-2"), scope)
}

func TestSelectorSetFolderRejectsSpaceMismatch(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())
	sel.SetType(models.ScopeFolder)
	sel.SetSpace("space-2")

	err := sel.SetFolder(context.Background(), "folder-1")
	assert.ErrorIs(t, err, ErrScopeMismatch)
	assert.Empty(t, sel.FolderID())

	_, err = sel.Scope()
	assert.ErrorIs(t, err, ErrScopeIncomplete)
}

func TestSelectorSetListChecksAncestors(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())
	sel.SetType(models.ScopeList)
	sel.SetSpace("space-1")

	err := sel.SetList(context.Background(), "list-2")
	assert.ErrorIs(t, err, ErrScopeMismatch)

	require.NoError(t, sel.SetList(context.Background(), "list-1"))
	assert.Equal(t, "folder-1", sel.FolderID())

	scope, err := sel.Scope()
	require.NoError(t, err)
	assert.Equal(t, models.ListScope("list-1"), scope)
}

func TestSelectorSetListRequiresListType(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())
	sel.SetType(models.ScopeSpace)

	err := sel.SetList(context.Background(), "list-1")
	assert.ErrorIs(t, err, ErrScopeMismatch)
}

func TestSelectorSetListRejectsVanishedList(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())
	sel.SetType(models.ScopeList)

	err := sel.SetList(context.Background(), "deleted-list")
	assert.ErrorIs(t, err, ErrScopeMismatch)
}

func TestSelectorLoadExisting(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())

	require.NoError(t, sel.LoadExisting(context.Background(), models.ListScope("list-1")))

	assert.Equal(t, "space-1", sel.SpaceID())
	assert.Equal(t, "folder-1", sel.FolderID())

	scope, err := sel.Scope()
	require.NoError(t, err)
	assert.Equal(t, models.ListScope("list-1"), scope)

	// A second load is a no-op.
	require.NoError(t, sel.LoadExisting(context.Background(), models.ListScope("list-2")))

	scope, err = sel.Scope()
	require.NoError(t, err)
	assert.Equal(t, models.ListScope("list-1"), scope)
}

func TestSelectorLoadExistingOrphanedScope(t *testing.T) {
	sel := NewSelector("ws-1", testResolver())

	err := sel.LoadExisting(context.Background(), models.ListScope("deleted-list"))
	assert.ErrorIs(t, err, ErrScopeMismatch)
}
