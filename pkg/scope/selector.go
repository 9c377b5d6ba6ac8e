// Package scope binds a rule to exactly one hierarchy node and keeps
// dependent selections consistent while a rule is being created or edited.
package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskdeck/taskdeck/pkg/hierarchy"
	"github.com/taskdeck/taskdeck/pkg/models"
)

var (
	ErrScopeIncomplete = errors.New("scope selection incomplete")
	ErrScopeMismatch   = errors.New("scope selection mismatch")
)

// Selector is the state machine behind the rule builder's scope picker.
// Selecting a level clears everything below it; selecting a concrete node
// validates it against the independently chosen ancestors and corrects
// disagreements by cascading resets rather than ignoring them.
type Selector struct {
	workspaceID string
	resolver    *hierarchy.Resolver

	scopeType models.ScopeType
	scopeID   string
	spaceID   string
	folderID  string

	initialized bool
}

func NewSelector(workspaceID string, resolver *hierarchy.Resolver) *Selector {
	return &Selector{
		workspaceID: workspaceID,
		resolver:    resolver,
		scopeType:   models.ScopeWorkspace,
		scopeID:     workspaceID,
	}
}

// LoadExisting reconstructs ancestor selections for an already-stored scope.
// It resolves the hierarchy exactly once; later calls are no-ops so a briefly
// inconsistent async reload cannot flap the selection.
func (s *Selector) LoadExisting(ctx context.Context, scope models.ScopeRef) error {
	if s.initialized {
		return nil
	}

	ancestry, err := s.resolver.ResolveAncestors(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to reconstruct scope %s: %w", scope, err)
	}

	if ancestry.Orphaned {
		return fmt.Errorf("%w: scope %s no longer resolves", ErrScopeMismatch, scope)
	}

	s.scopeType = scope.Type
	s.scopeID = scope.ID
	s.spaceID = ancestry.SpaceID
	s.folderID = ancestry.FolderID
	s.initialized = true

	return nil
}

// SetType switches the target level. Workspace binds immediately to the
// workspace id; any other level waits for a concrete node.
func (s *Selector) SetType(scopeType models.ScopeType) {
	s.initialized = true
	s.scopeType = scopeType

	if scopeType == models.ScopeWorkspace {
		s.scopeID = s.workspaceID
		s.spaceID = ""
		s.folderID = ""

		return
	}

	s.scopeID = ""
}

// SetSpace chooses a space and invalidates any downstream folder selection.
func (s *Selector) SetSpace(spaceID string) {
	s.initialized = true
	s.spaceID = spaceID
	s.folderID = ""

	if s.scopeType == models.ScopeSpace {
		s.scopeID = spaceID
	} else {
		s.scopeID = ""
	}
}

// SetFolder chooses a folder. The folder's space must agree with the chosen
// space; on mismatch the folder selection is reset and the error reported.
func (s *Selector) SetFolder(ctx context.Context, folderID string) error {
	s.initialized = true

	ancestry, err := s.resolver.ResolveAncestors(ctx, models.FolderScope(folderID))
	if err != nil {
		return err
	}

	if ancestry.Orphaned {
		s.folderID = ""

		return fmt.Errorf("%w: folder %s no longer exists", ErrScopeMismatch, folderID)
	}

	if s.spaceID != "" && ancestry.SpaceID != s.spaceID {
		s.folderID = ""
		if s.scopeType == models.ScopeFolder {
			s.scopeID = ""
		}

		return fmt.Errorf("%w: folder %s belongs to space %s, not %s", ErrScopeMismatch, folderID, ancestry.SpaceID, s.spaceID)
	}

	s.spaceID = ancestry.SpaceID
	s.folderID = folderID

	if s.scopeType == models.ScopeFolder {
		s.scopeID = folderID
	}

	return nil
}

// SetList chooses a list for list-level scope. The list's space and folder
// must agree with the chosen ancestors; disagreement resets the selection.
func (s *Selector) SetList(ctx context.Context, listID string) error {
	s.initialized = true

	if s.scopeType != models.ScopeList {
		return fmt.Errorf("%w: list selected while targeting %s scope", ErrScopeMismatch, s.scopeType)
	}

	ancestry, err := s.resolver.ResolveAncestors(ctx, models.ListScope(listID))
	if err != nil {
		return err
	}

	if ancestry.Orphaned {
		s.scopeID = ""

		return fmt.Errorf("%w: list %s no longer exists", ErrScopeMismatch, listID)
	}

	if s.spaceID != "" && ancestry.SpaceID != s.spaceID {
		s.scopeID = ""

		return fmt.Errorf("%w: list %s belongs to space %s, not %s", ErrScopeMismatch, listID, ancestry.SpaceID, s.spaceID)
	}

	if s.folderID != "" && ancestry.FolderID != s.folderID {
		s.scopeID = ""

		return fmt.Errorf("%w: list %s belongs to folder %q, not %q", ErrScopeMismatch, listID, ancestry.FolderID, s.folderID)
	}

	s.spaceID = ancestry.SpaceID
	s.folderID = ancestry.FolderID
	s.scopeID = listID

	return nil
}

// Scope returns the bound scope, or ErrScopeIncomplete while a non-workspace
// level still waits for a concrete node.
func (s *Selector) Scope() (models.ScopeRef, error) {
	if s.scopeID == "" {
		return models.ScopeRef{}, fmt.Errorf("%w: no %s selected", ErrScopeIncomplete, s.scopeType)
	}

	return models.ScopeRef{Type: s.scopeType, ID: s.scopeID}, nil
}

// SpaceID exposes the intermediate space selection for the builder UI.
func (s *Selector) SpaceID() string { return s.spaceID }

// FolderID exposes the intermediate folder selection for the builder UI.
func (s *Selector) FolderID() string { return s.folderID }
