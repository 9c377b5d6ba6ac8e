// Package models defines the core domain models for the automation rule engine.
package models

import (
	"errors"
	"fmt"
)

// ScopeType identifies the hierarchy level a rule is bound to.
type ScopeType string

const (
	ScopeWorkspace ScopeType = "workspace"
	ScopeSpace     ScopeType = "space"
	ScopeFolder    ScopeType = "folder"
	ScopeList      ScopeType = "list"
)

var ErrInvalidScope = errors.New("invalid scope")

// ScopeRef binds a rule to exactly one hierarchy node. For workspace scope the
// ID is the workspace id itself; every other level carries the id of the
// space, folder or list.
type ScopeRef struct {
	Type ScopeType `json:"scope_type" validate:"required,oneof=workspace space folder list"`
	ID   string    `json:"scope_id"`
}

func WorkspaceScope(workspaceID string) ScopeRef {
	return ScopeRef{Type: ScopeWorkspace, ID: workspaceID}
}

func SpaceScope(spaceID string) ScopeRef {
	return ScopeRef{Type: ScopeSpace, ID: spaceID}
}

func FolderScope(folderID string) ScopeRef {
	return ScopeRef{Type: ScopeFolder, ID: folderID}
}

func ListScope(listID string) ScopeRef {
	return ScopeRef{Type: ScopeList, ID: listID}
}

// Validate checks the workspace invariant: workspace scope must carry the
// owning workspace id, every other level needs a non-empty node id.
func (s ScopeRef) Validate(workspaceID string) error {
	switch s.Type {
	case ScopeWorkspace:
		if s.ID != workspaceID {
			return fmt.Errorf("%w: workspace scope id %q does not match workspace %q", ErrInvalidScope, s.ID, workspaceID)
		}
	case ScopeSpace, ScopeFolder, ScopeList:
		if s.ID == "" {
			return fmt.Errorf("%w: %s scope requires a non-empty id", ErrInvalidScope, s.Type)
		}
	default:
		return fmt.Errorf("%w: unknown scope type %q", ErrInvalidScope, s.Type)
	}

	return nil
}

func (s ScopeRef) IsWorkspace() bool {
	return s.Type == ScopeWorkspace
}

func (s ScopeRef) String() string {
	return string(s.Type) + "/" + s.ID
}
