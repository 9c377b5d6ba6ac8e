// Package hierarchy resolves ancestor chains for scoped entities. A list
// belongs to a space and optionally to a folder; a folder belongs to a space.
// Those foreign keys are the sole basis for ancestry.
package hierarchy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/store"
)

// Ancestry is the resolved ancestor chain of a scope node. Fields the node
// does not have stay empty; Orphaned marks a reference whose entity no longer
// exists (e.g. a deleted list).
type Ancestry struct {
	SpaceID  string
	FolderID string
	ListID   string
	Orphaned bool
}

type Resolver struct {
	store  store.EntityStore
	logger *slog.Logger
}

func NewResolver(entityStore store.EntityStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  entityStore,
		logger: logger.With("module", "hierarchy_resolver"),
	}
}

// ResolveAncestors resolves the ancestor chain of a scope node. It never
// fails on a dangling reference: the result is marked Orphaned and callers
// decide whether to hide or flag the rule. Lookup errors other than
// not-found are returned as-is.
func (r *Resolver) ResolveAncestors(ctx context.Context, scope models.ScopeRef) (Ancestry, error) {
	switch scope.Type {
	case models.ScopeWorkspace:
		return Ancestry{}, nil

	case models.ScopeSpace:
		return Ancestry{SpaceID: scope.ID}, nil

	case models.ScopeFolder:
		folder, err := r.store.GetFolder(ctx, scope.ID)
		if err != nil {
			return r.orphanOrError(ctx, scope, err)
		}

		return Ancestry{SpaceID: folder.SpaceID, FolderID: folder.ID}, nil

	case models.ScopeList:
		list, err := r.store.GetList(ctx, scope.ID)
		if err != nil {
			return r.orphanOrError(ctx, scope, err)
		}

		return Ancestry{SpaceID: list.SpaceID, FolderID: list.FolderID, ListID: list.ID}, nil

	default:
		return Ancestry{Orphaned: true}, nil
	}
}

// ResolveScopeChain returns the full node-id chain for a list, from the list
// itself up to its space. Used to decide which rule scopes can observe a
// task living in that list.
func (r *Resolver) ResolveScopeChain(ctx context.Context, workspaceID, listID string) ([]string, error) {
	chain := []string{workspaceID}

	list, err := r.store.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.logger.WarnContext(ctx, "List vanished during scope chain resolution", "list_id", listID)

			return chain, nil
		}

		return nil, err
	}

	if list.SpaceID != "" {
		chain = append(chain, list.SpaceID)
	}

	if list.FolderID != "" {
		chain = append(chain, list.FolderID)
	}

	chain = append(chain, list.ID)

	return chain, nil
}

func (r *Resolver) orphanOrError(ctx context.Context, scope models.ScopeRef, err error) (Ancestry, error) {
	if errors.Is(err, store.ErrNotFound) {
		r.logger.WarnContext(ctx, "Scope reference is orphaned",
			"scope_type", scope.Type,
			"scope_id", scope.ID)

		return Ancestry{Orphaned: true}, nil
	}

	return Ancestry{}, err
}
