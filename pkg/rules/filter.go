package rules

import (
	"context"
	"log/slog"

	"github.com/taskdeck/taskdeck/pkg/hierarchy"
	"github.com/taskdeck/taskdeck/pkg/models"
)

// FilterAll is the pseudo id for "every node at this level". Its meaning
// depends on the level: all spaces is unconditionally true, all folders keeps
// only rules with a folder ancestor, all lists keeps only list-scoped rules.
const FilterAll = "all"

// ancestryResolver is satisfied by both the Resolver and its BatchCache.
type ancestryResolver interface {
	ResolveAncestors(ctx context.Context, scope models.ScopeRef) (hierarchy.Ancestry, error)
}

// Filter answers hierarchical membership questions for rule listings: "show
// every rule under folder F" and the like. Ancestry comes from the resolver,
// so orphaned scopes fall out of every hierarchical view instead of crashing
// it.
type Filter struct {
	logger   *slog.Logger
	resolver *hierarchy.Resolver
}

func NewFilter(logger *slog.Logger, resolver *hierarchy.Resolver) *Filter {
	return &Filter{
		logger:   logger.With("module", "rule_filter"),
		resolver: resolver,
	}
}

// FilterRules keeps the rules that belong to the filter selection. One
// ancestry cache serves the whole pass.
func (f *Filter) FilterRules(ctx context.Context, all []*models.Rule, filterType models.ScopeType, filterID string) ([]*models.Rule, error) {
	cache := hierarchy.NewBatchCache(f.resolver)
	matched := make([]*models.Rule, 0, len(all))

	for _, rule := range all {
		ok, err := f.belongs(ctx, cache, rule, filterType, filterID)
		if err != nil {
			return nil, err
		}

		if ok {
			matched = append(matched, rule)
		}
	}

	return matched, nil
}

// BelongsToScope reports whether a single rule falls under the filter
// selection.
func (f *Filter) BelongsToScope(ctx context.Context, rule *models.Rule, filterType models.ScopeType, filterID string) (bool, error) {
	return f.belongs(ctx, f.resolver, rule, filterType, filterID)
}

func (f *Filter) belongs(ctx context.Context, resolver ancestryResolver, rule *models.Rule, filterType models.ScopeType, filterID string) (bool, error) {
	if filterType == models.ScopeWorkspace {
		return true, nil
	}

	ancestry, err := resolver.ResolveAncestors(ctx, rule.Scope)
	if err != nil {
		return false, err
	}

	if ancestry.Orphaned {
		f.logger.Debug("Hiding rule with orphaned scope from filter",
			"rule_id", rule.ID,
			"scope", rule.Scope)

		return false, nil
	}

	switch filterType {
	case models.ScopeSpace:
		if filterID == FilterAll {
			return true, nil
		}

		return ancestry.SpaceID == filterID, nil

	case models.ScopeFolder:
		// Space-scoped rules never belong to a folder filter.
		if rule.Scope.Type == models.ScopeSpace || rule.Scope.Type == models.ScopeWorkspace {
			return false, nil
		}

		if filterID == FilterAll {
			return ancestry.FolderID != "", nil
		}

		return ancestry.FolderID == filterID, nil

	case models.ScopeList:
		if rule.Scope.Type != models.ScopeList {
			return false, nil
		}

		if filterID == FilterAll {
			return true, nil
		}

		return rule.Scope.ID == filterID, nil

	default:
		return false, nil
	}
}
