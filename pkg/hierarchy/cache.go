package hierarchy

import (
	"context"
	"sync"

	"github.com/taskdeck/taskdeck/pkg/models"
)

// BatchCache memoizes resolver lookups for the duration of one event batch.
// Ancestry is immutable while a single event is being processed, so every
// rule evaluated for that event can share the same lookups. Not meant to
// outlive the batch.
type BatchCache struct {
	resolver *Resolver

	mu        sync.Mutex
	ancestors map[models.ScopeRef]Ancestry
	chains    map[string][]string
}

func NewBatchCache(resolver *Resolver) *BatchCache {
	return &BatchCache{
		resolver:  resolver,
		ancestors: make(map[models.ScopeRef]Ancestry),
		chains:    make(map[string][]string),
	}
}

func (c *BatchCache) ResolveAncestors(ctx context.Context, scope models.ScopeRef) (Ancestry, error) {
	c.mu.Lock()
	cached, ok := c.ancestors[scope]
	c.mu.Unlock()

	if ok {
		return cached, nil
	}

	ancestry, err := c.resolver.ResolveAncestors(ctx, scope)
	if err != nil {
		return ancestry, err
	}

	c.mu.Lock()
	c.ancestors[scope] = ancestry
	c.mu.Unlock()

	return ancestry, nil
}

func (c *BatchCache) ResolveScopeChain(ctx context.Context, workspaceID, listID string) ([]string, error) {
	key := workspaceID + "/" + listID

	c.mu.Lock()
	cached, ok := c.chains[key]
	c.mu.Unlock()

	if ok {
		return cached, nil
	}

	chain, err := c.resolver.ResolveScopeChain(ctx, workspaceID, listID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.chains[key] = chain
	c.mu.Unlock()

	return chain, nil
}
