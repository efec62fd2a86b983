// Package navcache implements the Navigation Cache & Pathfinder (spec
// §4.2): a per-(team, interface) cache of the unified navigation graph
// with a bounded TTL and event-driven invalidation, plus a deterministic
// BFS pathfinder over that graph.
package navcache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/models"
)

// TreeLoader builds the unified graph for a team+interface from storage by
// merging its navigation tree with all embedded subtrees (spec §4.2
// "Unified Graph").
type TreeLoader interface {
	LoadUnifiedGraph(ctx context.Context, teamID, interfaceID string) (*models.UnifiedGraph, error)
}

type entry struct {
	graph     *models.UnifiedGraph
	expiresAt time.Time
}

// Cache holds one unified graph per (team, interface) key, rebuilding it
// from the loader once its TTL has elapsed or it has been explicitly
// invalidated by a navigation-tree edit.
type Cache struct {
	loader TreeLoader
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

// New constructs a Cache with the given TTL (spec §9: bounded to ≤5min).
func New(loader TreeLoader, ttl time.Duration) *Cache {
	return &Cache{loader: loader, ttl: ttl, entries: make(map[string]*entry)}
}

func key(teamID, interfaceID string) string { return teamID + "::" + interfaceID }

// Get returns the unified graph for (teamID, interfaceID), rebuilding it
// from the loader if absent, expired, or previously invalidated.
func (c *Cache) Get(ctx context.Context, teamID, interfaceID string) (*models.UnifiedGraph, error) {
	k := key(teamID, interfaceID)
	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.graph, nil
	}

	graph, err := c.loader.LoadUnifiedGraph(ctx, teamID, interfaceID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "failed to build unified navigation graph", err)
	}
	graph.BuiltAt = now

	c.mu.Lock()
	c.entries[k] = &entry{graph: graph, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()

	return graph, nil
}

// Invalidate drops the cached graph for (teamID, interfaceID), forcing the
// next Get to rebuild it. Nothing in this module calls it when a
// navigation tree changes; without a call, a stale graph is replaced only
// once its TTL lapses.
func (c *Cache) Invalidate(teamID, interfaceID string) {
	c.mu.Lock()
	delete(c.entries, key(teamID, interfaceID))
	c.mu.Unlock()
}

// Len returns the number of cached graphs, for tests and metrics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SortedKeys returns the cache's current keys in deterministic order, used
// by tests that assert on cache contents without depending on map order.
func (c *Cache) SortedKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
