package mcp

import (
	"sync"
	"time"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

// GraphCache provides thread-safe caching of the in-memory graph projection
// per vault root, so MCP tool handlers never rebuild the graph on every call.
type GraphCache struct {
	mu      sync.RWMutex
	entries map[string]*CachedGraph
}

// CachedGraph wraps a graph projection with build metadata.
type CachedGraph struct {
	Graph   *entities.Graph
	BuiltAt time.Time
}

// NewGraphCache creates a new graph cache.
func NewGraphCache() *GraphCache {
	return &GraphCache{
		entries: make(map[string]*CachedGraph),
	}
}

// Get retrieves the cached graph for the given vault root.
func (gc *GraphCache) Get(vaultRoot string) (*entities.Graph, bool) {
	gc.mu.RLock()
	defer gc.mu.RUnlock()

	if entry, ok := gc.entries[vaultRoot]; ok {
		return entry.Graph, true
	}
	return nil, false
}

// Set stores the graph projection for the given vault root.
func (gc *GraphCache) Set(vaultRoot string, graph *entities.Graph) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	gc.entries[vaultRoot] = &CachedGraph{
		Graph:   graph,
		BuiltAt: time.Now(),
	}
}

// Invalidate removes the cached graph for the given vault root. The mcp
// command's watcher handler does not call it; it replaces the entry with Set
// after every incremental update.
func (gc *GraphCache) Invalidate(vaultRoot string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	delete(gc.entries, vaultRoot)
}
