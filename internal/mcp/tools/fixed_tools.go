package tools

import (
	"context"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

// SearchVaultTool is the fixed search_vault tool: an unscoped hybrid search
// across every entity type.
type SearchVaultTool struct {
	search usecases.SearchEngine
}

// NewSearchVaultTool creates the search_vault tool.
func NewSearchVaultTool(search usecases.SearchEngine) *SearchVaultTool {
	return &SearchVaultTool{search: search}
}

func (t *SearchVaultTool) Name() string { return "search_vault" }

func (t *SearchVaultTool) Description() string {
	return "Hybrid keyword and graph-proximity search across the whole vault."
}

func (t *SearchVaultTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":             map[string]any{"type": "string", "description": "search text"},
			"type":              map[string]any{"type": "string", "description": "filter by entity type"},
			"status":            map[string]any{"type": "string", "description": "filter by status"},
			"relationship_type": map[string]any{"type": "string", "description": "filter to nodes with an edge of this type"},
			"neighbor":          map[string]any{"type": "string", "description": "filter to 1-hop neighbors of this node id"},
			"limit":             map[string]any{"type": "number", "description": "max results, default 20"},
		},
		"required": []string{"query"},
	}
}

func (t *SearchVaultTool) Call(ctx context.Context, args map[string]any) (any, error) {
	req := &entities.SearchRequest{
		Query: stringArg(args, "query"),
		Limit: intArg(args, "limit"),
		Filters: entities.SearchFilters{
			Type:             stringArg(args, "type"),
			Status:           stringArg(args, "status"),
			RelationshipType: stringArg(args, "relationship_type"),
			Neighbor:         stringArg(args, "neighbor"),
		},
	}
	if req.Query == "" {
		return nil, &entities.InvalidToolArgsError{Tool: t.Name(), Message: "query is required"}
	}
	return t.search.Search(ctx, req)
}

// GetVaultStatsTool is the fixed get_vault_stats tool.
type GetVaultStatsTool struct {
	storage usecases.StorageEngine
}

// NewGetVaultStatsTool creates the get_vault_stats tool.
func NewGetVaultStatsTool(storage usecases.StorageEngine) *GetVaultStatsTool {
	return &GetVaultStatsTool{storage: storage}
}

func (t *GetVaultStatsTool) Name() string               { return "get_vault_stats" }
func (t *GetVaultStatsTool) Description() string         { return "Report node/edge counts and per-type breakdown for the current index." }
func (t *GetVaultStatsTool) InputSchema() map[string]any { return map[string]any{"type": "object", "properties": map[string]any{}} }

func (t *GetVaultStatsTool) Call(ctx context.Context, _ map[string]any) (any, error) {
	return t.storage.Stats(ctx)
}

// RebuildIndexTool is the fixed rebuild_index tool: triggers a full reindex
// of the vault from disk.
type RebuildIndexTool struct {
	rebuild func(ctx context.Context) (usecases.BuildStats, error)
}

// NewRebuildIndexTool creates the rebuild_index tool around a rebuild
// callback, typically the build-index usecase's Run method.
func NewRebuildIndexTool(rebuild func(ctx context.Context) (usecases.BuildStats, error)) *RebuildIndexTool {
	return &RebuildIndexTool{rebuild: rebuild}
}

func (t *RebuildIndexTool) Name() string       { return "rebuild_index" }
func (t *RebuildIndexTool) Description() string { return "Force a full rebuild of the vault index from disk." }
func (t *RebuildIndexTool) InputSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *RebuildIndexTool) Call(ctx context.Context, _ map[string]any) (any, error) {
	return t.rebuild(ctx)
}
