package mcp

import (
	"context"
	"fmt"

	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

// ToolGenerator derives query_<T> and list_<T> tool descriptors from the
// active template's entity types, so the tool surface regenerates whenever
// the template changes.
type ToolGenerator struct {
	registry usecases.TemplateRegistry
}

var _ usecases.ToolGenerator = (*ToolGenerator)(nil)

// NewToolGenerator creates a Tool Generator over the given template registry.
func NewToolGenerator(registry usecases.TemplateRegistry) *ToolGenerator {
	return &ToolGenerator{registry: registry}
}

// GenerateTools returns the full set of generated tool descriptors for the
// active template's entity types.
func (g *ToolGenerator) GenerateTools(_ context.Context) ([]usecases.GeneratedTool, error) {
	entityTypes := g.registry.GetEntityTypes()
	out := make([]usecases.GeneratedTool, 0, len(entityTypes)*2)
	for _, et := range entityTypes {
		out = append(out,
			usecases.GeneratedTool{
				Name:        "query_" + et.Name,
				Description: fmt.Sprintf("Look up a single %s note by id or title and return its frontmatter and relationships.", et.Name),
				EntityType:  et.Name,
				InputSchema: queryInputSchema(),
			},
			usecases.GeneratedTool{
				Name:        "list_" + et.Name,
				Description: fmt.Sprintf("List %s notes, optionally filtered and paginated.", et.Plural),
				EntityType:  et.Name,
				InputSchema: listInputSchema(),
			},
		)
	}
	return out, nil
}

func queryInputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":             map[string]any{"type": "string", "description": "node id, or a title matched case-insensitively"},
			"includeContent": map[string]any{"type": "boolean", "description": "include a body excerpt"},
			"contentLimit":   map[string]any{"type": "number", "description": "max characters of body to include"},
		},
		"required": []string{"id"},
	}
}

func listInputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status":  map[string]any{"type": "string", "description": "filter by status"},
			"limit":   map[string]any{"type": "number", "description": "max results, default 20"},
			"offset":  map[string]any{"type": "number", "description": "skip this many matches before limiting"},
			"filters": map[string]any{"type": "object", "description": "additional frontmatter field equality filters"},
		},
	}
}
