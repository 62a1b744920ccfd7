package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

// Relationship is one edge touching a queried node, grouped by the caller
// under its relationship-type id.
type Relationship struct {
	NodeID    string `json:"nodeId"`
	Title     string `json:"title"`
	Direction string `json:"direction"` // "outgoing" or "incoming"
}

// QueryTool is the generated query_<T> tool: a single-node lookup by id or
// case-folded title, scoped to this tool's entity type.
type QueryTool struct {
	name        string
	description string
	entityType  string
	schema      map[string]any
	builder     usecases.GraphBuilder
}

// NewQueryTool wraps a usecases.GeneratedTool descriptor into a callable Tool.
func NewQueryTool(desc usecases.GeneratedTool, builder usecases.GraphBuilder) *QueryTool {
	return &QueryTool{
		name:        desc.Name,
		description: desc.Description,
		entityType:  desc.EntityType,
		schema:      desc.InputSchema,
		builder:     builder,
	}
}

func (t *QueryTool) Name() string               { return t.name }
func (t *QueryTool) Description() string         { return t.description }
func (t *QueryTool) InputSchema() map[string]any { return t.schema }

// Call looks up the single node with id = args["id"] (or a case-folded title
// match) among nodes of this tool's entity type, and returns its frontmatter,
// an optional body excerpt, and its relationships grouped by
// relationship-type id.
func (t *QueryTool) Call(_ context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	if id == "" {
		return nil, &entities.InvalidToolArgsError{Tool: t.name, Message: "id is required"}
	}

	g := t.builder.Graph()
	node, ok := g.Nodes[id]
	if !ok || node.Type != t.entityType {
		node, ok = findNodeByTitleFold(g, t.entityType, id)
	}
	if !ok {
		return nil, &entities.NotFoundError{Entity: t.entityType, ID: id}
	}

	result := map[string]any{
		"id":            node.ID,
		"title":         node.Title,
		"type":          node.Type,
		"status":        node.Status,
		"frontmatter":   node.Frontmatter,
		"relationships": groupRelationships(g, node.ID),
	}
	if boolArg(args, "includeContent") {
		result["content"] = excerpt(node.Body, intArg(args, "contentLimit"))
	}
	return result, nil
}

// findNodeByTitleFold finds a node of entityType whose title case-folds to
// title. Used when the query id does not match any node id directly.
func findNodeByTitleFold(g *entities.Graph, entityType, title string) (*entities.Node, bool) {
	for _, n := range g.Nodes {
		if n.Type == entityType && strings.EqualFold(n.Title, title) {
			return n, true
		}
	}
	return nil, false
}

// groupRelationships collects every edge touching id, in both directions,
// keyed by relationship-type id.
func groupRelationships(g *entities.Graph, id string) map[string][]Relationship {
	grouped := make(map[string][]Relationship)
	for _, e := range g.OutgoingEdges(id) {
		grouped[e.Type] = append(grouped[e.Type], Relationship{
			NodeID:    e.Target,
			Title:     titleOf(g, e.Target),
			Direction: "outgoing",
		})
	}
	for _, e := range g.IncomingEdges(id) {
		grouped[e.Type] = append(grouped[e.Type], Relationship{
			NodeID:    e.Source,
			Title:     titleOf(g, e.Source),
			Direction: "incoming",
		})
	}
	return grouped
}

func titleOf(g *entities.Graph, id string) string {
	if n, ok := g.Nodes[id]; ok {
		return n.Title
	}
	return ""
}

// excerpt truncates body to at most limit runes. A non-positive limit
// returns the body unmodified.
func excerpt(body string, limit int) string {
	if limit <= 0 {
		return body
	}
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit])
}

// ListTool is the generated list_<T> tool: a filtered, paginated listing of
// every node of this entity type.
type ListTool struct {
	name        string
	description string
	entityType  string
	schema      map[string]any
	builder     usecases.GraphBuilder
}

// NewListTool wraps a usecases.GeneratedTool descriptor into a callable Tool.
func NewListTool(desc usecases.GeneratedTool, builder usecases.GraphBuilder) *ListTool {
	return &ListTool{
		name:        desc.Name,
		description: desc.Description,
		entityType:  desc.EntityType,
		schema:      desc.InputSchema,
		builder:     builder,
	}
}

func (t *ListTool) Name() string               { return t.name }
func (t *ListTool) Description() string         { return t.description }
func (t *ListTool) InputSchema() map[string]any { return t.schema }

// Call lists every node of this tool's entity type, filtered by status and
// frontmatter-field equality filters, sorted by title, and paginated by
// offset/limit (limit defaults to 20).
func (t *ListTool) Call(_ context.Context, args map[string]any) (any, error) {
	status := stringArg(args, "status")
	limit := intArg(args, "limit")
	if limit <= 0 {
		limit = 20
	}
	offset := intArg(args, "offset")
	if offset < 0 {
		offset = 0
	}
	filters := mapArg(args, "filters")

	g := t.builder.Graph()
	matches := make([]*entities.Node, 0)
	for _, n := range g.Nodes {
		if n.Type != t.entityType {
			continue
		}
		if status != "" && n.Status != status {
			continue
		}
		if !matchesFilters(n, filters) {
			continue
		}
		matches = append(matches, n)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Title < matches[j].Title })

	total := len(matches)
	page := pageOf(matches, offset, limit)
	return map[string]any{"nodes": page, "totalMatched": total}, nil
}

func pageOf(nodes []*entities.Node, offset, limit int) []*entities.Node {
	if offset >= len(nodes) {
		return nil
	}
	end := offset + limit
	if end > len(nodes) {
		end = len(nodes)
	}
	return nodes[offset:end]
}

// matchesFilters reports whether every key/value in filters matches the
// node's frontmatter, compared as their string representations.
func matchesFilters(n *entities.Node, filters map[string]any) bool {
	for k, v := range filters {
		if fmt.Sprint(n.Frontmatter[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func mapArg(args map[string]any, key string) map[string]any {
	if v, ok := args[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

func boolArg(args map[string]any, key string) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intArg(args map[string]any, key string) int {
	v, ok := args[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
