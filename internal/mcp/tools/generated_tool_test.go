package tools

import (
	"context"
	"testing"

	"github.com/hivemind-vault/hivemind/internal/adapters/foldermap"
	"github.com/hivemind-vault/hivemind/internal/adapters/template"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
	graphcore "github.com/hivemind-vault/hivemind/internal/core/graph"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

func newTestBuilder(t *testing.T, notes []*entities.Note) *graphcore.Builder {
	t.Helper()
	ctx := context.Background()
	reg := template.NewRegistry()
	tmpl := template.BuiltinWorldbuilding()
	if err := reg.Register(ctx, tmpl); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Activate(ctx, tmpl.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	builder := graphcore.New(reg, foldermap.New(reg))
	if _, err := builder.Build(ctx, notes); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return builder
}

func TestQueryToolLooksUpByID(t *testing.T) {
	builder := newTestBuilder(t, []*entities.Note{
		{ID: "hero", Path: "characters/hero.md", FileName: "hero.md",
			Frontmatter: map[string]any{"id": "hero", "title": "The Hero", "type": "character"},
			Body:        "A brave adventurer."},
	})
	tool := NewQueryTool(usecases.GeneratedTool{Name: "query_character", EntityType: "character"}, builder)

	result, err := tool.Call(context.Background(), map[string]any{"id": "hero"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	payload := result.(map[string]any)
	if payload["id"] != "hero" || payload["title"] != "The Hero" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestQueryToolLooksUpByCaseFoldedTitle(t *testing.T) {
	builder := newTestBuilder(t, []*entities.Note{
		{ID: "hero", Path: "characters/hero.md", FileName: "hero.md",
			Frontmatter: map[string]any{"id": "hero", "title": "The Hero", "type": "character"}},
	})
	tool := NewQueryTool(usecases.GeneratedTool{Name: "query_character", EntityType: "character"}, builder)

	result, err := tool.Call(context.Background(), map[string]any{"id": "THE HERO"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.(map[string]any)["id"] != "hero" {
		t.Errorf("expected hero via case-folded title match, got %+v", result)
	}
}

func TestQueryToolGroupsRelationshipsByType(t *testing.T) {
	builder := newTestBuilder(t, []*entities.Note{
		{ID: "hero", Path: "characters/hero.md", FileName: "hero.md",
			Frontmatter: map[string]any{"id": "hero", "title": "Hero", "type": "character"},
			Links:       []string{"castle"}},
		{ID: "castle", Path: "locations/castle.md", FileName: "castle.md",
			Frontmatter: map[string]any{"id": "castle", "title": "Castle", "type": "location"}},
	})
	tool := NewQueryTool(usecases.GeneratedTool{Name: "query_character", EntityType: "character"}, builder)

	result, err := tool.Call(context.Background(), map[string]any{"id": "hero"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	rels := result.(map[string]any)["relationships"].(map[string][]Relationship)
	located, ok := rels["located_in"]
	if !ok || len(located) != 1 || located[0].NodeID != "castle" {
		t.Errorf("expected a located_in relationship to castle, got %+v", rels)
	}
}

func TestQueryToolOmitsContentByDefaultAndRespectsContentLimit(t *testing.T) {
	builder := newTestBuilder(t, []*entities.Note{
		{ID: "hero", Path: "characters/hero.md", FileName: "hero.md",
			Frontmatter: map[string]any{"id": "hero", "title": "Hero", "type": "character"},
			Body:        "A very long biography."},
	})
	tool := NewQueryTool(usecases.GeneratedTool{Name: "query_character", EntityType: "character"}, builder)

	result, _ := tool.Call(context.Background(), map[string]any{"id": "hero"})
	if _, ok := result.(map[string]any)["content"]; ok {
		t.Error("expected no content field when includeContent is not set")
	}

	result, _ = tool.Call(context.Background(), map[string]any{"id": "hero", "includeContent": true, "contentLimit": float64(6)})
	if got := result.(map[string]any)["content"]; got != "A very" {
		t.Errorf("expected content truncated to 6 runes, got %q", got)
	}
}

func TestQueryToolReturnsNotFoundForUnknownID(t *testing.T) {
	builder := newTestBuilder(t, nil)
	tool := NewQueryTool(usecases.GeneratedTool{Name: "query_character", EntityType: "character"}, builder)

	if _, err := tool.Call(context.Background(), map[string]any{"id": "nobody"}); err == nil {
		t.Error("expected a not-found error")
	}
}

func TestListToolPaginatesWithOffsetAndLimit(t *testing.T) {
	builder := newTestBuilder(t, []*entities.Note{
		{ID: "a", Path: "characters/a.md", FileName: "a.md", Frontmatter: map[string]any{"id": "a", "title": "Alice", "type": "character"}},
		{ID: "b", Path: "characters/b.md", FileName: "b.md", Frontmatter: map[string]any{"id": "b", "title": "Bob", "type": "character"}},
		{ID: "c", Path: "characters/c.md", FileName: "c.md", Frontmatter: map[string]any{"id": "c", "title": "Carol", "type": "character"}},
	})
	tool := NewListTool(usecases.GeneratedTool{Name: "list_character", EntityType: "character"}, builder)

	result, err := tool.Call(context.Background(), map[string]any{"limit": float64(1), "offset": float64(1)})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	payload := result.(map[string]any)
	if payload["totalMatched"] != 3 {
		t.Errorf("expected totalMatched=3, got %v", payload["totalMatched"])
	}
	nodes := payload["nodes"].([]*entities.Node)
	if len(nodes) != 1 || nodes[0].ID != "b" {
		t.Errorf("expected page [b], got %+v", nodes)
	}
}

func TestListToolAppliesFrontmatterFilters(t *testing.T) {
	builder := newTestBuilder(t, []*entities.Note{
		{ID: "a", Path: "characters/a.md", FileName: "a.md", Frontmatter: map[string]any{"id": "a", "title": "Alice", "type": "character", "faction": "rebels"}},
		{ID: "b", Path: "characters/b.md", FileName: "b.md", Frontmatter: map[string]any{"id": "b", "title": "Bob", "type": "character", "faction": "empire"}},
	})
	tool := NewListTool(usecases.GeneratedTool{Name: "list_character", EntityType: "character"}, builder)

	result, err := tool.Call(context.Background(), map[string]any{"filters": map[string]any{"faction": "empire"}})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	nodes := result.(map[string]any)["nodes"].([]*entities.Node)
	if len(nodes) != 1 || nodes[0].ID != "b" {
		t.Errorf("expected only bob to match faction=empire, got %+v", nodes)
	}
}
