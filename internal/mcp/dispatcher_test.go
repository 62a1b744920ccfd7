package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hivemind-vault/hivemind/internal/adapters/foldermap"
	"github.com/hivemind-vault/hivemind/internal/adapters/storage"
	"github.com/hivemind-vault/hivemind/internal/adapters/template"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
	graphcore "github.com/hivemind-vault/hivemind/internal/core/graph"
	"github.com/hivemind-vault/hivemind/internal/core/search"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
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
	mapper := foldermap.New(reg)
	builder := graphcore.New(reg, mapper)

	st := storage.New()
	dbPath := filepath.Join(t.TempDir(), ".hivemind", "vault.db")
	if err := st.Open(ctx, dbPath); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	note := &entities.Note{
		ID: "hero", Path: "characters/hero.md", FileName: "hero.md",
		Frontmatter: map[string]any{"id": "hero", "title": "The Hero", "type": "character"},
		Body:        "A brave adventurer wields a sword.",
	}
	if _, err := builder.Build(ctx, []*entities.Note{note}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := st.UpsertNote(ctx, note, "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	engine := search.New(st, builder)
	generator := NewToolGenerator(reg)
	rebuild := func(context.Context) (usecases.BuildStats, error) {
		return usecases.BuildStats{NotesScanned: 1, NotesAdmitted: 1}, nil
	}

	registry, err := BuildToolRegistry(ctx, generator, engine, st, builder, rebuild)
	if err != nil {
		t.Fatalf("BuildToolRegistry failed: %v", err)
	}
	return NewDispatcher(registry)
}

func TestDispatchSearchVault(t *testing.T) {
	d := newTestDispatcher(t)
	result, err := d.Dispatch(context.Background(), "search_vault", map[string]any{"query": "sword"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	resp, ok := result.(*entities.SearchResponse)
	if !ok || len(resp.Hits) == 0 {
		t.Fatalf("expected a non-empty search response, got %+v", result)
	}
}

func TestDispatchGeneratedQueryTool(t *testing.T) {
	d := newTestDispatcher(t)
	result, err := d.Dispatch(context.Background(), "query_character", map[string]any{"id": "hero"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	payload, ok := result.(map[string]any)
	if !ok || payload["id"] != "hero" {
		t.Fatalf("expected hero node, got %+v", result)
	}
}

func TestDispatchGeneratedQueryToolMatchesTitleCaseFolded(t *testing.T) {
	d := newTestDispatcher(t)
	result, err := d.Dispatch(context.Background(), "query_character", map[string]any{"id": "the hero"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	payload, ok := result.(map[string]any)
	if !ok || payload["id"] != "hero" {
		t.Fatalf("expected hero node via case-folded title match, got %+v", result)
	}
}

func TestDispatchGeneratedListTool(t *testing.T) {
	d := newTestDispatcher(t)
	result, err := d.Dispatch(context.Background(), "list_character", map[string]any{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	payload, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", result)
	}
	if payload["totalMatched"] != 1 {
		t.Errorf("expected totalMatched=1, got %v", payload["totalMatched"])
	}
}

func TestDispatchUnknownToolErrors(t *testing.T) {
	d := newTestDispatcher(t)
	if _, err := d.Dispatch(context.Background(), "nonexistent_tool", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestDispatchRebuildIndex(t *testing.T) {
	d := newTestDispatcher(t)
	result, err := d.Dispatch(context.Background(), "rebuild_index", map[string]any{})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	stats, ok := result.(usecases.BuildStats)
	if !ok || stats.NotesScanned != 1 {
		t.Fatalf("unexpected rebuild result: %+v", result)
	}
}
