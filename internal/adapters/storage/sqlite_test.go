package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New()
	dbPath := filepath.Join(t.TempDir(), ".hivemind", "vault.db")
	if err := e.Open(context.Background(), dbPath); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func sampleNote(id, title, body string) *entities.Note {
	return &entities.Note{
		ID:          id,
		Path:        "/vault/" + id + ".md",
		FileName:    id + ".md",
		Frontmatter: map[string]any{"id": id, "title": title, "type": "character"},
		Body:        body,
	}
}

func TestUpsertAndLoadGraph(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	note := sampleNote("hero", "The Hero", "A brave adventurer from the north.")
	if err := e.UpsertNote(ctx, note, "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	g, err := e.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if g.Size() != 1 {
		t.Fatalf("expected 1 node, got %d", g.Size())
	}
	if g.Nodes["hero"].Title != "The Hero" {
		t.Errorf("unexpected title: %s", g.Nodes["hero"].Title)
	}
}

func TestUpsertNoteIsIdempotent(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	note := sampleNote("hero", "The Hero", "first body")
	if err := e.UpsertNote(ctx, note, "character"); err != nil {
		t.Fatalf("first UpsertNote failed: %v", err)
	}
	note.Body = "second body"
	if err := e.UpsertNote(ctx, note, "character"); err != nil {
		t.Fatalf("second UpsertNote failed: %v", err)
	}

	g, err := e.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if g.Size() != 1 {
		t.Fatalf("expected 1 node after re-upsert, got %d", g.Size())
	}
	if g.Nodes["hero"].Body != "second body" {
		t.Errorf("expected updated body, got %q", g.Nodes["hero"].Body)
	}
}

func TestReplaceEdges(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	if err := e.UpsertNote(ctx, sampleNote("hero", "Hero", "body"), "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := e.UpsertNote(ctx, sampleNote("villain", "Villain", "body"), "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	edges := []*entities.Edge{{Source: "hero", Target: "villain", Type: "knows"}}
	if err := e.ReplaceEdges(ctx, "hero", edges); err != nil {
		t.Fatalf("ReplaceEdges failed: %v", err)
	}

	g, err := e.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if !g.HasEdge("hero", "villain", "knows") {
		t.Error("expected edge hero->villain[knows]")
	}

	// Replacing with an empty set removes prior edges.
	if err := e.ReplaceEdges(ctx, "hero", nil); err != nil {
		t.Fatalf("ReplaceEdges (clear) failed: %v", err)
	}
	g, err = e.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if g.HasEdge("hero", "villain", "knows") {
		t.Error("expected edge to be removed")
	}
}

func TestDeleteNote(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	if err := e.UpsertNote(ctx, sampleNote("hero", "Hero", "body"), "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := e.UpsertNote(ctx, sampleNote("villain", "Villain", "body"), "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := e.ReplaceEdges(ctx, "hero", []*entities.Edge{{Source: "hero", Target: "villain", Type: "knows"}}); err != nil {
		t.Fatalf("ReplaceEdges failed: %v", err)
	}

	if err := e.DeleteNote(ctx, "hero"); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}

	g, err := e.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if _, ok := g.Nodes["hero"]; ok {
		t.Error("expected hero node to be removed")
	}
	if g.HasEdge("hero", "villain", "knows") {
		t.Error("expected edge touching deleted node to be removed")
	}
}

func TestSearchFullText(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	if err := e.UpsertNote(ctx, sampleNote("hero", "The Hero", "A brave adventurer wields a sword."), "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := e.UpsertNote(ctx, sampleNote("villain", "The Villain", "A cunning schemer plots in shadows."), "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	scores, err := e.SearchFullText(ctx, "sword", 10)
	if err != nil {
		t.Fatalf("SearchFullText failed: %v", err)
	}
	if _, ok := scores["hero"]; !ok {
		t.Fatalf("expected hero in results, got %v", scores)
	}
	if _, ok := scores["villain"]; ok {
		t.Errorf("did not expect villain in results, got %v", scores)
	}
}

func TestStats(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	if err := e.UpsertNote(ctx, sampleNote("hero", "Hero", "body"), "character"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := e.UpsertNote(ctx, sampleNote("capital", "Capital", "body"), "location"); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := e.ReplaceEdges(ctx, "hero", []*entities.Edge{{Source: "hero", Target: "capital", Type: "located_in"}}); err != nil {
		t.Fatalf("ReplaceEdges failed: %v", err)
	}

	stats, err := e.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.NodeCount != 2 {
		t.Errorf("expected 2 nodes, got %d", stats.NodeCount)
	}
	if stats.EdgeCount != 1 {
		t.Errorf("expected 1 edge, got %d", stats.EdgeCount)
	}
	if stats.NodesByType["character"] != 1 || stats.NodesByType["location"] != 1 {
		t.Errorf("unexpected per-type counts: %v", stats.NodesByType)
	}
}
