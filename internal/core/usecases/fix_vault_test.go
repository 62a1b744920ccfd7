package usecases

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hivemind-vault/hivemind/internal/adapters/foldermap"
	"github.com/hivemind-vault/hivemind/internal/adapters/markdown"
	"github.com/hivemind-vault/hivemind/internal/adapters/template"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

func newFixVault(t *testing.T) *FixVault {
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
	return NewFixVault(markdown.New(), mapper, reg)
}

func TestFixVaultDryRunReportsWithoutWriting(t *testing.T) {
	f := newFixVault(t)
	root := t.TempDir()
	path := filepath.Join(root, "characters", "sunspire.md")
	writeVaultFile(t, root, "characters/sunspire.md", "---\nid: sunspire\ntitle: Sunspire\ntype: location\n---\nCapital city.\n")

	issues, err := f.Run(context.Background(), root, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(issues) == 0 {
		t.Fatal("expected folder_mismatch issue in dry run")
	}

	before, _ := os.ReadFile(path)
	if string(before) != "---\nid: sunspire\ntitle: Sunspire\ntype: location\n---\nCapital city.\n" {
		t.Error("dry run must not modify the file on disk")
	}
}

func TestFixVaultAppliesFolderMismatchCorrection(t *testing.T) {
	f := newFixVault(t)
	root := t.TempDir()
	path := filepath.Join(root, "characters", "sunspire.md")
	writeVaultFile(t, root, "characters/sunspire.md", "---\nid: sunspire\ntitle: Sunspire\ntype: location\n---\nCapital city.\n")

	if _, err := f.Run(context.Background(), root, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := markdown.New()
	note, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if note.EntityType() != "character" {
		t.Errorf("expected type corrected to character, got %q", note.EntityType())
	}
}

func TestFixVaultAppliesGeneratedIDForMissingFrontmatter(t *testing.T) {
	f := newFixVault(t)
	root := t.TempDir()
	path := filepath.Join(root, "scratch.md")
	writeVaultFile(t, root, "scratch.md", "# Just a heading\n\nNo frontmatter here.\n")

	if _, err := f.Run(context.Background(), root, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := markdown.New()
	note, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if note.ID == "" {
		t.Error("expected a generated id to be written to frontmatter")
	}
}

func TestFixVaultAppliesMissingFieldDefault(t *testing.T) {
	f := newFixVault(t)
	reg := template.NewRegistry()
	ctx := context.Background()
	tmpl := &entities.Template{
		ID: "defaulted", Version: "1.0.0", FallbackType: "note",
		EntityTypes: []entities.EntityType{{
			Name: "note",
			Fields: []entities.FieldDef{
				{Name: "title", Type: entities.FieldTypeString, Required: true},
				{Name: "status", Type: entities.FieldTypeEnum, Required: true, EnumValues: []string{"draft", "canon"}, Default: "draft"},
			},
		}},
	}
	_ = reg.Register(ctx, tmpl)
	_ = reg.Activate(ctx, tmpl.ID)
	f.Registry = reg
	f.Mapper = foldermap.New(reg)

	root := t.TempDir()
	path := filepath.Join(root, "note.md")
	writeVaultFile(t, root, "note.md", "---\nid: n1\ntitle: Note One\ntype: note\n---\nBody.\n")

	if _, err := f.Run(ctx, root, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := markdown.New()
	note, err := p.Parse(ctx, path)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if note.Status() != "draft" {
		t.Errorf("expected default status draft applied, got %q", note.Status())
	}
}
