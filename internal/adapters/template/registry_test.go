package template

import (
	"context"
	"testing"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

func TestBuiltinWorldbuildingValidates(t *testing.T) {
	tmpl := BuiltinWorldbuilding()
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("builtin template failed validation: %v", err)
	}
	if tmpl.ID != "worldbuilding" {
		t.Errorf("expected id worldbuilding, got %q", tmpl.ID)
	}
	if len(tmpl.EntityTypes) == 0 {
		t.Error("expected at least one entity type")
	}
}

func TestRegisterAndActivate(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	tmpl := BuiltinWorldbuilding()

	if err := r.Register(ctx, tmpl); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Activate(ctx, tmpl.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	active, err := r.ActiveTemplate()
	if err != nil {
		t.Fatalf("ActiveTemplate failed: %v", err)
	}
	if active.ID != tmpl.ID {
		t.Errorf("expected active template %q, got %q", tmpl.ID, active.ID)
	}
}

func TestActivateUnregisteredTemplate(t *testing.T) {
	r := NewRegistry()
	if err := r.Activate(context.Background(), "nonexistent"); err == nil {
		t.Error("expected error activating unregistered template")
	}
}

func TestGetEntityTypeNotFound(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	tmpl := BuiltinWorldbuilding()
	_ = r.Register(ctx, tmpl)
	_ = r.Activate(ctx, tmpl.ID)

	if _, err := r.GetEntityType("spaceship"); err == nil {
		t.Error("expected not-found error for unregistered entity type")
	}
	if et, err := r.GetEntityType("character"); err != nil {
		t.Fatalf("GetEntityType failed: %v", err)
	} else if et.Name != "character" {
		t.Errorf("expected character, got %q", et.Name)
	}
}

func TestValidRelationshipsOrderedBySpecificity(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	tmpl := BuiltinWorldbuilding()
	_ = r.Register(ctx, tmpl)
	_ = r.Activate(ctx, tmpl.ID)

	ids := r.ValidRelationships("character", "character")
	if len(ids) == 0 || ids[0] != "knows" {
		t.Errorf("expected 'knows' to rank first for character-character, got %v", ids)
	}
}

func TestNoActiveTemplateErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ActiveTemplate(); err == nil {
		t.Error("expected error with no active template")
	}
	if _, err := r.GetEntityType("character"); err == nil {
		t.Error("expected error with no active template")
	}
}

func TestRegisterRejectsInvalidTemplate(t *testing.T) {
	r := NewRegistry()
	bad := &entities.Template{ID: "Bad ID", Version: "1.0.0"}
	if err := r.Register(context.Background(), bad); err == nil {
		t.Error("expected validation error for malformed template id")
	}
}
