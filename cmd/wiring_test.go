package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRuntimeWiresAllComponents(t *testing.T) {
	root := t.TempDir()

	rt, err := newRuntime(context.Background(), root)
	if err != nil {
		t.Fatalf("newRuntime failed: %v", err)
	}
	defer rt.close()

	if rt.cfg == nil || rt.cfg.Template.ActiveTemplate != "worldbuilding" {
		t.Errorf("expected default config with worldbuilding template, got %+v", rt.cfg)
	}
	if rt.buildIndex() == nil {
		t.Error("expected a usable build-index usecase")
	}
	if rt.validateVault() == nil {
		t.Error("expected a usable validate-vault usecase")
	}
	if rt.fixVault() == nil {
		t.Error("expected a usable fix-vault usecase")
	}
}

// TestNewRuntimeActivatesStandaloneTemplateFile covers spec §6: a
// <vaultRoot>/template.toml file registers alongside the builtin and becomes
// active automatically, since no explicit active_template override is set in
// hivemind.toml here (the configured value is still the default).
func TestNewRuntimeActivatesStandaloneTemplateFile(t *testing.T) {
	root := t.TempDir()
	content := `id = "custom"
version = "1.0.0"
fallback_type = "note"

[[entity_types]]
name = "note"
  [[entity_types.fields]]
  name = "title"
  type = "string"
  required = true
`
	if err := os.WriteFile(filepath.Join(root, standaloneTemplateFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rt, err := newRuntime(context.Background(), root)
	if err != nil {
		t.Fatalf("newRuntime failed: %v", err)
	}
	defer rt.close()

	active, err := rt.registry.ActiveTemplate()
	if err != nil {
		t.Fatalf("ActiveTemplate failed: %v", err)
	}
	if active.ID != "custom" {
		t.Errorf("expected standalone template file to become active, got %q", active.ID)
	}
}

// TestNewRuntimeExplicitActiveTemplateOverridesStandaloneFile covers spec §6:
// when hivemind.toml explicitly activates a non-default inline template, the
// standalone template file still registers (available by id) but does not
// steal activation from the explicit choice.
func TestNewRuntimeExplicitActiveTemplateOverridesStandaloneFile(t *testing.T) {
	root := t.TempDir()
	fileContent := `id = "custom-file"
version = "1.0.0"
fallback_type = "note"

[[entity_types]]
name = "note"
  [[entity_types.fields]]
  name = "title"
  type = "string"
  required = true
`
	if err := os.WriteFile(filepath.Join(root, standaloneTemplateFileName), []byte(fileContent), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	projectFile := `[template]
active_template = "custom-inline"

[[template.templates]]
id = "custom-inline"
version = "1.0.0"
fallback_type = "note"

  [[template.templates.entity_types]]
  name = "note"
`
	if err := os.WriteFile(filepath.Join(root, "hivemind.toml"), []byte(projectFile), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rt, err := newRuntime(context.Background(), root)
	if err != nil {
		t.Fatalf("newRuntime failed: %v", err)
	}
	defer rt.close()

	active, err := rt.registry.ActiveTemplate()
	if err != nil {
		t.Fatalf("ActiveTemplate failed: %v", err)
	}
	if active.ID != "custom-inline" {
		t.Errorf("expected explicit active_template to win over the standalone file, got %q", active.ID)
	}
}
