package foldermap

import (
	"context"
	"testing"

	"github.com/hivemind-vault/hivemind/internal/adapters/template"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	reg := template.NewRegistry()
	tmpl := template.BuiltinWorldbuilding()
	ctx := context.Background()
	if err := reg.Register(ctx, tmpl); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Activate(ctx, tmpl.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	return New(reg)
}

func TestResolveExactMatch(t *testing.T) {
	m := newTestMapper(t)
	types, pattern, confidence := m.Resolve("characters/aria.md")
	if len(types) != 1 || types[0] != "character" {
		t.Errorf("expected [character], got %v", types)
	}
	if pattern != "characters/**" {
		t.Errorf("expected matched pattern characters/**, got %q", pattern)
	}
	if confidence != ConfidenceExact {
		t.Errorf("expected exact confidence, got %q", confidence)
	}
}

func TestResolveNestedMatch(t *testing.T) {
	m := newTestMapper(t)
	types, _, confidence := m.Resolve("locations/capitals/sunspire.md")
	if len(types) != 1 || types[0] != "location" {
		t.Errorf("expected [location], got %v", types)
	}
	if confidence != ConfidenceExact {
		t.Errorf("expected exact confidence, got %q", confidence)
	}
}

func TestResolveFallsBackWhenNoRuleMatches(t *testing.T) {
	m := newTestMapper(t)
	types, pattern, confidence := m.Resolve("journal/2026-07-31.md")
	if confidence != ConfidenceFallback {
		t.Errorf("expected fallback confidence, got %q", confidence)
	}
	if len(types) != 1 || types[0] != "note" {
		t.Errorf("expected [note] fallback type, got %v", types)
	}
	if pattern != "" {
		t.Errorf("expected empty matched pattern on fallback, got %q", pattern)
	}
}

func TestResolveNormalizesLeadingSlash(t *testing.T) {
	m := newTestMapper(t)
	types, _, _ := m.Resolve("/characters/aria.md")
	if len(types) != 1 || types[0] != "character" {
		t.Errorf("expected [character], got %v", types)
	}
}

func TestRulesOrderedBySpecificity(t *testing.T) {
	m := newTestMapper(t)
	rules := m.Rules()
	for i := 1; i < len(rules); i++ {
		if rules[i].Specificity > rules[i-1].Specificity {
			t.Fatalf("rules not sorted: %v", rules)
		}
	}
}

// TestResolveAmbiguousWhenSingleRuleNamesMultipleTypes covers spec scenario 4:
// a rule's own multi-type list is what makes a match ambiguous, not multiple
// rules tying for top specificity. "**/People/Heroes/**" is more specific
// than "**/People/**", so vault/People/Heroes/arthur.md must match the former
// and report both of its candidate types.
func TestResolveAmbiguousWhenSingleRuleNamesMultipleTypes(t *testing.T) {
	reg := template.NewRegistry()
	tmpl := template.BuiltinWorldbuilding()
	tmpl.FolderMappings = []entities.FolderMapping{
		{Pattern: "**/People/**", Types: []string{"character"}},
		{Pattern: "**/People/Heroes/**", Types: []string{"character", "protagonist"}},
	}
	ctx := context.Background()
	if err := reg.Register(ctx, tmpl); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Activate(ctx, tmpl.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	m := New(reg)

	types, pattern, confidence := m.Resolve("vault/People/Heroes/arthur.md")
	if confidence != ConfidenceAmbiguous {
		t.Errorf("expected ambiguous confidence, got %q", confidence)
	}
	if pattern != "**/People/Heroes/**" {
		t.Errorf("expected matched pattern **/People/Heroes/**, got %q", pattern)
	}
	if len(types) != 2 || types[0] != "character" || types[1] != "protagonist" {
		t.Errorf("expected [character protagonist], got %v", types)
	}
}
