// Package foldermap implements the Folder Mapper: resolving a vault-relative
// note path to the entity type it should be treated as, via the active
// template's folder mappings. The mappings are compiled and
// specificity-scored on every Resolve call; compiled rules are not cached.
package foldermap

import (
	"path/filepath"
	"strings"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

const (
	ConfidenceExact     = "exact"
	ConfidenceAmbiguous = "ambiguous"
	ConfidenceFallback  = "fallback"
	ConfidenceNone      = "none"
)

// Mapper resolves paths against a live TemplateRegistry's active template.
type Mapper struct {
	registry usecases.TemplateRegistry
}

var _ usecases.FolderMapper = (*Mapper)(nil)

// New creates a Folder Mapper backed by the given template registry.
func New(registry usecases.TemplateRegistry) *Mapper {
	return &Mapper{registry: registry}
}

// Resolve tests rules in descending-specificity order (as returned by
// Rules) and returns the first match's candidate types and pattern.
// Ambiguity is a property of the matched rule itself — two or more types
// declared on the same folder mapping — not of multiple rules tying for
// top specificity.
func (m *Mapper) Resolve(path string) ([]string, string, string) {
	rules := m.Rules()
	rel := normalizePath(path)

	for _, rule := range rules {
		if !entities.NewGlobMatcher(rule.Pattern).Match(rel) {
			continue
		}
		if len(rule.Types) > 1 {
			return rule.Types, rule.Pattern, ConfidenceAmbiguous
		}
		return rule.Types, rule.Pattern, ConfidenceExact
	}

	return m.fallback()
}

func (m *Mapper) fallback() ([]string, string, string) {
	tmpl, err := m.registry.ActiveTemplate()
	if err != nil || tmpl == nil || tmpl.FallbackType == "" {
		return nil, "", ConfidenceNone
	}
	return []string{tmpl.FallbackType}, "", ConfidenceFallback
}

// Rules returns the compiled, specificity-scored folder rules currently in
// effect, highest specificity first.
func (m *Mapper) Rules() []entities.FolderRule {
	mappings := m.registry.GetFolderMappings()
	rules := make([]entities.FolderRule, 0, len(mappings))
	for _, fm := range mappings {
		rules = append(rules, entities.CompileFolderRule(fm))
	}
	for i := 1; i < len(rules); i++ {
		for j := i; j > 0 && rules[j].Specificity > rules[j-1].Specificity; j-- {
			rules[j], rules[j-1] = rules[j-1], rules[j]
		}
	}
	return rules
}

// normalizePath converts to forward slashes and strips any leading slash so
// patterns like "characters/**" match both "characters/foo.md" and an
// absolute path passed in by mistake.
func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	return strings.TrimPrefix(p, "/")
}
