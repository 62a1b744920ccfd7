package usecases

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

// FixVault applies safe, automatic corrections for a subset of validate
// findings: a note with no frontmatter at all gets a freshly generated id
// (admitting it into the graph on the next build), a missing required field
// gets its schema default (if one is declared), and a folder/type mismatch
// is corrected to the folder's expected type. Invalid enum values are
// reported but never auto-fixed, since there is no safe default to pick.
type FixVault struct {
	Parser   MarkdownParser
	Mapper   FolderMapper
	Registry TemplateRegistry
}

// NewFixVault wires a FixVault usecase from its ports.
func NewFixVault(parser MarkdownParser, mapper FolderMapper, registry TemplateRegistry) *FixVault {
	return &FixVault{Parser: parser, Mapper: mapper, Registry: registry}
}

// Run scans vaultRoot and returns the issues found. When apply is true,
// fixable issues are corrected in place and the file is rewritten to disk.
func (f *FixVault) Run(ctx context.Context, vaultRoot string, apply bool) ([]entities.Issue, error) {
	validator := &ValidateVault{Parser: f.Parser, Mapper: f.Mapper, Registry: f.Registry}

	paths, err := discoverMarkdownFiles(vaultRoot)
	if err != nil {
		return nil, err
	}

	var allIssues []entities.Issue
	for _, path := range paths {
		note, err := f.Parser.Parse(ctx, path)
		if err != nil {
			continue
		}
		issues := validator.validateNote(vaultRoot, note)
		if len(issues) == 0 {
			continue
		}
		allIssues = append(allIssues, issues...)

		if !apply {
			continue
		}
		if f.applyFixes(vaultRoot, note, issues) {
			out, err := f.Parser.Serialize(note)
			if err != nil {
				continue
			}
			_ = os.WriteFile(note.Path, out, 0o644)
		}
	}
	return allIssues, nil
}

// applyFixes mutates note.Frontmatter in place for every fixable issue.
// Returns whether anything changed.
func (f *FixVault) applyFixes(vaultRoot string, note *entities.Note, issues []entities.Issue) bool {
	changed := false
	for _, issue := range issues {
		switch issue.Kind {
		case entities.IssueMissingFrontmatter:
			if note.Frontmatter == nil {
				note.Frontmatter = map[string]any{}
			}
			id := uuid.NewString()
			note.Frontmatter["id"] = id
			note.ID = id
			note.MissingFrontmatter = false
			changed = true

		case entities.IssueFolderMismatch:
			rel, _ := filepath.Rel(vaultRoot, note.Path)
			mappedTypes, _, confidence := f.Mapper.Resolve(rel)
			if confidence != confidenceExact || len(mappedTypes) == 0 {
				continue
			}
			note.Frontmatter["type"] = mappedTypes[0]
			changed = true

		case entities.IssueMissingField:
			entityType := note.EntityType()
			et, err := f.Registry.GetEntityType(entityType)
			if err != nil {
				continue
			}
			field, ok := et.FieldByName(issue.Field)
			if !ok || field.Default == nil {
				continue
			}
			note.Frontmatter[issue.Field] = field.Default
			changed = true
		}
	}
	return changed
}
