package usecases

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
)

// confidenceExact mirrors foldermap.ConfidenceExact; duplicated here rather
// than imported to avoid a usecases -> adapters dependency.
const confidenceExact = "exact"

// ValidateVault scans every note in a vault and reports meta-schema
// violations: missing frontmatter, missing required fields, invalid enum
// values, and folder/type mismatches.
type ValidateVault struct {
	Parser   MarkdownParser
	Mapper   FolderMapper
	Registry TemplateRegistry
}

// NewValidateVault wires a ValidateVault usecase from its ports.
func NewValidateVault(parser MarkdownParser, mapper FolderMapper, registry TemplateRegistry) *ValidateVault {
	return &ValidateVault{Parser: parser, Mapper: mapper, Registry: registry}
}

// Run scans vaultRoot and returns every issue found, in file-discovery order.
func (v *ValidateVault) Run(ctx context.Context, vaultRoot string) ([]entities.Issue, error) {
	paths, err := discoverMarkdownFiles(vaultRoot)
	if err != nil {
		return nil, err
	}

	var issues []entities.Issue
	for _, path := range paths {
		note, err := v.Parser.Parse(ctx, path)
		if err != nil {
			issues = append(issues, entities.Issue{
				Kind:    entities.IssueInvalidType,
				Path:    path,
				Message: fmt.Sprintf("could not parse file: %v", err),
			})
			continue
		}
		issues = append(issues, v.validateNote(vaultRoot, note)...)
	}
	return issues, nil
}

func (v *ValidateVault) validateNote(vaultRoot string, note *entities.Note) []entities.Issue {
	if note.MissingFrontmatter {
		return []entities.Issue{{
			Kind:    entities.IssueMissingFrontmatter,
			Path:    note.Path,
			Message: "no YAML frontmatter block found",
		}}
	}

	var issues []entities.Issue
	rel, _ := filepath.Rel(vaultRoot, note.Path)

	entityType := note.EntityType()
	mappedTypes, _, confidence := v.Mapper.Resolve(rel)
	if entityType == "" {
		if len(mappedTypes) > 0 {
			entityType = mappedTypes[0]
		}
	} else if confidence == confidenceExact && len(mappedTypes) > 0 && !containsString(mappedTypes, entityType) {
		issues = append(issues, entities.Issue{
			Kind:    entities.IssueFolderMismatch,
			Path:    note.Path,
			Field:   "type",
			Message: fmt.Sprintf("folder location expects type %q but note declares %q", mappedTypes[0], entityType),
		})
	}

	et, err := v.Registry.GetEntityType(entityType)
	if err != nil {
		issues = append(issues, entities.Issue{
			Kind:    entities.IssueInvalidType,
			Path:    note.Path,
			Field:   "type",
			Message: fmt.Sprintf("unknown entity type %q", entityType),
		})
		return issues
	}

	for _, f := range et.RequiredFields() {
		if _, ok := note.Frontmatter[f.Name]; !ok {
			issues = append(issues, entities.Issue{
				Kind:    entities.IssueMissingField,
				Path:    note.Path,
				Field:   f.Name,
				Message: "required field is missing",
			})
		}
	}

	for _, f := range et.Fields {
		if f.Type != entities.FieldTypeEnum {
			continue
		}
		raw, ok := note.Frontmatter[f.Name]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok || !containsString(f.EnumValues, s) {
			issues = append(issues, entities.Issue{
				Kind:    entities.IssueInvalidEnum,
				Path:    note.Path,
				Field:   f.Name,
				Message: fmt.Sprintf("value %v is not one of %v", raw, f.EnumValues),
			})
		}
	}

	return issues
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
