package entities

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType is the base type of an entity-type field definition.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeEnum    FieldType = "enum"
	FieldTypeArray   FieldType = "array"
	FieldTypeDate    FieldType = "date"
	FieldTypeRecord  FieldType = "record"
)

// FieldDef is a single field definition inside an entity type's schema.
type FieldDef struct {
	Name         string    `toml:"name"`
	Type         FieldType `toml:"type"`
	Required     bool      `toml:"required"`
	Default      any       `toml:"default"`
	EnumValues   []string  `toml:"enum_values"`
	ArrayElement FieldType `toml:"array_element"`
}

// EntityType is a named schema that notes declare via `type:` in frontmatter.
type EntityType struct {
	Name   string `toml:"name"` // snake/lower
	Plural string `toml:"plural"`
	Label  string `toml:"label"`
	Fields []FieldDef `toml:"fields"`
}

// FieldByName returns the field definition with the given name, if any.
func (e *EntityType) FieldByName(name string) (FieldDef, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// RequiredFields returns the fields that must be present.
func (e *EntityType) RequiredFields() []FieldDef {
	var out []FieldDef
	for _, f := range e.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// RelationshipType is a named, directional edge kind with allow-sets
// restricting its endpoints.
type RelationshipType struct {
	ID            string   `toml:"id"` // snake_case
	SourceTypes   []string `toml:"source_types"` // explicit list, or ["any"]
	TargetTypes   []string `toml:"target_types"` // explicit list, or ["any"]
	Bidirectional bool     `toml:"bidirectional"`
	ReverseID     string   `toml:"reverse_id"`
}

const anyType = "any"

// AllowsAnySource reports whether the source allow-set is the wildcard "any".
func (r *RelationshipType) AllowsAnySource() bool {
	return len(r.SourceTypes) == 1 && r.SourceTypes[0] == anyType
}

// AllowsAnyTarget reports whether the target allow-set is the wildcard "any".
func (r *RelationshipType) AllowsAnyTarget() bool {
	return len(r.TargetTypes) == 1 && r.TargetTypes[0] == anyType
}

// MatchesSource reports whether sourceType is permitted by this relationship's
// source allow-set.
func (r *RelationshipType) MatchesSource(sourceType string) bool {
	if r.AllowsAnySource() {
		return true
	}
	return containsString(r.SourceTypes, sourceType)
}

// MatchesTarget reports whether targetType is permitted by this relationship's
// target allow-set.
func (r *RelationshipType) MatchesTarget(targetType string) bool {
	if r.AllowsAnyTarget() {
		return true
	}
	return containsString(r.TargetTypes, targetType)
}

// specificity ranks a relationship type for InferRelationshipType's
// most-specific-wins rule: explicit/explicit beats explicit/any beats any/any.
func (r *RelationshipType) specificity() int {
	score := 0
	if !r.AllowsAnySource() {
		score++
	}
	if !r.AllowsAnyTarget() {
		score++
	}
	return score
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// FolderMapping associates a glob pattern with one or more entity-type
// candidates at the template level (see FolderRule in folder_mapping.go for
// the compiled, specificity-scored form used by the Folder Mapper).
type FolderMapping struct {
	Pattern string   `toml:"pattern"`
	Types   []string `toml:"types"`
}

// Template is a named, versioned bundle of entity-type and relationship-type
// definitions, immutable once registered.
type Template struct {
	ID                string             `toml:"id"` // lowercase alphanumeric plus hyphens
	Name              string             `toml:"name"`
	Version           string             `toml:"version"` // three dot-separated non-negative integers
	EntityTypes       []EntityType       `toml:"entity_types"`
	RelationshipTypes []RelationshipType `toml:"relationship_types"`
	FolderMappings    []FolderMapping    `toml:"folder_mappings"`
	FallbackType      string             `toml:"fallback_type"`
}

var (
	templateIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	versionPattern     = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	snakeNamePattern   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Validate enforces the meta-schema rules from the entity-type/relationship
// registration contract: id/version shape, unique names, enum non-emptiness,
// and bidirectional-reverse consistency.
func (t *Template) Validate() error {
	if !templateIDPattern.MatchString(t.ID) {
		return &TemplateError{TemplateID: t.ID, Message: "id must be lowercase alphanumeric plus hyphens"}
	}
	if !versionPattern.MatchString(t.Version) {
		return &TemplateError{TemplateID: t.ID, Message: "version must be three dot-separated non-negative integers"}
	}

	seenEntity := make(map[string]bool, len(t.EntityTypes))
	for _, et := range t.EntityTypes {
		if !snakeNamePattern.MatchString(et.Name) {
			return &TemplateError{TemplateID: t.ID, Message: fmt.Sprintf("entity type name %q must be lowercase plus underscores", et.Name)}
		}
		if seenEntity[et.Name] {
			return &TemplateError{TemplateID: t.ID, Message: fmt.Sprintf("duplicate entity type %q", et.Name)}
		}
		seenEntity[et.Name] = true

		for _, f := range et.Fields {
			if f.Type == FieldTypeEnum && len(f.EnumValues) == 0 {
				return &TemplateError{TemplateID: t.ID, Message: fmt.Sprintf("entity type %q field %q: enum must list at least one value", et.Name, f.Name)}
			}
		}
	}

	seenRel := make(map[string]*RelationshipType, len(t.RelationshipTypes))
	for i := range t.RelationshipTypes {
		rt := &t.RelationshipTypes[i]
		if !snakeNamePattern.MatchString(rt.ID) {
			return &TemplateError{TemplateID: t.ID, Message: fmt.Sprintf("relationship id %q must be lowercase plus underscores", rt.ID)}
		}
		if seenRel[rt.ID] != nil {
			return &TemplateError{TemplateID: t.ID, Message: fmt.Sprintf("duplicate relationship id %q", rt.ID)}
		}
		seenRel[rt.ID] = rt
		if rt.Bidirectional && rt.ReverseID == "" {
			return &TemplateError{TemplateID: t.ID, Message: fmt.Sprintf("bidirectional relationship %q missing reverseId", rt.ID)}
		}
	}
	for _, rt := range t.RelationshipTypes {
		if rt.Bidirectional {
			if _, ok := seenRel[rt.ReverseID]; !ok {
				return &TemplateError{TemplateID: t.ID, Message: fmt.Sprintf("relationship %q reverseId %q is not a registered relationship type", rt.ID, rt.ReverseID)}
			}
		}
	}

	return nil
}

// ValidRelationships returns relationship types whose allow-sets permit the
// given (sourceType, targetType) pair, most specific first.
func (t *Template) ValidRelationships(sourceType, targetType string) []RelationshipType {
	var out []RelationshipType
	for _, rt := range t.RelationshipTypes {
		if rt.MatchesSource(sourceType) && rt.MatchesTarget(targetType) {
			out = append(out, rt)
		}
	}
	// Stable sort by descending specificity; ties keep declaration order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].specificity() > out[j-1].specificity(); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// GetEntityType looks up an entity type by name.
func (t *Template) GetEntityType(name string) (*EntityType, bool) {
	for i := range t.EntityTypes {
		if t.EntityTypes[i].Name == name {
			return &t.EntityTypes[i], true
		}
	}
	return nil, false
}

// GetRelationshipType looks up a relationship type by id.
func (t *Template) GetRelationshipType(id string) (*RelationshipType, bool) {
	for i := range t.RelationshipTypes {
		if t.RelationshipTypes[i].ID == id {
			return &t.RelationshipTypes[i], true
		}
	}
	return nil, false
}

// NormalizeEntityTypeName lowercases and trims a `type:` value the way
// frontmatter values arrive before lookup.
func NormalizeEntityTypeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
