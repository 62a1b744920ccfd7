// Package template implements the Template Registry: loading, validating,
// and serving the active template's meta-schema.
package template

import (
	_ "embed"
	"context"
	"sync"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
	"github.com/pelletier/go-toml/v2"
)

//go:embed worldbuilding.toml
var builtinWorldbuildingTOML []byte

// BuiltinWorldbuilding parses and returns the built-in default template.
// Panics on malformed embedded TOML, which would be a build-time defect.
func BuiltinWorldbuilding() *entities.Template {
	var t entities.Template
	if err := toml.Unmarshal(builtinWorldbuildingTOML, &t); err != nil {
		panic("template: malformed embedded worldbuilding.toml: " + err.Error())
	}
	return &t
}

// Registry is the in-memory Template Registry: registered templates plus
// which one is currently active.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*entities.Template
	activeID  string
}

var _ usecases.TemplateRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*entities.Template)}
}

// Register validates and adds a template to the registry.
func (r *Registry) Register(_ context.Context, tmpl *entities.Template) error {
	if err := tmpl.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tmpl.ID] = tmpl
	return nil
}

// Activate makes the named, already-registered template active.
func (r *Registry) Activate(_ context.Context, templateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[templateID]; !ok {
		return &entities.TemplateError{TemplateID: templateID, Message: "template is not registered"}
	}
	r.activeID = templateID
	return nil
}

func (r *Registry) active() (*entities.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeID == "" {
		return nil, &entities.TemplateError{Message: "no template is active"}
	}
	return r.templates[r.activeID], nil
}

// ActiveTemplate returns the currently active template.
func (r *Registry) ActiveTemplate() (*entities.Template, error) {
	return r.active()
}

// GetEntityType looks up an entity type by name in the active template.
func (r *Registry) GetEntityType(name string) (*entities.EntityType, error) {
	t, err := r.active()
	if err != nil {
		return nil, err
	}
	et, ok := t.GetEntityType(entities.NormalizeEntityTypeName(name))
	if !ok {
		return nil, &entities.NotFoundError{Entity: "entity type", ID: name}
	}
	return et, nil
}

// GetEntityTypes returns all entity types of the active template.
func (r *Registry) GetEntityTypes() []*entities.EntityType {
	t, err := r.active()
	if err != nil {
		return nil
	}
	out := make([]*entities.EntityType, len(t.EntityTypes))
	for i := range t.EntityTypes {
		out[i] = &t.EntityTypes[i]
	}
	return out
}

// GetRelationshipType looks up a relationship type by id.
func (r *Registry) GetRelationshipType(id string) (*entities.RelationshipType, error) {
	t, err := r.active()
	if err != nil {
		return nil, err
	}
	rt, ok := t.GetRelationshipType(id)
	if !ok {
		return nil, &entities.NotFoundError{Entity: "relationship type", ID: id}
	}
	return rt, nil
}

// GetRelationshipTypes returns all relationship types of the active template.
func (r *Registry) GetRelationshipTypes() []*entities.RelationshipType {
	t, err := r.active()
	if err != nil {
		return nil
	}
	out := make([]*entities.RelationshipType, len(t.RelationshipTypes))
	for i := range t.RelationshipTypes {
		out[i] = &t.RelationshipTypes[i]
	}
	return out
}

// GetFolderMappings returns the active template's raw folder mappings.
func (r *Registry) GetFolderMappings() []entities.FolderMapping {
	t, err := r.active()
	if err != nil {
		return nil
	}
	return t.FolderMappings
}

// ValidRelationships returns relationship type ids for (sourceType, targetType),
// most specific first.
func (r *Registry) ValidRelationships(sourceType, targetType string) []string {
	t, err := r.active()
	if err != nil {
		return nil
	}
	rels := t.ValidRelationships(sourceType, targetType)
	ids := make([]string, len(rels))
	for i, rt := range rels {
		ids[i] = rt.ID
	}
	return ids
}

// GetSchema returns the active template verbatim.
func (r *Registry) GetSchema() (*entities.Template, error) {
	return r.active()
}
