// Package graph implements the Graph Builder: the two-pass construction of
// the in-memory Graph projection from a note set, and the incremental
// create/modify/delete handlers the vault watcher drives afterward.
package graph

import (
	"context"
	"strings"
	"sync"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

// Builder owns the in-memory Graph projection.
type Builder struct {
	mu       sync.RWMutex
	graph    *entities.Graph
	registry usecases.TemplateRegistry
	mapper   usecases.FolderMapper

	// aliases maps a normalized wikilink target (id, filename stem, or
	// title) to the node id it resolves to.
	aliases map[string]string
	// notes retains the parsed note for each admitted node, so incremental
	// handlers can re-resolve links without a full rebuild.
	notes map[string]*entities.Note
}

var _ usecases.GraphBuilder = (*Builder)(nil)

// New creates a Graph Builder backed by the given template registry and
// folder mapper (used to resolve each note's entity type).
func New(registry usecases.TemplateRegistry, mapper usecases.FolderMapper) *Builder {
	return &Builder{
		graph:    entities.NewGraph(),
		registry: registry,
		mapper:   mapper,
		aliases:  make(map[string]string),
		notes:    make(map[string]*entities.Note),
	}
}

// Build performs the two-pass initial construction: pass 1 indexes every
// admitted note as a node, pass 2 resolves wikilinks to edges.
func (b *Builder) Build(_ context.Context, notes []*entities.Note) (*entities.Graph, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.graph = entities.NewGraph()
	b.aliases = make(map[string]string)
	b.notes = make(map[string]*entities.Note)

	// Pass 1: index admitted notes as nodes.
	for _, note := range notes {
		if !note.Admitted() {
			continue
		}
		b.indexNote(note)
	}

	// Pass 2: resolve wikilinks to edges.
	for _, note := range notes {
		if !note.Admitted() {
			continue
		}
		b.resolveLinks(note)
	}

	return b.graph, nil
}

// OnCreated incorporates a newly created note into the graph, resolving its
// outgoing links and any dangling inbound links that targeted it.
func (b *Builder) OnCreated(_ context.Context, note *entities.Note) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !note.Admitted() {
		return nil
	}
	b.indexNote(note)
	b.resolveLinks(note)
	b.reresolveDanglingLinksTo(note)
	return nil
}

// OnModified re-resolves a note's node fields and outgoing edges.
func (b *Builder) OnModified(_ context.Context, note *entities.Note) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !note.Admitted() {
		return nil
	}
	b.removeAliasesFor(note.ID)
	b.graph.DeleteEdgesFromSource(note.ID)
	b.indexNote(note)
	b.resolveLinks(note)
	return nil
}

// OnDeleted removes a note's node and all edges touching it.
func (b *Builder) OnDeleted(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.graph.DeleteEdgesToTarget(id)
	b.graph.RemoveNode(id)
	b.removeAliasesFor(id)
	delete(b.notes, id)
	return nil
}

// InferRelationshipType chooses a relationship type id for an edge between
// sourceType and targetType when the link carries no explicit type
// annotation, using the active template's ValidRelationships and falling
// back to entities.RelatedFallback.
func (b *Builder) InferRelationshipType(sourceType, targetType string) string {
	candidates := b.registry.ValidRelationships(sourceType, targetType)
	if len(candidates) > 0 {
		return candidates[0]
	}
	return entities.RelatedFallback
}

// Graph returns the current in-memory projection for read access.
func (b *Builder) Graph() *entities.Graph {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.graph
}

func (b *Builder) indexNote(note *entities.Note) {
	entityType := note.EntityType()
	if entityType == "" {
		if types, _, _ := b.mapper.Resolve(note.Path); len(types) > 0 {
			entityType = types[0]
		}
	}
	node := &entities.Node{
		ID:          note.ID,
		Type:        entityType,
		Title:       note.Title(),
		Status:      note.Status(),
		Path:        note.Path,
		Frontmatter: note.Frontmatter,
		Body:        note.Body,
	}
	b.graph.UpsertNode(node)
	b.notes[note.ID] = note
	b.registerAliases(note)
}

func (b *Builder) registerAliases(note *entities.Note) {
	b.aliases[aliasKey(note.ID)] = note.ID
	b.aliases[aliasKey(stemOf(note.FileName))] = note.ID
	if title := note.Title(); title != "" {
		b.aliases[aliasKey(title)] = note.ID
	}
}

func (b *Builder) removeAliasesFor(id string) {
	for k, v := range b.aliases {
		if v == id {
			delete(b.aliases, k)
		}
	}
}

// resolveLinks adds an edge for each of note's outgoing wikilinks that
// resolves to a known node. Unresolved (dangling) links are silently
// skipped; they become real once the target note is created.
func (b *Builder) resolveLinks(note *entities.Note) {
	sourceNode, ok := b.graph.Nodes[note.ID]
	if !ok {
		return
	}
	for _, link := range note.Links {
		targetID, ok := b.aliases[aliasKey(link)]
		if !ok || targetID == note.ID {
			continue
		}
		targetNode, ok := b.graph.Nodes[targetID]
		if !ok {
			continue
		}
		b.addEdgeWithReverse(sourceNode.ID, targetNode.ID, sourceNode.Type, targetNode.Type)
	}
}

// reresolveDanglingLinksTo re-scans every other note's links for references
// to the just-created note, since those links were previously unresolvable.
func (b *Builder) reresolveDanglingLinksTo(created *entities.Note) {
	for id, note := range b.notes {
		if id == created.ID {
			continue
		}
		for _, link := range note.Links {
			if b.aliases[aliasKey(link)] != created.ID {
				continue
			}
			sourceNode, ok := b.graph.Nodes[id]
			if !ok {
				continue
			}
			targetNode := b.graph.Nodes[created.ID]
			b.addEdgeWithReverse(sourceNode.ID, targetNode.ID, sourceNode.Type, targetNode.Type)
		}
	}
}

func (b *Builder) addEdgeWithReverse(sourceID, targetID, sourceType, targetType string) {
	relType := b.InferRelationshipType(sourceType, targetType)
	b.graph.AddEdge(&entities.Edge{Source: sourceID, Target: targetID, Type: relType})

	rt, err := b.registry.GetRelationshipType(relType)
	if err != nil || !rt.Bidirectional || rt.ReverseID == "" {
		return
	}
	b.graph.AddEdge(&entities.Edge{Source: targetID, Target: sourceID, Type: rt.ReverseID})
}

func aliasKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stemOf(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i > 0 {
		return fileName[:i]
	}
	return fileName
}
