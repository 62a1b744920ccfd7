// Package entities defines the core domain models for hivemind.
//
// # Thread Safety
//
// Graph is NOT thread-safe by design. It is built and mutated exclusively by
// the Graph Builder under an internal write lock; readers (Search Engine, MCP
// tool handlers) read it under a read lock held by the caller. See
// internal/core/graph for the owning builder.
//
// # Graph Lifecycle
//
// The projection is a derived cache of the persistent store (Storage Engine);
// truth lives in storage. On any write error the projection is invalidated
// and rebuilt lazily from storage.
package entities

// RelatedFallback is the last-resort relationship type id used when no
// template is active, or when no more specific relationship type applies.
const RelatedFallback = "related"

// Node is a graph vertex projected from an admitted Note.
type Node struct {
	ID          string
	Type        string
	Title       string
	Status      string
	Path        string
	Frontmatter map[string]any
	Body        string
}

// EdgeKey content-addresses an edge on the (source, target, type) triple for
// dedup purposes.
type EdgeKey struct {
	Source string
	Target string
	Type   string
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	Source     string
	Target     string
	Type       string
	Properties map[string]any
}

func (e Edge) key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Type: e.Type}
}

// Graph is the in-memory projection: a node table, an edge table, and an
// adjacency map (node id -> set of neighbor ids) for 1-hop expansion.
type Graph struct {
	Nodes map[string]*Node
	Edges map[EdgeKey]*Edge

	// outgoing/incoming index source node id -> edges, for O(1) traversal.
	outgoing map[string][]*Edge
	incoming map[string][]*Edge
	// adjacency is the undirected 1-hop neighbor set used by Search Engine
	// graph-proximity expansion.
	adjacency map[string]map[string]bool
}

// NewGraph creates an empty graph projection.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[string]*Node),
		Edges:     make(map[EdgeKey]*Edge),
		outgoing:  make(map[string][]*Edge),
		incoming:  make(map[string][]*Edge),
		adjacency: make(map[string]map[string]bool),
	}
}

// UpsertNode inserts or replaces a node by id.
func (g *Graph) UpsertNode(n *Node) {
	g.Nodes[n.ID] = n
}

// RemoveNode deletes a node and all edges where it is the source. Edges
// pointing into the deleted node are left for the caller to reconcile (the
// Graph Builder's delete handling removes them explicitly per spec).
func (g *Graph) RemoveNode(id string) {
	delete(g.Nodes, id)
	g.DeleteEdgesFromSource(id)
}

// AddEdge inserts an edge if its (source, target, type) triple is not
// already present. Returns false if it was a no-op duplicate.
func (g *Graph) AddEdge(e *Edge) bool {
	k := e.key()
	if _, exists := g.Edges[k]; exists {
		return false
	}
	g.Edges[k] = e
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	g.incoming[e.Target] = append(g.incoming[e.Target], e)
	g.link(e.Source, e.Target)
	return true
}

// HasEdge reports whether an edge with this exact triple exists.
func (g *Graph) HasEdge(source, target, relType string) bool {
	_, ok := g.Edges[EdgeKey{Source: source, Target: target, Type: relType}]
	return ok
}

// DeleteEdgesFromSource removes every edge whose source equals id (not
// edges pointing into id, which belong to other nodes' outbound sets).
func (g *Graph) DeleteEdgesFromSource(id string) {
	edges := g.outgoing[id]
	delete(g.outgoing, id)
	for _, e := range edges {
		delete(g.Edges, e.key())
		g.incoming[e.Target] = removeEdge(g.incoming[e.Target], e)
		g.unlink(e.Source, e.Target)
	}
}

// DeleteEdgesToTarget removes every edge whose target equals id; used when a
// node is deleted and inbound edges become dangling.
func (g *Graph) DeleteEdgesToTarget(id string) {
	for _, e := range g.incoming[id] {
		delete(g.Edges, e.key())
		g.outgoing[e.Source] = removeEdge(g.outgoing[e.Source], e)
		g.unlink(e.Source, e.Target)
	}
	delete(g.incoming, id)
}

// OutgoingEdges returns edges whose source is id.
func (g *Graph) OutgoingEdges(id string) []*Edge {
	return g.outgoing[id]
}

// IncomingEdges returns edges whose target is id.
func (g *Graph) IncomingEdges(id string) []*Edge {
	return g.incoming[id]
}

// Neighbors returns the 1-hop neighbor ids of id, regardless of edge
// direction, for graph-proximity search expansion.
func (g *Graph) Neighbors(id string) []string {
	set := g.adjacency[id]
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}

func (g *Graph) link(a, b string) {
	if g.adjacency[a] == nil {
		g.adjacency[a] = make(map[string]bool)
	}
	if g.adjacency[b] == nil {
		g.adjacency[b] = make(map[string]bool)
	}
	g.adjacency[a][b] = true
	g.adjacency[b][a] = true
}

func (g *Graph) unlink(a, b string) {
	// Only drop the adjacency entry if no edge in either direction remains.
	if g.HasAnyEdgeBetween(a, b) {
		return
	}
	delete(g.adjacency[a], b)
	delete(g.adjacency[b], a)
}

// HasAnyEdgeBetween reports whether any edge exists between a and b in
// either direction.
func (g *Graph) HasAnyEdgeBetween(a, b string) bool {
	for _, e := range g.outgoing[a] {
		if e.Target == b {
			return true
		}
	}
	for _, e := range g.outgoing[b] {
		if e.Target == a {
			return true
		}
	}
	return false
}

// Size returns the number of nodes in the graph.
func (g *Graph) Size() int { return len(g.Nodes) }

// EdgeCount returns the total number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

func removeEdge(edges []*Edge, target *Edge) []*Edge {
	out := edges[:0]
	for _, e := range edges {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}
