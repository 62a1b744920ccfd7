// Package search implements the Search Engine: fusing keyword, graph
// proximity, and (when wired) vector relevance signals into a single
// ranked result set.
package search

import (
	"context"
	"sort"

	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

// neighborDamping discounts a node's graph-proximity score relative to the
// keyword score of the neighbor it borrows relevance from: a node one hop
// away from a strong keyword hit is relevant, but less so than the hit
// itself.
const neighborDamping = 0.5

// Engine implements usecases.SearchEngine over a Graph Builder's live
// projection and a Storage Engine's full-text index.
//
// No vector index is wired (indexing.enable_vector_search defaults false,
// and no embedding adapter is registered), so VectorWeight is always
// redistributed into the keyword and graph weights proportionally rather
// than left idle — see redistributeWeights.
type Engine struct {
	storage usecases.StorageEngine
	builder usecases.GraphBuilder
}

var _ usecases.SearchEngine = (*Engine)(nil)

// New creates a Search Engine over the given storage and graph builder.
func New(storage usecases.StorageEngine, builder usecases.GraphBuilder) *Engine {
	return &Engine{storage: storage, builder: builder}
}

// Search runs the hybrid ranking algorithm and returns the filtered,
// limited, score-sorted result set.
func (e *Engine) Search(ctx context.Context, req *entities.SearchRequest) (*entities.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	keywordScores := map[string]float64{}
	if req.Query != "" {
		scores, err := e.storage.SearchFullText(ctx, req.Query, internalFullTextLimit)
		if err != nil {
			return nil, err
		}
		keywordScores = scores
	}

	g := e.builder.Graph()
	graphScores := computeGraphScores(g, keywordScores)
	keywordWeight, graphWeight := redistributeWeights(req)

	hits := make([]entities.SearchHit, 0, len(g.Nodes))
	for id, node := range g.Nodes {
		if !matchesFilters(g, node, id, req.Filters) {
			continue
		}
		ks := keywordScores[id]
		gs := graphScores[id]
		if ks == 0 && gs == 0 {
			continue
		}
		hits = append(hits, entities.SearchHit{
			NodeID:       id,
			Score:        keywordWeight*ks + graphWeight*gs,
			KeywordScore: ks,
			GraphScore:   gs,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].NodeID < hits[j].NodeID
	})

	total := len(hits)
	if total > req.Limit {
		hits = hits[:req.Limit]
	}
	return &entities.SearchResponse{Hits: hits, TotalMatched: total}, nil
}

// internalFullTextLimit over-fetches keyword hits beyond the caller's
// requested page so graph-proximity expansion has enough seeds to work
// with before the final limit is applied.
const internalFullTextLimit = 200

// redistributeWeights folds VectorWeight (gamma) into keyword and graph
// weights (alpha, beta) in proportion to their relative share, since no
// vector signal is ever produced here. Splits evenly if both are zero.
func redistributeWeights(req *entities.SearchRequest) (keyword, graph float64) {
	alpha, beta, gamma := req.KeywordWeight, req.GraphWeight, req.VectorWeight
	if gamma == 0 {
		return alpha, beta
	}
	denom := alpha + beta
	if denom == 0 {
		return gamma / 2, gamma / 2
	}
	return alpha + gamma*(alpha/denom), beta + gamma*(beta/denom)
}

// computeGraphScores assigns each node the damped keyword score of its
// strongest 1-hop neighbor, so notes adjacent to a strong keyword hit rank
// above unrelated notes even without matching the query themselves.
func computeGraphScores(g *entities.Graph, keywordScores map[string]float64) map[string]float64 {
	scores := make(map[string]float64, len(g.Nodes))
	for id := range g.Nodes {
		best := 0.0
		for _, neighbor := range g.Neighbors(id) {
			if ks := keywordScores[neighbor]; ks > best {
				best = ks
			}
		}
		if best > 0 {
			scores[id] = best * neighborDamping
		}
	}
	return scores
}

func matchesFilters(g *entities.Graph, node *entities.Node, id string, f entities.SearchFilters) bool {
	if f.Type != "" && node.Type != f.Type {
		return false
	}
	if f.Status != "" && node.Status != f.Status {
		return false
	}
	if f.RelationshipType != "" && !hasEdgeOfType(g, id, f.RelationshipType) {
		return false
	}
	if f.Neighbor != "" && !isNeighbor(g, id, f.Neighbor) {
		return false
	}
	return true
}

func hasEdgeOfType(g *entities.Graph, id, relType string) bool {
	for _, e := range g.OutgoingEdges(id) {
		if e.Type == relType {
			return true
		}
	}
	for _, e := range g.IncomingEdges(id) {
		if e.Type == relType {
			return true
		}
	}
	return false
}

func isNeighbor(g *entities.Graph, id, neighborID string) bool {
	for _, n := range g.Neighbors(neighborID) {
		if n == id {
			return true
		}
	}
	return false
}
