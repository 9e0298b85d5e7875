package engine

import (
	"context"
	"sort"
	"strings"

	"relatus/internal/graph"
)

const defaultSearchLimit = 10

// SearchHit is a node ranked against a free-text query
type SearchHit struct {
	Node  *graph.Node `json:"node"`
	Score float64     `json:"score"`
}

// SemanticSearch embeds a free-text query and ranks the owner's nodes by
// cosine similarity. Nodes without embeddings never match; an unavailable
// provider degrades to an empty result, not an error.
func (e *Engine) SemanticSearch(ctx context.Context, ownerID, query string, limit int) ([]SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return []SearchHit{}, nil
	}
	if limit < 1 {
		limit = defaultSearchLimit
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil || len(queryVec) == 0 {
		return []SearchHit{}, nil
	}

	nodes, err := e.store.ListNodesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	hits := []SearchHit{}
	for _, node := range nodes {
		if !node.HasEmbedding() {
			continue
		}
		score := CosineSimilarity(queryVec, node.Embedding)
		if score <= 0 {
			continue
		}
		hits = append(hits, SearchHit{Node: node, Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
