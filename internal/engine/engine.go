package engine

import (
	"context"

	"go.uber.org/zap"

	"relatus/internal/graph"
	"relatus/pkg/logger"
)

// Store is the persistence boundary the engine operates over. The Neo4j
// repository implements it in production; tests use an in-memory fake.
type Store interface {
	GetNode(ctx context.Context, id string) (*graph.Node, error)
	ListNodesByOwner(ctx context.Context, ownerID string) ([]*graph.Node, error)
	ListNodesByOwnerAndType(ctx context.Context, ownerID string, nodeType graph.NodeType) ([]*graph.Node, error)
	FindNodes(ctx context.Context, ownerID string, pred func(*graph.Node) bool) ([]*graph.Node, error)
	SaveNode(ctx context.Context, node *graph.Node) (*graph.Node, error)
	DeleteNode(ctx context.Context, id string) error

	GetEdge(ctx context.Context, id string) (*graph.Edge, error)
	ListEdgesBySource(ctx context.Context, nodeID string) ([]*graph.Edge, error)
	ListEdgesByTarget(ctx context.Context, nodeID string) ([]*graph.Edge, error)
	ListEdgesByOwner(ctx context.Context, ownerID string) ([]*graph.Edge, error)
	FindEdge(ctx context.Context, sourceID, targetID string, edgeType graph.EdgeType) (*graph.Edge, error)
	SaveEdge(ctx context.Context, edge *graph.Edge) (*graph.Edge, error)
	DeleteEdge(ctx context.Context, id string) error
}

// Embedder turns free text into a fixed-length vector. A (nil, nil) return
// means "no embedding available" and is never treated as a hard failure.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Enricher backfills person fields from a public profile URL during import
type Enricher interface {
	Lookup(ctx context.Context, profileURL string) (company, role string, err error)
}

// Engine is the relationship graph intelligence core. It is stateless
// between calls; every operation re-fetches the subgraph it needs.
type Engine struct {
	store    Store
	embedder Embedder
	enricher Enricher // optional
	logger   *zap.Logger
}

// New creates an engine over a store and an embedding provider
func New(store Store, embedder Embedder) *Engine {
	return &Engine{
		store:    store,
		embedder: embedder,
		logger:   logger.Named("engine"),
	}
}

// SetEnricher enables profile enrichment during bulk import
func (e *Engine) SetEnricher(enricher Enricher) {
	e.enricher = enricher
}
