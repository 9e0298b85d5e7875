package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"relatus/internal/graph"
	"relatus/pkg/errors"
)

// ============================================================================
// Test fixtures
// ============================================================================

// memoryStore is an in-memory Store used by the engine tests. Error
// semantics mirror the Neo4j repository: missing nodes and edges return
// NotFound, FindEdge returns (nil, nil) when absent, DeleteEdge is a no-op
// for unknown ids. Listings iterate in insertion order so tests that assert
// on ordering are deterministic. All methods hold mu: import backfill saves
// nodes from several goroutines at once.
type memoryStore struct {
	mu        sync.Mutex
	nodes     map[string]*graph.Node
	edges     map[string]*graph.Edge
	nodeOrder []string
	edgeOrder []string

	saveNodeErr error
	saveEdgeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nodes: make(map[string]*graph.Node),
		edges: make(map[string]*graph.Edge),
	}
}

func (m *memoryStore) orderedNodes() []*graph.Node {
	out := make([]*graph.Node, 0, len(m.nodes))
	for _, id := range m.nodeOrder {
		if n, ok := m.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (m *memoryStore) orderedEdges() []*graph.Edge {
	out := make([]*graph.Edge, 0, len(m.edges))
	for _, id := range m.edgeOrder {
		if e, ok := m.edges[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (m *memoryStore) GetNode(ctx context.Context, id string) (*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.nodes[id]
	if !ok {
		return nil, errors.NewNodeNotFound(id)
	}
	return node, nil
}

func (m *memoryStore) ListNodesByOwner(ctx context.Context, ownerID string) ([]*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graph.Node
	for _, n := range m.orderedNodes() {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryStore) ListNodesByOwnerAndType(ctx context.Context, ownerID string, nodeType graph.NodeType) ([]*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graph.Node
	for _, n := range m.orderedNodes() {
		if n.OwnerID == ownerID && n.Type == nodeType {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryStore) FindNodes(ctx context.Context, ownerID string, pred func(*graph.Node) bool) ([]*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graph.Node
	for _, n := range m.orderedNodes() {
		if n.OwnerID == ownerID && pred(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveNode(ctx context.Context, node *graph.Node) (*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveNodeErr != nil {
		return nil, m.saveNodeErr
	}
	if _, ok := m.nodes[node.ID]; !ok {
		m.nodeOrder = append(m.nodeOrder, node.ID)
	}
	m.nodes[node.ID] = node
	return node, nil
}

func (m *memoryStore) DeleteNode(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, id)
	return nil
}

func (m *memoryStore) GetEdge(ctx context.Context, id string) (*graph.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	edge, ok := m.edges[id]
	if !ok {
		return nil, errors.NewEdgeNotFound(id)
	}
	return edge, nil
}

func (m *memoryStore) ListEdgesBySource(ctx context.Context, nodeID string) ([]*graph.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graph.Edge
	for _, e := range m.orderedEdges() {
		if e.SourceNodeID == nodeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) ListEdgesByTarget(ctx context.Context, nodeID string) ([]*graph.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graph.Edge
	for _, e := range m.orderedEdges() {
		if e.TargetNodeID == nodeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) ListEdgesByOwner(ctx context.Context, ownerID string) ([]*graph.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*graph.Edge
	for _, e := range m.orderedEdges() {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) FindEdge(ctx context.Context, sourceID, targetID string, edgeType graph.EdgeType) (*graph.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.orderedEdges() {
		if e.SourceNodeID == sourceID && e.TargetNodeID == targetID && e.Type == edgeType {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) SaveEdge(ctx context.Context, edge *graph.Edge) (*graph.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveEdgeErr != nil {
		return nil, m.saveEdgeErr
	}
	if _, ok := m.edges[edge.ID]; !ok {
		m.edgeOrder = append(m.edgeOrder, edge.ID)
	}
	m.edges[edge.ID] = edge
	return edge, nil
}

func (m *memoryStore) DeleteEdge(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.edges, id)
	return nil
}

// mockEmbedder returns a canned vector, a per-text vector, or an error.
// Import backfill calls Embed from several goroutines, so the call counter
// is mutex-guarded.
type mockEmbedder struct {
	mu      sync.Mutex
	vector  []float32
	vectors map[string][]float32
	err     error
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.vectors != nil {
		return m.vectors[text], nil
	}
	return m.vector, nil
}

// mockEnricher returns fixed company/role for any URL
type mockEnricher struct {
	company string
	role    string
	err     error
	calls   int
}

func (m *mockEnricher) Lookup(ctx context.Context, profileURL string) (string, string, error) {
	m.calls++
	if m.err != nil {
		return "", "", m.err
	}
	return m.company, m.role, nil
}

func newTestEngine() (*Engine, *memoryStore, *mockEmbedder) {
	store := newMemoryStore()
	embedder := &mockEmbedder{}
	return New(store, embedder), store, embedder
}

// Fixture counters keep generated ids unique within a test
var fixtureSeq int

func addNode(store *memoryStore, ownerID string, nodeType graph.NodeType, name string, mutate ...func(*graph.Node)) *graph.Node {
	fixtureSeq++
	node := &graph.Node{
		ID:        fmt.Sprintf("node-fixture-%d", fixtureSeq),
		OwnerID:   ownerID,
		Type:      nodeType,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	for _, fn := range mutate {
		fn(node)
	}
	store.nodes[node.ID] = node
	store.nodeOrder = append(store.nodeOrder, node.ID)
	return node
}

func addEdge(store *memoryStore, ownerID string, edgeType graph.EdgeType, sourceID, targetID string, mutate ...func(*graph.Edge)) *graph.Edge {
	fixtureSeq++
	edge := &graph.Edge{
		ID:           fmt.Sprintf("edge-fixture-%d", fixtureSeq),
		OwnerID:      ownerID,
		SourceNodeID: sourceID,
		TargetNodeID: targetID,
		Type:         edgeType,
		Weight:       1,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	for _, fn := range mutate {
		fn(edge)
	}
	store.edges[edge.ID] = edge
	store.edgeOrder = append(store.edgeOrder, edge.ID)
	return edge
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func daysAgo(n int) *time.Time {
	t := time.Now().UTC().AddDate(0, 0, -n)
	return &t
}
