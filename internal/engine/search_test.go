package engine

import (
	"context"
	"testing"

	"relatus/internal/graph"
	"relatus/pkg/errors"
)

func TestSemanticSearch_RanksOwnerNodes(t *testing.T) {
	eng, store, embedder := newTestEngine()
	embedder.vector = []float32{1, 0}

	near := addNode(store, "user-1", graph.NodeTypePerson, "Near", func(n *graph.Node) {
		n.Embedding = []float32{0.9, 0.1}
	})
	far := addNode(store, "user-1", graph.NodeTypeGoal, "Far", func(n *graph.Node) {
		n.Embedding = []float32{0.1, 0.9}
	})
	addNode(store, "user-1", graph.NodeTypePerson, "Unembedded")
	addNode(store, "user-2", graph.NodeTypePerson, "Foreign", func(n *graph.Node) {
		n.Embedding = []float32{1, 0}
	})

	hits, err := eng.SemanticSearch(context.Background(), "user-1", "payments expert", 10)
	if err != nil {
		t.Fatalf("SemanticSearch failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].Node.ID != near.ID || hits[1].Node.ID != far.ID {
		t.Errorf("order = [%s, %s], want [%s, %s]",
			hits[0].Node.ID, hits[1].Node.ID, near.ID, far.ID)
	}
}

func TestSemanticSearch_BlankQuery(t *testing.T) {
	eng, _, embedder := newTestEngine()

	hits, err := eng.SemanticSearch(context.Background(), "user-1", "   ", 10)
	if err != nil {
		t.Fatalf("SemanticSearch failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
	if embedder.calls != 0 {
		t.Error("blank query should not reach the embedder")
	}
}

func TestSemanticSearch_ProviderFailureDegrades(t *testing.T) {
	eng, store, embedder := newTestEngine()
	embedder.err = errors.NewEmbeddingFailed("test-model", context.DeadlineExceeded)
	addNode(store, "user-1", graph.NodeTypePerson, "Alice", func(n *graph.Node) {
		n.Embedding = []float32{1, 0}
	})

	hits, err := eng.SemanticSearch(context.Background(), "user-1", "payments", 10)
	if err != nil {
		t.Fatalf("provider failure should degrade, got error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}

func TestSemanticSearch_LimitApplied(t *testing.T) {
	eng, store, embedder := newTestEngine()
	embedder.vector = []float32{1, 0}

	for i := 0; i < 5; i++ {
		addNode(store, "user-1", graph.NodeTypePerson, "Match", func(n *graph.Node) {
			n.Embedding = []float32{1, 0}
		})
	}

	hits, err := eng.SemanticSearch(context.Background(), "user-1", "anything", 3)
	if err != nil {
		t.Fatalf("SemanticSearch failed: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("hits = %d, want 3", len(hits))
	}
}
