package engine

import (
	"context"
	"math"
	"testing"

	"relatus/internal/graph"
)

func TestAnalyzeProximity_CountsAndInfluence(t *testing.T) {
	eng, store, _ := newTestEngine()
	alice := addNode(store, "user-1", graph.NodeTypePerson, "Alice")
	bob := addNode(store, "user-1", graph.NodeTypePerson, "Bob")
	carol := addNode(store, "user-1", graph.NodeTypePerson, "Carol")
	goal := addNode(store, "user-1", graph.NodeTypeGoal, "Raise seed round")

	addEdge(store, "user-1", graph.EdgeTypeKnows, alice.ID, bob.ID, func(e *graph.Edge) {
		e.RelationshipStrength = intPtr(4)
	})
	addEdge(store, "user-1", graph.EdgeTypeKnows, carol.ID, alice.ID, func(e *graph.Edge) {
		e.RelationshipStrength = intPtr(2)
	})
	// No strength here: excluded from the average, still counted
	addEdge(store, "user-1", graph.EdgeTypeSupports, alice.ID, goal.ID)

	report, err := eng.AnalyzeProximity(context.Background(), "user-1", alice.ID)
	if err != nil {
		t.Fatalf("AnalyzeProximity failed: %v", err)
	}

	if report.TotalConnections != 3 {
		t.Errorf("total connections = %d, want 3", report.TotalConnections)
	}
	if report.ConnectionsByType[graph.EdgeTypeKnows] != 2 {
		t.Errorf("KNOWS count = %d, want 2", report.ConnectionsByType[graph.EdgeTypeKnows])
	}
	if report.ConnectionsByType[graph.EdgeTypeSupports] != 1 {
		t.Errorf("SUPPORTS count = %d, want 1", report.ConnectionsByType[graph.EdgeTypeSupports])
	}

	// influence = 3 connections + avg(4, 2) = 6.0
	if math.Abs(report.InfluenceScore-6.0) > 1e-9 {
		t.Errorf("influence = %f, want 6.0", report.InfluenceScore)
	}
}

func TestAnalyzeProximity_NoConnections(t *testing.T) {
	eng, store, _ := newTestEngine()
	alice := addNode(store, "user-1", graph.NodeTypePerson, "Alice")

	report, err := eng.AnalyzeProximity(context.Background(), "user-1", alice.ID)
	if err != nil {
		t.Fatalf("AnalyzeProximity failed: %v", err)
	}
	if report.TotalConnections != 0 {
		t.Errorf("total connections = %d, want 0", report.TotalConnections)
	}
	if report.InfluenceScore != 0.0 {
		t.Errorf("influence = %f, want 0.0", report.InfluenceScore)
	}
}

func TestAnalyzeProximity_NoStrengthsRecorded(t *testing.T) {
	eng, store, _ := newTestEngine()
	alice := addNode(store, "user-1", graph.NodeTypePerson, "Alice")
	bob := addNode(store, "user-1", graph.NodeTypePerson, "Bob")
	addEdge(store, "user-1", graph.EdgeTypeKnows, alice.ID, bob.ID)

	report, err := eng.AnalyzeProximity(context.Background(), "user-1", alice.ID)
	if err != nil {
		t.Fatalf("AnalyzeProximity failed: %v", err)
	}
	// influence = 1 connection + 0 average
	if math.Abs(report.InfluenceScore-1.0) > 1e-9 {
		t.Errorf("influence = %f, want 1.0", report.InfluenceScore)
	}
}

func TestAnalyzeProximity_ForeignNeighborsSkipped(t *testing.T) {
	eng, store, _ := newTestEngine()
	alice := addNode(store, "user-1", graph.NodeTypePerson, "Alice")
	mallory := addNode(store, "user-2", graph.NodeTypePerson, "Mallory")
	addEdge(store, "user-1", graph.EdgeTypeKnows, alice.ID, mallory.ID)

	report, err := eng.AnalyzeProximity(context.Background(), "user-1", alice.ID)
	if err != nil {
		t.Fatalf("AnalyzeProximity failed: %v", err)
	}
	if report.TotalConnections != 0 {
		t.Errorf("foreign neighbor leaked into report: %d connections", report.TotalConnections)
	}
}

func TestAnalyzeProximity_Directions(t *testing.T) {
	eng, store, _ := newTestEngine()
	alice := addNode(store, "user-1", graph.NodeTypePerson, "Alice")
	bob := addNode(store, "user-1", graph.NodeTypePerson, "Bob")
	carol := addNode(store, "user-1", graph.NodeTypePerson, "Carol")
	addEdge(store, "user-1", graph.EdgeTypeKnows, alice.ID, bob.ID)
	addEdge(store, "user-1", graph.EdgeTypeKnows, carol.ID, alice.ID)

	report, err := eng.AnalyzeProximity(context.Background(), "user-1", alice.ID)
	if err != nil {
		t.Fatalf("AnalyzeProximity failed: %v", err)
	}

	directions := map[string]string{}
	for _, c := range report.Connections {
		directions[c.Neighbor.ID] = c.Direction
	}
	if directions[bob.ID] != DirectionOutgoing {
		t.Errorf("bob direction = %s, want %s", directions[bob.ID], DirectionOutgoing)
	}
	if directions[carol.ID] != DirectionIncoming {
		t.Errorf("carol direction = %s, want %s", directions[carol.ID], DirectionIncoming)
	}
}
