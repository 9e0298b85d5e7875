package graph

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"relatus/pkg/errors"
)

// These tests require a running Neo4j instance on bolt://localhost:7687
// (user neo4j, password password). Run with -short to skip.

func TestRepository_SaveAndGetNode(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	nodeID := "test-node-" + time.Now().Format("20060102150405")
	defer cleanupNode(ctx, driver, nodeID)

	strength := 4
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	node := &Node{
		ID:                   nodeID,
		OwnerID:              "test-user",
		Type:                 NodeTypePerson,
		Name:                 "Integration Alice",
		Sector:               "Fintech",
		Tags:                 []string{"mentor", "investor"},
		RelationshipStrength: &strength,
		DueDate:              &due,
		Properties:           map[string]string{"x": "12", "y": "40"},
		Embedding:            []float32{0.1, 0.2, 0.3},
		CreatedAt:            time.Now().UTC(),
		UpdatedAt:            time.Now().UTC(),
	}

	if _, err := repo.SaveNode(ctx, node); err != nil {
		t.Fatalf("SaveNode failed: %v", err)
	}

	got, err := repo.GetNode(ctx, nodeID)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if got.Name != node.Name || got.Type != node.Type || got.OwnerID != node.OwnerID {
		t.Errorf("round-tripped identity fields differ: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "mentor" {
		t.Errorf("tags = %v, want [mentor investor]", got.Tags)
	}
	if got.RelationshipStrength == nil || *got.RelationshipStrength != 4 {
		t.Errorf("strength = %v, want 4", got.RelationshipStrength)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", got.DueDate, due)
	}
	if got.Properties["x"] != "12" {
		t.Errorf("properties = %v", got.Properties)
	}
	if len(got.Embedding) != 3 {
		t.Errorf("embedding length = %d, want 3", len(got.Embedding))
	}
}

func TestRepository_GetNode_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	_, err = repo.GetNode(ctx, "test-node-does-not-exist")
	if !errors.IsNotFound(err) {
		t.Errorf("error = %v, want not_found", err)
	}
}

func TestRepository_EdgeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	stamp := time.Now().Format("20060102150405")
	sourceID := "test-node-src-" + stamp
	targetID := "test-node-dst-" + stamp
	edgeID := "test-edge-" + stamp
	defer cleanupNode(ctx, driver, sourceID)
	defer cleanupNode(ctx, driver, targetID)

	now := time.Now().UTC()
	for _, n := range []*Node{
		{ID: sourceID, OwnerID: "test-user", Type: NodeTypePerson, Name: "Src", CreatedAt: now, UpdatedAt: now},
		{ID: targetID, OwnerID: "test-user", Type: NodeTypeGoal, Name: "Dst", CreatedAt: now, UpdatedAt: now},
	} {
		if _, err := repo.SaveNode(ctx, n); err != nil {
			t.Fatalf("SaveNode failed: %v", err)
		}
	}

	strength := 3
	interacted := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	edge := &Edge{
		ID:                   edgeID,
		OwnerID:              "test-user",
		SourceNodeID:         sourceID,
		TargetNodeID:         targetID,
		Type:                 EdgeTypeSupports,
		Weight:               2,
		RelationshipStrength: &strength,
		LastInteractionDate:  &interacted,
		AddedByUser:          true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if _, err := repo.SaveEdge(ctx, edge); err != nil {
		t.Fatalf("SaveEdge failed: %v", err)
	}

	got, err := repo.GetEdge(ctx, edgeID)
	if err != nil {
		t.Fatalf("GetEdge failed: %v", err)
	}
	if got.SourceNodeID != sourceID || got.TargetNodeID != targetID || got.Type != EdgeTypeSupports {
		t.Errorf("round-tripped edge differs: %+v", got)
	}
	if got.Weight != 2 || !got.AddedByUser {
		t.Errorf("weight = %d, added_by_user = %v", got.Weight, got.AddedByUser)
	}
	if got.LastInteractionDate == nil || !got.LastInteractionDate.Equal(interacted) {
		t.Errorf("interaction date = %v, want %v", got.LastInteractionDate, interacted)
	}

	found, err := repo.FindEdge(ctx, sourceID, targetID, EdgeTypeSupports)
	if err != nil {
		t.Fatalf("FindEdge failed: %v", err)
	}
	if found == nil || found.ID != edgeID {
		t.Errorf("FindEdge = %v, want edge %s", found, edgeID)
	}

	absent, err := repo.FindEdge(ctx, sourceID, targetID, EdgeTypeKnows)
	if err != nil {
		t.Fatalf("FindEdge failed: %v", err)
	}
	if absent != nil {
		t.Errorf("FindEdge for absent type = %v, want nil", absent)
	}

	if err := repo.DeleteEdge(ctx, edgeID); err != nil {
		t.Fatalf("DeleteEdge failed: %v", err)
	}
	// Deleting an already-deleted edge is a no-op
	if err := repo.DeleteEdge(ctx, edgeID); err != nil {
		t.Errorf("second DeleteEdge = %v, want nil", err)
	}
}

func TestRepository_FindNodes(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	stamp := time.Now().Format("20060102150405")
	owner := "test-user-" + stamp
	now := time.Now().UTC()

	ids := []string{"test-node-a-" + stamp, "test-node-b-" + stamp}
	types := []NodeType{NodeTypePerson, NodeTypeGoal}
	for i, id := range ids {
		defer cleanupNode(ctx, driver, id)
		if _, err := repo.SaveNode(ctx, &Node{
			ID: id, OwnerID: owner, Type: types[i], Name: "N", CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatalf("SaveNode failed: %v", err)
		}
	}

	people, err := repo.FindNodes(ctx, owner, func(n *Node) bool {
		return n.Type == NodeTypePerson
	})
	if err != nil {
		t.Fatalf("FindNodes failed: %v", err)
	}
	if len(people) != 1 || people[0].ID != ids[0] {
		t.Errorf("FindNodes = %v, want just the person node", people)
	}
}

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := "bolt://localhost:7687"
	user := "neo4j"
	password := "password"

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}

func cleanupNode(ctx context.Context, driver neo4j.DriverWithContext, nodeID string) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, "MATCH (n:Node {id: $id}) DETACH DELETE n", map[string]interface{}{"id": nodeID})
}
