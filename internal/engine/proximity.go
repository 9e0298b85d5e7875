package engine

import (
	"context"
	"time"

	"relatus/internal/graph"
)

// Connection direction flags
const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
)

// Connection is one resolved edge in a node's immediate neighborhood.
// Strength and interaction date come from the edge, not the neighbor node.
type Connection struct {
	EdgeID               string         `json:"edge_id"`
	EdgeType             graph.EdgeType `json:"edge_type"`
	Direction            string         `json:"direction"`
	RelationshipStrength *int           `json:"relationship_strength,omitempty"`
	LastInteractionDate  *time.Time     `json:"last_interaction_date,omitempty"`
	Neighbor             *graph.Node    `json:"neighbor"`
}

// ProximityReport summarizes a node's direct relationship footprint
type ProximityReport struct {
	Node              *graph.Node            `json:"node"`
	TotalConnections  int                    `json:"total_connections"`
	ConnectionsByType map[graph.EdgeType]int `json:"connections_by_type"`
	Connections       []Connection           `json:"connections"`
	InfluenceScore    float64                `json:"influence_score"`
}

// AnalyzeProximity aggregates a node's direct neighbors into per-type
// connection counts and an influence score. Neighbors not owned by the same
// user are silently skipped: cross-tenant leakage must never surface even if
// present in storage.
func (e *Engine) AnalyzeProximity(ctx context.Context, ownerID, nodeID string) (*ProximityReport, error) {
	node, err := e.getOwnedNode(ctx, ownerID, nodeID)
	if err != nil {
		return nil, err
	}

	outgoing, err := e.store.ListEdgesBySource(ctx, node.ID)
	if err != nil {
		return nil, err
	}
	incoming, err := e.store.ListEdgesByTarget(ctx, node.ID)
	if err != nil {
		return nil, err
	}

	report := &ProximityReport{
		Node:              node,
		ConnectionsByType: make(map[graph.EdgeType]int),
		Connections:       []Connection{},
	}

	strengthSum := 0
	strengthCount := 0

	appendEdge := func(edge *graph.Edge, neighborID, direction string) {
		neighbor, err := e.store.GetNode(ctx, neighborID)
		if err != nil || neighbor.OwnerID != ownerID {
			return
		}

		report.ConnectionsByType[edge.Type]++
		report.Connections = append(report.Connections, Connection{
			EdgeID:               edge.ID,
			EdgeType:             edge.Type,
			Direction:            direction,
			RelationshipStrength: edge.RelationshipStrength,
			LastInteractionDate:  edge.LastInteractionDate,
			Neighbor:             neighbor,
		})

		// Missing strengths are excluded from the average, not zeroed
		if edge.RelationshipStrength != nil {
			strengthSum += *edge.RelationshipStrength
			strengthCount++
		}
	}

	for _, edge := range outgoing {
		appendEdge(edge, edge.TargetNodeID, DirectionOutgoing)
	}
	for _, edge := range incoming {
		appendEdge(edge, edge.SourceNodeID, DirectionIncoming)
	}

	report.TotalConnections = len(report.Connections)
	if report.TotalConnections == 0 {
		report.InfluenceScore = 0.0
		return report, nil
	}

	avgStrength := 0.0
	if strengthCount > 0 {
		avgStrength = float64(strengthSum) / float64(strengthCount)
	}
	report.InfluenceScore = float64(report.TotalConnections) + avgStrength

	return report, nil
}
