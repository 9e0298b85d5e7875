package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"relatus/pkg/errors"
)

// ============================================================================
// Edge Operations
// ============================================================================

// GetEdge retrieves a single edge by id
func (r *Repository) GetEdge(ctx context.Context, id string) (*Edge, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Node)-[rel:RELATES {id: $id}]->(b:Node)
		RETURN rel, a.id as source_id, b.id as target_id
	`

	result, err := session.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("get edge", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, errors.NewGraphQueryFailed("get edge", err)
		}
		return nil, errors.NewEdgeNotFound(id)
	}

	return edgeFromRecord(result.Record())
}

// ListEdgesBySource returns all edges where the node is the source
func (r *Repository) ListEdgesBySource(ctx context.Context, nodeID string) ([]*Edge, error) {
	return r.listEdges(ctx, `
		MATCH (a:Node {id: $nodeID})-[rel:RELATES]->(b:Node)
		RETURN rel, a.id as source_id, b.id as target_id
		ORDER BY rel.created_at
	`, map[string]any{"nodeID": nodeID}, "list edges by source")
}

// ListEdgesByTarget returns all edges where the node is the target
func (r *Repository) ListEdgesByTarget(ctx context.Context, nodeID string) ([]*Edge, error) {
	return r.listEdges(ctx, `
		MATCH (a:Node)-[rel:RELATES]->(b:Node {id: $nodeID})
		RETURN rel, a.id as source_id, b.id as target_id
		ORDER BY rel.created_at
	`, map[string]any{"nodeID": nodeID}, "list edges by target")
}

// ListEdgesByOwner returns every edge owned by a user
func (r *Repository) ListEdgesByOwner(ctx context.Context, ownerID string) ([]*Edge, error) {
	return r.listEdges(ctx, `
		MATCH (a:Node)-[rel:RELATES {owner_id: $ownerID}]->(b:Node)
		RETURN rel, a.id as source_id, b.id as target_id
		ORDER BY rel.created_at
	`, map[string]any{"ownerID": ownerID}, "list edges by owner")
}

// FindEdge looks up the edge between an exact (source, target, type) triple.
// Returns (nil, nil) when no such edge exists.
func (r *Repository) FindEdge(ctx context.Context, sourceID, targetID string, edgeType EdgeType) (*Edge, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Node {id: $sourceID})-[rel:RELATES {type: $type}]->(b:Node {id: $targetID})
		RETURN rel, a.id as source_id, b.id as target_id
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]any{
		"sourceID": sourceID,
		"targetID": targetID,
		"type":     string(edgeType),
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("find edge", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, errors.NewGraphQueryFailed("find edge", err)
		}
		return nil, nil
	}

	return edgeFromRecord(result.Record())
}

// SaveEdge creates or updates an edge between two existing nodes
func (r *Repository) SaveEdge(ctx context.Context, edge *Edge) (*Edge, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Node {id: $sourceID})
		MATCH (b:Node {id: $targetID})
		MERGE (a)-[rel:RELATES {id: $id}]->(b)
		SET rel = $props
		RETURN rel, a.id as source_id, b.id as target_id
	`

	result, err := session.Run(ctx, query, map[string]any{
		"sourceID": edge.SourceNodeID,
		"targetID": edge.TargetNodeID,
		"id":       edge.ID,
		"props":    edgeToProps(edge),
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("save edge", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("save edge", err)
	}

	r.logger.Debug("Edge saved",
		zap.String("edge_id", edge.ID),
		zap.String("type", string(edge.Type)),
		zap.String("source", edge.SourceNodeID),
		zap.String("target", edge.TargetNodeID),
	)
	return edgeFromRecord(record)
}

// DeleteEdge removes an edge by id. Deleting a missing edge is a no-op.
func (r *Repository) DeleteEdge(ctx context.Context, id string) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH ()-[rel:RELATES {id: $id}]->()
		DELETE rel
	`

	_, err := session.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return errors.NewGraphQueryFailed("delete edge", err)
	}

	r.logger.Debug("Edge deleted", zap.String("edge_id", id))
	return nil
}

func (r *Repository) listEdges(ctx context.Context, query string, params map[string]any, operation string) ([]*Edge, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, errors.NewGraphQueryFailed(operation, err)
	}

	var edges []*Edge
	for result.Next(ctx) {
		edge, err := edgeFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewGraphQueryFailed(operation, err)
	}
	return edges, nil
}

func edgeFromRecord(record *neo4j.Record) (*Edge, error) {
	val, ok := record.Get("rel")
	if !ok {
		return nil, errors.NewGraphQueryFailed("read edge record", nil)
	}
	rel, ok := val.(neo4j.Relationship)
	if !ok {
		return nil, errors.NewGraphQueryFailed("unexpected edge record shape", nil)
	}

	sourceID, _ := record.Get("source_id")
	targetID, _ := record.Get("target_id")
	src, _ := sourceID.(string)
	tgt, _ := targetID.(string)

	return edgeFromProps(rel.Props, src, tgt), nil
}
