package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"relatus/pkg/errors"
)

// ============================================================================
// Node Operations
// ============================================================================

// GetNode retrieves a single node by id
func (r *Repository) GetNode(ctx context.Context, id string) (*Node, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (n:Node {id: $id})
		RETURN n
	`

	result, err := session.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("get node", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, errors.NewGraphQueryFailed("get node", err)
		}
		return nil, errors.NewNodeNotFound(id)
	}

	return nodeFromRecord(result.Record(), "n")
}

// ListNodesByOwner returns every node owned by a user
func (r *Repository) ListNodesByOwner(ctx context.Context, ownerID string) ([]*Node, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (n:Node {owner_id: $ownerID})
		RETURN n
		ORDER BY n.created_at
	`

	result, err := session.Run(ctx, query, map[string]any{"ownerID": ownerID})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list nodes by owner", err)
	}

	return collectNodes(ctx, result)
}

// ListNodesByOwnerAndType returns an owner's nodes of one type
func (r *Repository) ListNodesByOwnerAndType(ctx context.Context, ownerID string, nodeType NodeType) ([]*Node, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (n:Node {owner_id: $ownerID, type: $type})
		RETURN n
		ORDER BY n.created_at
	`

	result, err := session.Run(ctx, query, map[string]any{
		"ownerID": ownerID,
		"type":    string(nodeType),
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list nodes by owner and type", err)
	}

	return collectNodes(ctx, result)
}

// FindNodes returns the owner's nodes matching a predicate. Predicates are
// arbitrary Go closures, so filtering happens on the snapshot rather than
// being pushed into Cypher.
func (r *Repository) FindNodes(ctx context.Context, ownerID string, pred func(*Node) bool) ([]*Node, error) {
	nodes, err := r.ListNodesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return nodes, nil
	}

	matched := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if pred(n) {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// SaveNode creates or updates a node
func (r *Repository) SaveNode(ctx context.Context, node *Node) (*Node, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MERGE (n:Node {id: $id})
		SET n = $props
		RETURN n
	`

	result, err := session.Run(ctx, query, map[string]any{
		"id":    node.ID,
		"props": nodeToProps(node),
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("save node", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("save node", err)
	}

	r.logger.Debug("Node saved",
		zap.String("node_id", node.ID),
		zap.String("type", string(node.Type)),
	)
	return nodeFromRecord(record, "n")
}

// DeleteNode removes a node. Incident edges are expected to be deleted by
// the caller first; DETACH covers anything that slipped through.
func (r *Repository) DeleteNode(ctx context.Context, id string) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (n:Node {id: $id})
		DETACH DELETE n
	`

	_, err := session.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return errors.NewGraphQueryFailed("delete node", err)
	}

	r.logger.Debug("Node deleted", zap.String("node_id", id))
	return nil
}

func nodeFromRecord(record *neo4j.Record, key string) (*Node, error) {
	val, ok := record.Get(key)
	if !ok {
		return nil, errors.NewGraphQueryFailed("read node record", nil)
	}
	entity, ok := val.(neo4j.Node)
	if !ok {
		return nil, errors.NewGraphQueryFailed("unexpected node record shape", nil)
	}
	return nodeFromProps(entity.Props), nil
}

func collectNodes(ctx context.Context, result neo4j.ResultWithContext) ([]*Node, error) {
	var nodes []*Node
	for result.Next(ctx) {
		node, err := nodeFromRecord(result.Record(), "n")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewGraphQueryFailed("collect nodes", err)
	}
	return nodes, nil
}
