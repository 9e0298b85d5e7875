package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relatus/internal/graph"
	"relatus/pkg/errors"
)

// ============================================================================
// Edge Lifecycle
// ============================================================================

// EdgeInput carries the caller-settable fields of an edge
type EdgeInput struct {
	SourceNodeID string         `json:"source_node_id"`
	TargetNodeID string         `json:"target_node_id"`
	Type         graph.EdgeType `json:"type"`

	Weight               *int       `json:"weight"`
	RelationshipStrength *int       `json:"relationship_strength"`
	RelationshipType     string     `json:"relationship_type"`
	LastInteractionDate  *time.Time `json:"last_interaction_date"`
	RelevanceScore       *float64   `json:"relevance_score"`
	AddedByUser          bool       `json:"added_by_user"`
	Notes                string     `json:"notes"`
	SortOrder            *int       `json:"sort_order"`
}

// CreateEdge is the single validated edge-creation path. Ordering: self-loop
// rejection is unconditional and first, then both endpoints are resolved and
// ownership-checked, then the compatibility table runs.
func (e *Engine) CreateEdge(ctx context.Context, ownerID string, input EdgeInput) (*graph.Edge, error) {
	if input.SourceNodeID == input.TargetNodeID {
		return nil, errors.NewInvalidArgument("self-loop edges are not allowed")
	}

	source, err := e.getOwnedNode(ctx, ownerID, input.SourceNodeID)
	if err != nil {
		return nil, err
	}
	target, err := e.getOwnedNode(ctx, ownerID, input.TargetNodeID)
	if err != nil {
		return nil, err
	}

	if err := ValidateEdge(source.Type, target.Type, input.Type); err != nil {
		return nil, err
	}

	weight := 1
	if input.Weight != nil {
		weight = *input.Weight
	}

	sortOrder := input.SortOrder
	if input.Type == graph.EdgeTypeBelongsTo && sortOrder == nil {
		zero := 0
		sortOrder = &zero
	}

	now := time.Now().UTC()
	edge := &graph.Edge{
		ID:           "edge-" + uuid.NewString(),
		OwnerID:      ownerID,
		SourceNodeID: source.ID,
		TargetNodeID: target.ID,
		Type:         input.Type,
		Weight:       weight,

		RelationshipStrength: input.RelationshipStrength,
		RelationshipType:     input.RelationshipType,
		LastInteractionDate:  input.LastInteractionDate,
		RelevanceScore:       input.RelevanceScore,
		AddedByUser:          input.AddedByUser,
		Notes:                input.Notes,
		SortOrder:            sortOrder,

		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := e.store.SaveEdge(ctx, edge)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Edge created",
		zap.String("edge_id", saved.ID),
		zap.String("type", string(saved.Type)),
		zap.String("source", saved.SourceNodeID),
		zap.String("target", saved.TargetNodeID),
	)
	return saved, nil
}

// DeleteEdge removes an edge after enforcing ownership
func (e *Engine) DeleteEdge(ctx context.Context, ownerID, edgeID string) error {
	edge, err := e.store.GetEdge(ctx, edgeID)
	if err != nil {
		return err
	}
	if edge.OwnerID != ownerID {
		return errors.NewUnauthorized(edgeID)
	}
	return e.store.DeleteEdge(ctx, edge.ID)
}

// UpdateEdge mutates the caller-settable fields of an edge in place
func (e *Engine) UpdateEdge(ctx context.Context, ownerID, edgeID string, input EdgeInput) (*graph.Edge, error) {
	edge, err := e.store.GetEdge(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge.OwnerID != ownerID {
		return nil, errors.NewUnauthorized(edgeID)
	}

	if input.Weight != nil {
		edge.Weight = *input.Weight
	}
	if input.RelationshipStrength != nil {
		edge.RelationshipStrength = input.RelationshipStrength
	}
	if input.RelationshipType != "" {
		edge.RelationshipType = input.RelationshipType
	}
	if input.LastInteractionDate != nil {
		edge.LastInteractionDate = input.LastInteractionDate
	}
	if input.RelevanceScore != nil {
		edge.RelevanceScore = input.RelevanceScore
	}
	if input.Notes != "" {
		edge.Notes = input.Notes
	}
	if input.SortOrder != nil {
		edge.SortOrder = input.SortOrder
	}
	edge.UpdatedAt = time.Now().UTC()

	return e.store.SaveEdge(ctx, edge)
}

// ReparentNode moves a child to a new BELONGS_TO parent. Moves are
// delete-then-recreate of the single BELONGS_TO edge from the child, never
// an in-place edge mutation; a crash between the steps leaves the child
// detached, and retrying is safe.
func (e *Engine) ReparentNode(ctx context.Context, ownerID, childID, newParentID string, sortOrder *int) (*graph.Edge, error) {
	child, err := e.getOwnedNode(ctx, ownerID, childID)
	if err != nil {
		return nil, err
	}
	if _, err := e.getOwnedNode(ctx, ownerID, newParentID); err != nil {
		return nil, err
	}

	outgoing, err := e.store.ListEdgesBySource(ctx, child.ID)
	if err != nil {
		return nil, err
	}
	for _, edge := range outgoing {
		if edge.Type == graph.EdgeTypeBelongsTo {
			if err := e.store.DeleteEdge(ctx, edge.ID); err != nil {
				return nil, err
			}
		}
	}

	return e.CreateEdge(ctx, ownerID, EdgeInput{
		SourceNodeID: childID,
		TargetNodeID: newParentID,
		Type:         graph.EdgeTypeBelongsTo,
		AddedByUser:  true,
		SortOrder:    sortOrder,
	})
}
