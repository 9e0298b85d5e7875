package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relatus/internal/graph"
	"relatus/pkg/errors"
)

// ============================================================================
// Node Lifecycle
// ============================================================================

// NodeInput carries the caller-settable fields of a node
type NodeInput struct {
	Type        graph.NodeType `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Sector      string         `json:"sector"`
	Company     string         `json:"company"`
	Role        string         `json:"role"`
	LinkedinURL string         `json:"linkedin_url"`
	Notes       string         `json:"notes"`
	Tags        []string       `json:"tags"`

	RelationshipStrength *int       `json:"relationship_strength"`
	Priority             *int       `json:"priority"`
	DueDate              *time.Time `json:"due_date"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	Status               string     `json:"status"`

	Properties map[string]string `json:"properties"`
}

// CreateNode validates and persists a new node, then attempts a best-effort
// embedding backfill. Embedding failures never block creation.
func (e *Engine) CreateNode(ctx context.Context, ownerID string, input NodeInput) (*graph.Node, error) {
	return e.createNode(ctx, ownerID, input, true)
}

// createNode optionally defers the embedding attempt; bulk import backfills
// vectors concurrently after the batch instead of once per row
func (e *Engine) createNode(ctx context.Context, ownerID string, input NodeInput, embed bool) (*graph.Node, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidArgument("node name is required")
	}
	if !input.Type.Valid() {
		return nil, errors.NewInvalidArgument(fmt.Sprintf("unsupported node type: %s", input.Type))
	}

	now := time.Now().UTC()
	node := &graph.Node{
		ID:        "node-" + uuid.NewString(),
		OwnerID:   ownerID,
		Type:      input.Type,
		CreatedAt: now,
	}
	applyNodeInput(node, input)
	node.UpdatedAt = now

	if embed {
		e.EnsureEmbedding(ctx, node)
	}

	saved, err := e.store.SaveNode(ctx, node)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Node created",
		zap.String("node_id", saved.ID),
		zap.String("type", string(saved.Type)),
		zap.String("owner_id", ownerID),
	)
	return saved, nil
}

// GetNode fetches a node and enforces ownership
func (e *Engine) GetNode(ctx context.Context, ownerID, nodeID string) (*graph.Node, error) {
	return e.getOwnedNode(ctx, ownerID, nodeID)
}

// UpdateNode mutates a node in place. When the embedding source text
// changed, the stale vector is dropped and regenerated lazily.
func (e *Engine) UpdateNode(ctx context.Context, ownerID, nodeID string, input NodeInput) (*graph.Node, error) {
	node, err := e.getOwnedNode(ctx, ownerID, nodeID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidArgument("node name is required")
	}

	oldText := node.EmbeddingText()
	applyNodeInput(node, input)
	node.UpdatedAt = time.Now().UTC()

	if node.EmbeddingText() != oldText {
		node.Embedding = nil
		e.EnsureEmbedding(ctx, node)
	}

	return e.store.SaveNode(ctx, node)
}

// DeleteNode removes a node together with all incident edges, both
// directions. The cascade is a compensating multi-step sequence: each edge
// delete is idempotent, so a crashed run can simply be retried.
func (e *Engine) DeleteNode(ctx context.Context, ownerID, nodeID string) error {
	node, err := e.getOwnedNode(ctx, ownerID, nodeID)
	if err != nil {
		return err
	}

	outgoing, err := e.store.ListEdgesBySource(ctx, node.ID)
	if err != nil {
		return err
	}
	incoming, err := e.store.ListEdgesByTarget(ctx, node.ID)
	if err != nil {
		return err
	}
	for _, edge := range append(outgoing, incoming...) {
		if err := e.store.DeleteEdge(ctx, edge.ID); err != nil {
			return err
		}
	}

	if err := e.store.DeleteNode(ctx, node.ID); err != nil {
		return err
	}

	e.logger.Info("Node deleted",
		zap.String("node_id", node.ID),
		zap.Int("cascaded_edges", len(outgoing)+len(incoming)),
	)
	return nil
}

// ListNodes returns nodes matching the composed filter
func (e *Engine) ListNodes(ctx context.Context, filter *NodeFilter) ([]*graph.Node, error) {
	return e.store.FindNodes(ctx, filter.OwnerID(), filter.Matches)
}

// EnsureEmbedding lazily backfills a node's embedding from its text content.
// Returns true when the node now carries a vector. The caller is responsible
// for persisting the node; soft provider failures degrade to "no embedding".
func (e *Engine) EnsureEmbedding(ctx context.Context, node *graph.Node) bool {
	if node.HasEmbedding() {
		return true
	}
	text := node.EmbeddingText()
	if text == "" {
		return false
	}

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("Embedding backfill failed",
			zap.String("node_id", node.ID),
			zap.Error(err),
		)
		return false
	}
	if len(vec) == 0 {
		return false
	}

	node.Embedding = vec
	return true
}

// getOwnedNode resolves a node id and enforces the tenancy boundary. Checks
// run eagerly; the first failure short-circuits the operation.
func (e *Engine) getOwnedNode(ctx context.Context, ownerID, nodeID string) (*graph.Node, error) {
	node, err := e.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.OwnerID != ownerID {
		return nil, errors.NewUnauthorized(nodeID)
	}
	return node, nil
}

// getOwnedTypedNode additionally enforces the node's type
func (e *Engine) getOwnedTypedNode(ctx context.Context, ownerID, nodeID string, want graph.NodeType) (*graph.Node, error) {
	node, err := e.getOwnedNode(ctx, ownerID, nodeID)
	if err != nil {
		return nil, err
	}
	if node.Type != want {
		return nil, errors.NewInvalidArgument(fmt.Sprintf(
			"node %s is %s, expected %s", nodeID, node.Type, want))
	}
	return node, nil
}

func applyNodeInput(node *graph.Node, input NodeInput) {
	node.Name = strings.TrimSpace(input.Name)
	node.Description = input.Description
	node.Sector = input.Sector
	node.Company = input.Company
	node.Role = input.Role
	node.LinkedinURL = input.LinkedinURL
	node.Notes = input.Notes
	node.Tags = cleanTags(input.Tags)
	node.RelationshipStrength = input.RelationshipStrength
	node.Priority = input.Priority
	node.DueDate = input.DueDate
	node.StartDate = input.StartDate
	node.EndDate = input.EndDate
	node.Status = input.Status
	node.Properties = input.Properties
}

// cleanTags trims entries and drops blanks; order preserved, duplicates kept
func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
