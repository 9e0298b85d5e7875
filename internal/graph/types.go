package graph

import (
	"strings"
	"time"
)

// ============================================================================
// Graph Domain Types
// ============================================================================

// NodeType classifies a node in the relationship graph
type NodeType string

const (
	NodeTypePerson  NodeType = "PERSON"
	NodeTypeVision  NodeType = "VISION"
	NodeTypeGoal    NodeType = "GOAL"
	NodeTypeProject NodeType = "PROJECT"
)

// Valid reports whether t is one of the four defined node types
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypePerson, NodeTypeVision, NodeTypeGoal, NodeTypeProject:
		return true
	}
	return false
}

// EdgeType classifies a directed connection between two nodes
type EdgeType string

const (
	EdgeTypeKnows     EdgeType = "KNOWS"
	EdgeTypeSupports  EdgeType = "SUPPORTS"
	EdgeTypeBelongsTo EdgeType = "BELONGS_TO"
)

// Valid reports whether t is one of the supported edge types
func (t EdgeType) Valid() bool {
	switch t {
	case EdgeTypeKnows, EdgeTypeSupports, EdgeTypeBelongsTo:
		return true
	}
	return false
}

// Node is a typed vertex owned by exactly one user
type Node struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Type        NodeType `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Sector      string   `json:"sector,omitempty"`
	Company     string   `json:"company,omitempty"`
	Role        string   `json:"role,omitempty"`
	LinkedinURL string   `json:"linkedin_url,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Intended range 0-5, not clamped at this layer
	RelationshipStrength *int `json:"relationship_strength,omitempty"`
	Priority             *int `json:"priority,omitempty"`

	DueDate   *time.Time `json:"due_date,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Status    string     `json:"status,omitempty"`

	// Open string-keyed map for UI-owned extensions (layout position, timeline)
	Properties map[string]string `json:"properties,omitempty"`

	// Present once generated; absence means "no signal" for similarity
	Embedding []float32 `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEmbedding reports whether an embedding vector has been generated
func (n *Node) HasEmbedding() bool {
	return len(n.Embedding) > 0
}

// EmbeddingText builds the text an embedding is generated from
func (n *Node) EmbeddingText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{n.Name, n.Description, n.Notes} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "\n")
}

// Edge is a typed, directed, weighted connection between two nodes of the
// same owner
type Edge struct {
	ID           string   `json:"id"`
	OwnerID      string   `json:"owner_id"`
	SourceNodeID string   `json:"source_node_id"`
	TargetNodeID string   `json:"target_node_id"`
	Type         EdgeType `json:"type"`

	// Intended range 0-5, defaults to 1 when unspecified at creation
	Weight int `json:"weight"`

	// Distinct from weight; drives diagnostics and nudges
	RelationshipStrength *int       `json:"relationship_strength,omitempty"`
	RelationshipType     string     `json:"relationship_type,omitempty"`
	LastInteractionDate  *time.Time `json:"last_interaction_date,omitempty"`
	RelevanceScore       *float64   `json:"relevance_score,omitempty"`
	AddedByUser          bool       `json:"added_by_user"`
	Notes                string     `json:"notes,omitempty"`

	// Orders children under BELONGS_TO
	SortOrder *int `json:"sort_order,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
