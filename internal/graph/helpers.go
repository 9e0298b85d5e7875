package graph

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Property Map Helpers
// ============================================================================

// Optional dates are stored as RFC3339 strings so that a single flat
// property map round-trips every field.

func nodeToProps(n *Node) map[string]any {
	props := map[string]any{
		"id":           n.ID,
		"owner_id":     n.OwnerID,
		"type":         string(n.Type),
		"name":         n.Name,
		"description":  n.Description,
		"sector":       n.Sector,
		"company":      n.Company,
		"role":         n.Role,
		"linkedin_url": n.LinkedinURL,
		"notes":        n.Notes,
		"status":       n.Status,
		"created_at":   n.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":   n.UpdatedAt.UTC().Format(time.RFC3339),
	}

	tags := make([]any, 0, len(n.Tags))
	for _, t := range n.Tags {
		tags = append(tags, t)
	}
	props["tags"] = tags

	props["relationship_strength"] = intPtrToProp(n.RelationshipStrength)
	props["priority"] = intPtrToProp(n.Priority)
	props["due_date"] = timePtrToProp(n.DueDate)
	props["start_date"] = timePtrToProp(n.StartDate)
	props["end_date"] = timePtrToProp(n.EndDate)

	if len(n.Properties) > 0 {
		if raw, err := json.Marshal(n.Properties); err == nil {
			props["properties_json"] = string(raw)
		}
	} else {
		props["properties_json"] = nil
	}

	if n.HasEmbedding() {
		vec := make([]any, 0, len(n.Embedding))
		for _, f := range n.Embedding {
			vec = append(vec, float64(f))
		}
		props["embedding"] = vec
	} else {
		props["embedding"] = nil
	}

	return props
}

func nodeFromProps(props map[string]any) *Node {
	n := &Node{
		ID:          getStringProp(props, "id"),
		OwnerID:     getStringProp(props, "owner_id"),
		Type:        NodeType(getStringProp(props, "type")),
		Name:        getStringProp(props, "name"),
		Description: getStringProp(props, "description"),
		Sector:      getStringProp(props, "sector"),
		Company:     getStringProp(props, "company"),
		Role:        getStringProp(props, "role"),
		LinkedinURL: getStringProp(props, "linkedin_url"),
		Notes:       getStringProp(props, "notes"),
		Status:      getStringProp(props, "status"),
		Tags:        getStringSliceProp(props, "tags"),

		RelationshipStrength: getIntPtrProp(props, "relationship_strength"),
		Priority:             getIntPtrProp(props, "priority"),
		DueDate:              getTimePtrProp(props, "due_date"),
		StartDate:            getTimePtrProp(props, "start_date"),
		EndDate:              getTimePtrProp(props, "end_date"),

		CreatedAt: getTimeProp(props, "created_at"),
		UpdatedAt: getTimeProp(props, "updated_at"),
	}

	if raw := getStringProp(props, "properties_json"); raw != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			n.Properties = m
		}
	}

	if vec, ok := props["embedding"].([]any); ok && len(vec) > 0 {
		emb := make([]float32, 0, len(vec))
		for _, v := range vec {
			if f, ok := v.(float64); ok {
				emb = append(emb, float32(f))
			}
		}
		n.Embedding = emb
	}

	return n
}

func edgeToProps(e *Edge) map[string]any {
	props := map[string]any{
		"id":                e.ID,
		"owner_id":          e.OwnerID,
		"type":              string(e.Type),
		"weight":            int64(e.Weight),
		"relationship_type": e.RelationshipType,
		"added_by_user":     e.AddedByUser,
		"notes":             e.Notes,
		"created_at":        e.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":        e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	props["relationship_strength"] = intPtrToProp(e.RelationshipStrength)
	props["sort_order"] = intPtrToProp(e.SortOrder)
	props["last_interaction_date"] = timePtrToProp(e.LastInteractionDate)
	if e.RelevanceScore != nil {
		props["relevance_score"] = *e.RelevanceScore
	} else {
		props["relevance_score"] = nil
	}
	return props
}

func edgeFromProps(props map[string]any, sourceID, targetID string) *Edge {
	e := &Edge{
		ID:           getStringProp(props, "id"),
		OwnerID:      getStringProp(props, "owner_id"),
		SourceNodeID: sourceID,
		TargetNodeID: targetID,
		Type:         EdgeType(getStringProp(props, "type")),
		Weight:       getIntProp(props, "weight"),

		RelationshipStrength: getIntPtrProp(props, "relationship_strength"),
		RelationshipType:     getStringProp(props, "relationship_type"),
		LastInteractionDate:  getTimePtrProp(props, "last_interaction_date"),
		AddedByUser:          getBoolProp(props, "added_by_user"),
		Notes:                getStringProp(props, "notes"),
		SortOrder:            getIntPtrProp(props, "sort_order"),

		CreatedAt: getTimeProp(props, "created_at"),
		UpdatedAt: getTimeProp(props, "updated_at"),
	}
	if f, ok := props["relevance_score"].(float64); ok {
		e.RelevanceScore = &f
	}
	return e
}

// Low-level property accessors

func getStringProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func getBoolProp(props map[string]any, key string) bool {
	if b, ok := props[key].(bool); ok {
		return b
	}
	return false
}

func getIntProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func getIntPtrProp(props map[string]any, key string) *int {
	if props[key] == nil {
		return nil
	}
	switch v := props[key].(type) {
	case int64:
		i := int(v)
		return &i
	case int:
		return &v
	case float64:
		i := int(v)
		return &i
	}
	return nil
}

func getStringSliceProp(props map[string]any, key string) []string {
	raw, ok := props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getTimeProp(props map[string]any, key string) time.Time {
	if s, ok := props[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	if t, ok := props[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}

func getTimePtrProp(props map[string]any, key string) *time.Time {
	if props[key] == nil {
		return nil
	}
	t := getTimeProp(props, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func intPtrToProp(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func timePtrToProp(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC().Format(time.RFC3339)
}
