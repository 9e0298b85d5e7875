package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"relatus/internal/graph"
)

// Nudge policy
const (
	nudgeStaleDays       = 60
	nudgeWeakStrengthMax = 2
	defaultNudgeLimit    = 5
)

// PersonSuggestion ranks a person against a goal by embedding similarity
type PersonSuggestion struct {
	Person *graph.Node `json:"person"`
	Score  float64     `json:"score"`
	Reason string      `json:"reason"`
}

// Nudge flags a relationship that needs attention
type Nudge struct {
	Person        *graph.Node `json:"person"`
	Edge          *graph.Edge `json:"edge"`
	Reasons       []string    `json:"reasons"`
	DaysSinceLast *int        `json:"days_since_last,omitempty"`
}

// SuggestPeopleForGoal ranks the owner's people against a goal by semantic
// similarity. The goal's embedding is lazily backfilled and persisted on
// first use; people without embeddings are skipped rather than scored.
func (e *Engine) SuggestPeopleForGoal(ctx context.Context, ownerID, goalID string, limit int) ([]PersonSuggestion, error) {
	goal, err := e.getOwnedTypedNode(ctx, ownerID, goalID, graph.NodeTypeGoal)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 1
	}

	if !goal.HasEmbedding() && e.EnsureEmbedding(ctx, goal) {
		if _, err := e.store.SaveNode(ctx, goal); err != nil {
			e.logger.Warn("Failed to persist backfilled goal embedding",
				zap.String("goal_id", goal.ID),
				zap.Error(err),
			)
		}
	}

	people, err := e.store.ListNodesByOwnerAndType(ctx, ownerID, graph.NodeTypePerson)
	if err != nil {
		return nil, err
	}

	suggestions := []PersonSuggestion{}
	for _, person := range people {
		if !person.HasEmbedding() {
			continue
		}
		score := CosineSimilarity(goal.Embedding, person.Embedding)
		if score <= 0 {
			continue
		}
		suggestions = append(suggestions, PersonSuggestion{
			Person: person,
			Score:  score,
			Reason: suggestionReason(goal, person),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// LinkPersonToGoal creates a SUPPORTS edge from a person to a goal. An
// existing SUPPORTS edge between the exact pair is deleted first, so
// re-linking replaces rather than duplicates and retrying is safe.
func (e *Engine) LinkPersonToGoal(ctx context.Context, ownerID, personID, goalID string, strength *int) (*graph.Edge, error) {
	if _, err := e.getOwnedTypedNode(ctx, ownerID, personID, graph.NodeTypePerson); err != nil {
		return nil, err
	}
	if _, err := e.getOwnedTypedNode(ctx, ownerID, goalID, graph.NodeTypeGoal); err != nil {
		return nil, err
	}

	existing, err := e.store.FindEdge(ctx, personID, goalID, graph.EdgeTypeSupports)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := e.store.DeleteEdge(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	return e.CreateEdge(ctx, ownerID, EdgeInput{
		SourceNodeID:         personID,
		TargetNodeID:         goalID,
		Type:                 graph.EdgeTypeSupports,
		RelationshipStrength: strength,
		AddedByUser:          true,
	})
}

// RelationshipNudges scans every SUPPORTS edge sourced from the owner's
// people and flags the ones that have gone quiet or were never strong,
// ordered by urgency.
func (e *Engine) RelationshipNudges(ctx context.Context, ownerID string, limit int) ([]Nudge, error) {
	if limit < 1 {
		limit = defaultNudgeLimit
	}

	people, err := e.store.ListNodesByOwnerAndType(ctx, ownerID, graph.NodeTypePerson)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	nudges := []Nudge{}
	for _, person := range people {
		edges, err := e.store.ListEdgesBySource(ctx, person.ID)
		if err != nil {
			return nil, err
		}
		for _, edge := range edges {
			if edge.Type != graph.EdgeTypeSupports {
				continue
			}

			nudge := Nudge{Person: person, Edge: edge}
			if edge.LastInteractionDate == nil {
				nudge.Reasons = append(nudge.Reasons, "no interaction recorded")
			} else {
				days := int(now.Sub(*edge.LastInteractionDate).Hours() / 24)
				nudge.DaysSinceLast = &days
				if days > nudgeStaleDays {
					nudge.Reasons = append(nudge.Reasons,
						fmt.Sprintf("last interaction was %d days ago", days))
				}
			}
			if edge.RelationshipStrength == nil || *edge.RelationshipStrength <= nudgeWeakStrengthMax {
				nudge.Reasons = append(nudge.Reasons, "relationship strength is low")
			}

			if len(nudge.Reasons) > 0 {
				nudges = append(nudges, nudge)
			}
		}
	}

	// Urgency: more reasons first; ties broken by most recent interaction,
	// with never-interacted treated as oldest
	sort.SliceStable(nudges, func(i, j int) bool {
		if len(nudges[i].Reasons) != len(nudges[j].Reasons) {
			return len(nudges[i].Reasons) > len(nudges[j].Reasons)
		}
		ti := nudgeInteractionTime(nudges[i])
		tj := nudgeInteractionTime(nudges[j])
		return ti.After(tj)
	})
	if len(nudges) > limit {
		nudges = nudges[:limit]
	}
	return nudges, nil
}

func nudgeInteractionTime(n Nudge) time.Time {
	if n.Edge.LastInteractionDate == nil {
		return time.Time{}
	}
	return *n.Edge.LastInteractionDate
}

func suggestionReason(goal, person *graph.Node) string {
	goalSector := strings.TrimSpace(goal.Sector)
	personSector := strings.TrimSpace(person.Sector)
	if goalSector != "" && strings.EqualFold(goalSector, personSector) {
		return fmt.Sprintf("Works in the same sector as this goal (%s).", goalSector)
	}
	return "High semantic match with this goal."
}
