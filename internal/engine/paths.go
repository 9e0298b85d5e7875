package engine

import (
	"context"

	"relatus/internal/graph"
)

// Path suggestion bounds
const (
	minPathDepth     = 2
	maxPathDepth     = 6
	defaultPathDepth = 3

	minPathLimit     = 1
	maxPathLimit     = 10
	defaultPathLimit = 3
)

// PathSuggestion is a person reachable through the graph, with the chain of
// node ids that leads to them (goal and person inclusive)
type PathSuggestion struct {
	Person   *graph.Node `json:"person"`
	Distance int         `json:"distance"`
	Path     []string    `json:"path"`
}

// GoalPathSuggestions surfaces people reachable through the owner's
// relationship graph who are not direct supporters of the goal, ranked by
// BFS discovery order. All edge types are treated as equally traversable and
// undirected: for path discovery an introduction can flow either way along
// any relationship.
func (e *Engine) GoalPathSuggestions(ctx context.Context, ownerID, goalID string, maxDepth, limit int) ([]PathSuggestion, error) {
	goal, err := e.getOwnedTypedNode(ctx, ownerID, goalID, graph.NodeTypeGoal)
	if err != nil {
		return nil, err
	}

	maxDepth = clampWithDefault(maxDepth, minPathDepth, maxPathDepth, defaultPathDepth)
	limit = clampWithDefault(limit, minPathLimit, maxPathLimit, defaultPathLimit)

	nodes, err := e.store.ListNodesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.ListEdgesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	nodesByID := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		nodesByID[n.ID] = n
	}

	// Undirected adjacency: both endpoints added symmetrically regardless of
	// edge type or direction
	adjacency := make(map[string][]string, len(nodes))
	for _, edge := range edges {
		adjacency[edge.SourceNodeID] = append(adjacency[edge.SourceNodeID], edge.TargetNodeID)
		adjacency[edge.TargetNodeID] = append(adjacency[edge.TargetNodeID], edge.SourceNodeID)
	}

	type frontier struct {
		nodeID string
		path   []string
	}

	suggestions := []PathSuggestion{}
	visited := map[string]bool{goal.ID: true}
	queue := []frontier{{nodeID: goal.ID, path: []string{goal.ID}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		distance := len(current.path) - 1
		if distance >= maxDepth {
			continue
		}

		for _, neighborID := range adjacency[current.nodeID] {
			if visited[neighborID] {
				continue
			}
			visited[neighborID] = true

			path := make([]string, len(current.path), len(current.path)+1)
			copy(path, current.path)
			path = append(path, neighborID)
			neighborDistance := distance + 1

			// Distance 1 is a direct neighbor; only indirect people qualify
			neighbor := nodesByID[neighborID]
			if neighbor != nil && neighbor.Type == graph.NodeTypePerson && neighborDistance >= 2 {
				suggestions = append(suggestions, PathSuggestion{
					Person:   neighbor,
					Distance: neighborDistance,
					Path:     path,
				})
				if len(suggestions) >= limit {
					return suggestions, nil
				}
			}

			queue = append(queue, frontier{nodeID: neighborID, path: path})
		}
	}

	return suggestions, nil
}

// clampWithDefault substitutes def for unset (non-positive) values and
// clamps the rest into [lo, hi]
func clampWithDefault(v, lo, hi, def int) int {
	if v <= 0 {
		v = def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
