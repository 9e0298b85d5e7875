package engine

import (
	"fmt"

	"relatus/internal/graph"
	"relatus/pkg/errors"
)

// edgeCompatibility enumerates the allowed (source type, target type) pairs
// per edge type. PERSON-sourced BELONGS_TO referenced an organizational node
// kind that does not exist among the four node types; the rule is treated as
// latent and such edges are rejected.
var edgeCompatibility = map[graph.EdgeType][][2]graph.NodeType{
	graph.EdgeTypeKnows: {
		{graph.NodeTypePerson, graph.NodeTypePerson},
	},
	graph.EdgeTypeSupports: {
		{graph.NodeTypePerson, graph.NodeTypeGoal},
		{graph.NodeTypePerson, graph.NodeTypeProject},
	},
	graph.EdgeTypeBelongsTo: {
		{graph.NodeTypeGoal, graph.NodeTypeVision},
		{graph.NodeTypeProject, graph.NodeTypeGoal},
	},
}

// ValidateEdge enforces the type-compatibility table for a new edge. The
// self-loop check lives in CreateEdge and runs before this.
func ValidateEdge(sourceType, targetType graph.NodeType, edgeType graph.EdgeType) error {
	pairs, ok := edgeCompatibility[edgeType]
	if !ok {
		return errors.NewInvalidArgument(fmt.Sprintf("unsupported edge type: %s", edgeType))
	}

	for _, pair := range pairs {
		if pair[0] == sourceType && pair[1] == targetType {
			return nil
		}
	}
	return errors.NewInvalidArgument(fmt.Sprintf(
		"edge type %s does not allow %s -> %s", edgeType, sourceType, targetType))
}
