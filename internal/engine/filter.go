package engine

import (
	"strings"

	"relatus/internal/graph"
)

// NodeFilter accumulates predicates over a single owner's node set.
// Ownership is the first, non-optional predicate; each With* call appends
// one more. A criterion that was never requested contributes no predicate
// at all, so composing zero filters returns exactly the owner's full set.
type NodeFilter struct {
	ownerID string
	preds   []func(*graph.Node) bool
}

// NewNodeFilter starts a filter scoped to one owner
func NewNodeFilter(ownerID string) *NodeFilter {
	return &NodeFilter{ownerID: ownerID}
}

// OwnerID returns the tenancy scope of the filter
func (f *NodeFilter) OwnerID() string {
	return f.ownerID
}

// WithType keeps nodes of exactly one type
func (f *NodeFilter) WithType(t graph.NodeType) *NodeFilter {
	f.preds = append(f.preds, func(n *graph.Node) bool {
		return n.Type == t
	})
	return f
}

// WithTypes keeps nodes whose type is in the given set
func (f *NodeFilter) WithTypes(types ...graph.NodeType) *NodeFilter {
	set := make(map[graph.NodeType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	f.preds = append(f.preds, func(n *graph.Node) bool {
		return set[n.Type]
	})
	return f
}

// WithSector keeps nodes whose sector equals s, case-insensitively
func (f *NodeFilter) WithSector(sector string) *NodeFilter {
	f.preds = append(f.preds, func(n *graph.Node) bool {
		return strings.EqualFold(n.Sector, sector)
	})
	return f
}

// WithSearch keeps nodes where the query appears (case-insensitive
// substring) in any text field or any tag — OR across all of them
func (f *NodeFilter) WithSearch(query string) *NodeFilter {
	q := strings.ToLower(query)
	f.preds = append(f.preds, func(n *graph.Node) bool {
		for _, field := range []string{
			n.Name, n.Description, n.Sector, n.Company, n.Role, n.Notes,
		} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		for _, tag := range n.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
	return f
}

// WithTags keeps nodes carrying every requested tag, case-insensitively
func (f *NodeFilter) WithTags(tags ...string) *NodeFilter {
	f.preds = append(f.preds, func(n *graph.Node) bool {
		for _, want := range tags {
			found := false
			for _, have := range n.Tags {
				if strings.EqualFold(have, want) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	})
	return f
}

// WithMinStrength keeps nodes with relationship strength >= min. Nodes
// without a strength never satisfy a strength bound.
func (f *NodeFilter) WithMinStrength(min int) *NodeFilter {
	f.preds = append(f.preds, func(n *graph.Node) bool {
		return n.RelationshipStrength != nil && *n.RelationshipStrength >= min
	})
	return f
}

// WithMaxStrength keeps nodes with relationship strength <= max
func (f *NodeFilter) WithMaxStrength(max int) *NodeFilter {
	f.preds = append(f.preds, func(n *graph.Node) bool {
		return n.RelationshipStrength != nil && *n.RelationshipStrength <= max
	})
	return f
}

// Matches evaluates the composed predicate. Ownership runs first and
// unconditionally.
func (f *NodeFilter) Matches(n *graph.Node) bool {
	if n.OwnerID != f.ownerID {
		return false
	}
	for _, pred := range f.preds {
		if !pred(n) {
			return false
		}
	}
	return true
}
