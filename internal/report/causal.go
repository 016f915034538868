package report

import (
	"fmt"
	"strings"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
)

// ============================================================================
// Causal Context
// ============================================================================

// CausalTrace explains where a piece of self-knowledge came from: its
// emerged_from ancestry, its evidence, and the revision chain it sits in
type CausalTrace struct {
	Node        *graph.Node
	EmergedFrom []*graph.Node
	EvidencedBy []*graph.Node
	Revisions   []*graph.Node
}

// CausalContext builds the causal trace for a node
func (b *Builder) CausalContext(nodeID string) (*CausalTrace, error) {
	node, err := b.store.GetNode(nodeID)
	if err != nil {
		return nil, err
	}

	trace := &CausalTrace{Node: node}

	// emerged_from ancestry, breadth-first up to a few hops
	trace.EmergedFrom = b.store.Traverse(nodeID, []graph.EdgeType{graph.EdgeEmergedFrom}, 3, graph.DirectionOut)

	for _, edge := range b.store.GetEdges(nodeID, graph.DirectionOut, graph.EdgeEvidencedBy) {
		if evidence, err := b.store.GetNode(edge.TargetID); err == nil {
			trace.EvidencedBy = append(trace.EvidencedBy, evidence)
		}
	}

	if chain, err := b.store.Evolution(nodeID); err == nil && len(chain) > 1 {
		trace.Revisions = chain
	}

	return trace, nil
}

// Render formats the trace as indented human-readable text
func (t *CausalTrace) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", t.Node.Type, t.Node.Content)

	if len(t.EmergedFrom) > 0 {
		sb.WriteString("Emerged from:\n")
		for _, node := range t.EmergedFrom {
			fmt.Fprintf(&sb, "  - [%s] %s\n", node.Type, node.Content)
		}
	}
	if len(t.EvidencedBy) > 0 {
		sb.WriteString("Evidenced by:\n")
		for _, node := range t.EvidencedBy {
			fmt.Fprintf(&sb, "  - [%s] %s\n", node.Type, node.Content)
		}
	}
	if len(t.Revisions) > 0 {
		sb.WriteString("Revision history:\n")
		for i, node := range t.Revisions {
			marker := " "
			if node.ID == t.Node.ID {
				marker = "*"
			}
			fmt.Fprintf(&sb, " %s%d. %s (%s)\n", marker, i+1, node.Content, node.CreatedAt.Format("2006-01-02"))
		}
	}
	return sb.String()
}
