package report

import (
	"fmt"
	"strings"

	"github.com/KohlJary/project-cass-sub004/internal/coherence"
	"github.com/KohlJary/project-cass-sub004/internal/graph"
)

// ============================================================================
// Composite Overview
// ============================================================================

// Tension is one unresolved contradiction rendered for a consumer
type Tension struct {
	EdgeID string
	NodeA  *graph.Node
	NodeB  *graph.Node
	Note   string
}

// Overview is the composite context view handed to a downstream
// consumer building a prompt fragment
type Overview struct {
	IntegrationScore float64
	NodeCount        int
	EdgeCount        int
	ActiveTensions   []Tension
	FrictionPoints   []coherence.FrictionPoint
	RecentChanges    []*graph.Node
	CentralNodes     []*graph.Node
}

// Snapshot assembles the composite overview: health score, active
// tensions, friction points, recent changes, and the most central
// self-knowledge
func (b *Builder) Snapshot(recentDays, limit int) *Overview {
	overview := &Overview{
		IntegrationScore: b.IntegrationScore(),
		NodeCount:        b.store.NodeCount(),
		EdgeCount:        b.store.EdgeCount(),
		FrictionPoints:   b.analyzer.FrictionPoints(b.frictionMinAttempts, b.frictionMaxSuccessRate),
		RecentChanges:    b.RecentChanges(recentDays, limit),
		CentralNodes:     b.CentralNodes(limit),
	}

	for _, edge := range b.analyzer.FindContradictions(false) {
		nodeA, errA := b.store.GetNode(edge.SourceID)
		nodeB, errB := b.store.GetNode(edge.TargetID)
		if errA != nil || errB != nil {
			continue
		}
		note := ""
		if edge.Contradiction != nil {
			note = edge.Contradiction.TensionNote
		}
		overview.ActiveTensions = append(overview.ActiveTensions, Tension{
			EdgeID: edge.ID,
			NodeA:  nodeA,
			NodeB:  nodeB,
			Note:   note,
		})
	}

	return overview
}

// Render formats the overview as human-readable text
func (o *Overview) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Self-model health: %.1f/100 (%d nodes, %d edges)\n",
		o.IntegrationScore, o.NodeCount, o.EdgeCount)

	if len(o.ActiveTensions) > 0 {
		sb.WriteString("Active tensions:\n")
		for _, tension := range o.ActiveTensions {
			fmt.Fprintf(&sb, "  - %q vs %q", tension.NodeA.Content, tension.NodeB.Content)
			if tension.Note != "" {
				fmt.Fprintf(&sb, " (%s)", tension.Note)
			}
			sb.WriteString("\n")
		}
	}
	if len(o.FrictionPoints) > 0 {
		sb.WriteString("Friction points:\n")
		for _, point := range o.FrictionPoints {
			fmt.Fprintf(&sb, "  - %q: %.0f%% over %d attempts (%s)\n",
				point.Intention.Content, point.SuccessRate*100, point.Attempts, point.Hypothesis)
		}
	}
	if len(o.RecentChanges) > 0 {
		sb.WriteString("Recent changes:\n")
		for _, node := range o.RecentChanges {
			fmt.Fprintf(&sb, "  - [%s] %s\n", node.Type, node.Content)
		}
	}
	if len(o.CentralNodes) > 0 {
		sb.WriteString("Central self-knowledge:\n")
		for _, node := range o.CentralNodes {
			fmt.Fprintf(&sb, "  - [%s] %s\n", node.Type, node.Content)
		}
	}
	return sb.String()
}
