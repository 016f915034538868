package coherence

import (
	"time"

	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
	"github.com/KohlJary/project-cass-sub004/pkg/errors"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

// ============================================================================
// Contradiction Tracking
// ============================================================================
//
// Detection itself is an external decision; this component only records
// contradictions and answers queries over them.

// Analyzer tracks contradictions, intentions, and behavioral patterns
// over the self-model graph
type Analyzer struct {
	store  *graph.Store
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer over the store
func NewAnalyzer(store *graph.Store) *Analyzer {
	return &Analyzer{
		store:  store,
		logger: logger.Get(),
	}
}

// AddContradiction records a tension between two nodes. Both nodes must
// exist and a node cannot contradict itself. If an unresolved
// contradiction already links the pair, it is returned unchanged.
func (a *Analyzer) AddContradiction(nodeA, nodeB, tensionNote string) (*graph.Edge, error) {
	if nodeA == nodeB {
		return nil, errors.NewSelfContradiction(nodeA)
	}
	if !a.store.HasNode(nodeA) {
		return nil, errors.NewNodeNotFound(nodeA)
	}
	if !a.store.HasNode(nodeB) {
		return nil, errors.NewNodeNotFound(nodeB)
	}

	if existing := a.store.EdgeBetween(nodeA, nodeB, graph.EdgeContradicts); existing != nil {
		if existing.Contradiction != nil && !existing.Contradiction.Resolved {
			return existing, nil
		}
	}

	edge := &graph.Edge{
		SourceID: nodeA,
		TargetID: nodeB,
		Type:     graph.EdgeContradicts,
		Contradiction: &graph.ContradictionPayload{
			Resolved:     false,
			TensionNote:  tensionNote,
			DiscoveredAt: time.Now().UTC(),
		},
	}
	if !a.store.AddEdge(edge) {
		return nil, errors.NewBaseError(errors.ErrorTypeCoherence, "contradiction edge rejected", nil)
	}

	a.logger.Info("Contradiction recorded",
		zap.String("node_a", nodeA),
		zap.String("node_b", nodeB),
	)
	return edge, nil
}

// ResolveContradiction marks a contradiction resolved. It leaves the
// active tension set but stays in the audit trail.
func (a *Analyzer) ResolveContradiction(edgeID string) error {
	edge, err := a.store.GetEdge(edgeID)
	if err != nil || edge.Type != graph.EdgeContradicts || edge.Contradiction == nil {
		return errors.NewContradictionNotFound(edgeID)
	}
	if edge.Contradiction.Resolved {
		return nil
	}

	now := time.Now().UTC()
	edge.Contradiction.Resolved = true
	edge.Contradiction.ResolvedAt = &now
	a.store.Touch()

	a.logger.Info("Contradiction resolved",
		zap.String("edge_id", edgeID),
	)
	return nil
}

// FindContradictions returns all contradiction edges with the given
// resolved state. resolved=false drives active-tension reporting.
func (a *Analyzer) FindContradictions(resolved bool) []*graph.Edge {
	var results []*graph.Edge
	for _, edge := range a.store.AllEdges() {
		if edge.Type != graph.EdgeContradicts || edge.Contradiction == nil {
			continue
		}
		if edge.Contradiction.Resolved == resolved {
			results = append(results, edge)
		}
	}
	return results
}
