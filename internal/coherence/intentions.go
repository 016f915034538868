package coherence

import (
	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
	"github.com/KohlJary/project-cass-sub004/pkg/errors"
)

// ============================================================================
// Intention / Outcome Tracking
// ============================================================================

// RegisterIntention creates a behavioral intention with its firing
// condition. Intentions have no canonical external source, so they are
// created here rather than synced.
func (a *Analyzer) RegisterIntention(content, condition string) (*graph.Node, error) {
	if content == "" {
		return nil, errors.ErrMissingContent
	}

	node, err := a.store.AddNode(&graph.Node{
		Type:    graph.NodeIntention,
		Content: content,
		Intention: &graph.IntentionPayload{
			Condition: condition,
			Status:    graph.IntentionActive,
		},
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Intention registered",
		zap.String("intention_id", node.ID),
	)
	return node, nil
}

// LogOutcome records one attempt at an intention, creating an outcome
// node linked via tracks and bumping the parent counter in the same
// snapshot write
func (a *Analyzer) LogOutcome(intentionID string, success bool, note string) (*graph.Node, error) {
	intention, err := a.store.GetNode(intentionID)
	if err != nil || intention.Type != graph.NodeIntention {
		return nil, errors.NewIntentionNotFound(intentionID)
	}

	result := "failure"
	if success {
		result = "success"
	}

	a.store.BeginBatch()
	defer a.store.EndBatch()

	outcome, err := a.store.AddNode(&graph.Node{
		Type:    graph.NodeIntentionOutcome,
		Content: note,
		Metadata: map[string]string{
			"result": result,
		},
	})
	if err != nil {
		return nil, err
	}

	a.store.AddEdge(&graph.Edge{
		SourceID: outcome.ID,
		TargetID: intention.ID,
		Type:     graph.EdgeTracks,
	})

	if success {
		intention.Intention.SuccessCount++
	} else {
		intention.Intention.FailureCount++
	}
	a.store.Touch()

	a.logger.Debug("Outcome logged",
		zap.String("intention_id", intentionID),
		zap.Bool("success", success),
	)
	return outcome, nil
}

// ActiveIntentions returns all intentions still in active status
func (a *Analyzer) ActiveIntentions() []*graph.Node {
	var results []*graph.Node
	for _, node := range a.store.NodesByType(graph.NodeIntention) {
		if node.Intention != nil && node.Intention.Status == graph.IntentionActive {
			results = append(results, node)
		}
	}
	return results
}

// UpdateIntentionStatus transitions an intention's status. Transitions
// happen only on explicit request, never inferred from outcomes.
func (a *Analyzer) UpdateIntentionStatus(intentionID string, status graph.IntentionStatus) error {
	if !graph.ValidIntentionStatus(status) {
		return errors.NewInvalidIntentionStatus(string(status))
	}
	intention, err := a.store.GetNode(intentionID)
	if err != nil || intention.Type != graph.NodeIntention {
		return errors.NewIntentionNotFound(intentionID)
	}

	intention.Intention.Status = status
	a.store.Touch()

	a.logger.Info("Intention status updated",
		zap.String("intention_id", intentionID),
		zap.String("status", string(status)),
	)
	return nil
}

// Outcomes returns the outcome nodes tracking an intention
func (a *Analyzer) Outcomes(intentionID string) []*graph.Node {
	var results []*graph.Node
	for _, edge := range a.store.GetEdges(intentionID, graph.DirectionIn, graph.EdgeTracks) {
		if node, err := a.store.GetNode(edge.SourceID); err == nil {
			results = append(results, node)
		}
	}
	return results
}
