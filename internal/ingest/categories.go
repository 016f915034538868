package ingest

import (
	"github.com/KohlJary/project-cass-sub004/internal/graph"
)

// ============================================================================
// Per-Category Upserts
// ============================================================================
//
// One idempotent upsert per external fact category. Upstream producers
// are numerous and independent, so every entry point validates and
// returns errors instead of panicking.

// SyncObservation upserts a self-observation
func (s *Syncer) SyncObservation(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeObservation, fact)
}

// SyncUserObservation upserts an observation about a user
func (s *Syncer) SyncUserObservation(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeUserObservation, fact)
}

// SyncOpinion upserts a held opinion
func (s *Syncer) SyncOpinion(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeOpinion, fact)
}

// SyncGrowthEdge upserts a growth area
func (s *Syncer) SyncGrowthEdge(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeGrowthEdge, fact)
}

// SyncMilestone upserts a milestone
func (s *Syncer) SyncMilestone(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeMilestone, fact)
}

// SyncMark upserts a mark
func (s *Syncer) SyncMark(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeMark, fact)
}

// SyncJournal upserts a journal entry
func (s *Syncer) SyncJournal(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeJournal, fact)
}

// SyncSoloReflection upserts a solo reflection
func (s *Syncer) SyncSoloReflection(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeSoloReflection, fact)
}

// SyncCognitiveSnapshot upserts a cognitive snapshot
func (s *Syncer) SyncCognitiveSnapshot(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeCognitiveSnapshot, fact)
}

// SyncSituationalInference upserts a situational inference. Categorical
// fields (distance_move, driving_assumption) ride in fact metadata and
// feed the pattern miner.
func (s *Syncer) SyncSituationalInference(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeSituationalInference, fact)
}

// SyncPresenceLog upserts a presence log entry
func (s *Syncer) SyncPresenceLog(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodePresenceLog, fact)
}

// SyncDailyRhythm upserts a daily rhythm entry
func (s *Syncer) SyncDailyRhythm(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeDailyRhythm, fact)
}

// SyncNarrationContext upserts a narration context
func (s *Syncer) SyncNarrationContext(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeNarrationContext, fact)
}

// SyncArchitecturalRequest upserts an architectural request
func (s *Syncer) SyncArchitecturalRequest(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeArchitecturalRequest, fact)
}

// SyncPreferenceTest upserts a preference test record
func (s *Syncer) SyncPreferenceTest(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodePreferenceTest, fact)
}

// SyncUser upserts a user profile node
func (s *Syncer) SyncUser(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeUser, fact)
}

// SyncConversation upserts a conversation
func (s *Syncer) SyncConversation(fact Fact) (*graph.Node, error) {
	return s.upsert(graph.NodeConversation, fact)
}

// SyncConversationMoment upserts a conversation moment and links it
// into its parent conversation with a contains edge
func (s *Syncer) SyncConversationMoment(fact Fact, conversationExternalID string) (*graph.Node, error) {
	node, err := s.upsert(graph.NodeConversationMoment, fact)
	if err != nil {
		return nil, err
	}
	if conversationExternalID != "" {
		if parent := s.ensurePlaceholder(graph.NodeConversation, conversationExternalID); parent != nil {
			if s.store.EdgeBetween(parent.ID, node.ID, graph.EdgeContains) == nil {
				s.store.AddEdge(&graph.Edge{
					SourceID: parent.ID, TargetID: node.ID, Type: graph.EdgeContains,
				})
			}
		}
	}
	return node, nil
}
