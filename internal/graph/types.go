package graph

import "time"

// ============================================================================
// Self-Model Graph Types
// ============================================================================

// NodeType is the closed set of entity categories in the self-model
type NodeType string

const (
	NodeObservation          NodeType = "observation"
	NodeUserObservation      NodeType = "user_observation"
	NodeOpinion              NodeType = "opinion"
	NodeGrowthEdge           NodeType = "growth_edge"
	NodeMilestone            NodeType = "milestone"
	NodeMark                 NodeType = "mark"
	NodeJournal              NodeType = "journal"
	NodeSoloReflection       NodeType = "solo_reflection"
	NodeConversation         NodeType = "conversation"
	NodeConversationMoment   NodeType = "conversation_moment"
	NodeUser                 NodeType = "user"
	NodeCognitiveSnapshot    NodeType = "cognitive_snapshot"
	NodeIntention            NodeType = "intention"
	NodeIntentionOutcome     NodeType = "intention_outcome"
	NodeSituationalInference NodeType = "situational_inference"
	NodePresenceLog          NodeType = "presence_log"
	NodeStake                NodeType = "stake"
	NodePreferenceTest       NodeType = "preference_test"
	NodeNarrationContext     NodeType = "narration_context"
	NodeArchitecturalRequest NodeType = "architectural_request"
	NodeDailyRhythm          NodeType = "daily_rhythm"
)

// EdgeType is the closed set of relationship categories
type EdgeType string

const (
	EdgeSupersedes     EdgeType = "supersedes"
	EdgePrecededBy     EdgeType = "preceded_by"
	EdgeFollowedBy     EdgeType = "followed_by"
	EdgeEmergedFrom    EdgeType = "emerged_from"
	EdgeEvidencedBy    EdgeType = "evidenced_by"
	EdgeRelatesTo      EdgeType = "relates_to"
	EdgeContradicts    EdgeType = "contradicts"
	EdgeSupports       EdgeType = "supports"
	EdgeRefines        EdgeType = "refines"
	EdgeAbout          EdgeType = "about"
	EdgeParticipatedIn EdgeType = "participated_in"
	EdgeContains       EdgeType = "contains"
	EdgeDevelops       EdgeType = "develops"
	EdgeTriggered      EdgeType = "triggered"
	EdgeTracks         EdgeType = "tracks"
	EdgeInferredFrom   EdgeType = "inferred_from"
	EdgeInformedBy     EdgeType = "informed_by"
)

var validNodeTypes = map[NodeType]bool{
	NodeObservation: true, NodeUserObservation: true, NodeOpinion: true,
	NodeGrowthEdge: true, NodeMilestone: true, NodeMark: true,
	NodeJournal: true, NodeSoloReflection: true, NodeConversation: true,
	NodeConversationMoment: true, NodeUser: true, NodeCognitiveSnapshot: true,
	NodeIntention: true, NodeIntentionOutcome: true, NodeSituationalInference: true,
	NodePresenceLog: true, NodeStake: true, NodePreferenceTest: true,
	NodeNarrationContext: true, NodeArchitecturalRequest: true, NodeDailyRhythm: true,
}

var validEdgeTypes = map[EdgeType]bool{
	EdgeSupersedes: true, EdgePrecededBy: true, EdgeFollowedBy: true,
	EdgeEmergedFrom: true, EdgeEvidencedBy: true, EdgeRelatesTo: true,
	EdgeContradicts: true, EdgeSupports: true, EdgeRefines: true,
	EdgeAbout: true, EdgeParticipatedIn: true, EdgeContains: true,
	EdgeDevelops: true, EdgeTriggered: true, EdgeTracks: true,
	EdgeInferredFrom: true, EdgeInformedBy: true,
}

// ValidNodeType reports whether t is in the closed node type set
func ValidNodeType(t NodeType) bool { return validNodeTypes[t] }

// ValidEdgeType reports whether t is in the closed edge type set
func ValidEdgeType(t EdgeType) bool { return validEdgeTypes[t] }

// ConnectableTypes are node types eligible for embedding and automatic
// edge suggestion
var ConnectableTypes = map[NodeType]bool{
	NodeObservation: true, NodeUserObservation: true, NodeOpinion: true,
	NodeGrowthEdge: true, NodeMilestone: true, NodeMark: true,
	NodeJournal: true, NodeSoloReflection: true, NodeCognitiveSnapshot: true,
	NodeSituationalInference: true, NodeStake: true, NodeIntention: true,
}

// RevisableTypes are node types that carry supersession chains
var RevisableTypes = map[NodeType]bool{
	NodeObservation: true, NodeMilestone: true, NodeMark: true,
}

// IdentityTypes are the identity-bearing node types used for centrality
// ranking
var IdentityTypes = map[NodeType]bool{
	NodeObservation: true, NodeOpinion: true, NodeGrowthEdge: true,
	NodeMilestone: true, NodeMark: true, NodeStake: true, NodeIntention: true,
}

// MeaningfulTypes are node types that count as meaningful recent changes
var MeaningfulTypes = map[NodeType]bool{
	NodeObservation: true, NodeUserObservation: true, NodeOpinion: true,
	NodeGrowthEdge: true, NodeMilestone: true, NodeMark: true,
	NodeJournal: true, NodeSoloReflection: true, NodeCognitiveSnapshot: true,
	NodeSituationalInference: true, NodeStake: true, NodeIntention: true,
	NodeIntentionOutcome: true,
}

// IntentionStatus is the lifecycle state of an intention
type IntentionStatus string

const (
	IntentionActive    IntentionStatus = "active"
	IntentionAchieved  IntentionStatus = "achieved"
	IntentionAbandoned IntentionStatus = "abandoned"
)

// ValidIntentionStatus reports whether s is a known status
func ValidIntentionStatus(s IntentionStatus) bool {
	return s == IntentionActive || s == IntentionAchieved || s == IntentionAbandoned
}

// IntentionPayload is the typed payload carried by intention nodes
type IntentionPayload struct {
	Condition    string          `json:"condition"`
	Status       IntentionStatus `json:"status"`
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
}

// Attempts returns the total number of logged outcomes
func (p *IntentionPayload) Attempts() int {
	return p.SuccessCount + p.FailureCount
}

// SuccessRate returns k/n over logged outcomes, or nil when none exist
func (p *IntentionPayload) SuccessRate() *float64 {
	n := p.Attempts()
	if n == 0 {
		return nil
	}
	rate := float64(p.SuccessCount) / float64(n)
	return &rate
}

// ContradictionPayload is the typed payload carried by contradicts edges
type ContradictionPayload struct {
	Resolved     bool       `json:"resolved"`
	TensionNote  string     `json:"tension_note,omitempty"`
	DiscoveredAt time.Time  `json:"discovered_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// Node is a typed entity in the self-model graph.
//
// Metadata is a residual open map for extension fields; structured data
// with a known shape (intention state) lives in a typed payload instead.
type Node struct {
	ID        string            `json:"id"`
	Type      NodeType          `json:"type"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`

	// Typed payloads, present only for the matching node type
	Intention *IntentionPayload `json:"intention,omitempty"`
}

// ExternalID returns the upstream fact id this node mirrors, if any.
// The external id namespace is distinct from internal node ids.
func (n *Node) ExternalID() string {
	return n.Metadata["external_id"]
}

// Edge is a typed directed relationship between two nodes.
//
// relates_to edges are logically bidirectional but stored once; the
// store's undirected views handle the reverse direction.
type Edge struct {
	ID         string            `json:"id"`
	SourceID   string            `json:"source_id"`
	TargetID   string            `json:"target_id"`
	Type       EdgeType          `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
	Strength   float64           `json:"strength,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`

	// Typed payloads, present only for the matching edge type
	Contradiction *ContradictionPayload `json:"contradiction,omitempty"`
}

// Direction selects which edges to follow from a node
type Direction string

const (
	DirectionOut  Direction = "out"
	DirectionIn   Direction = "in"
	DirectionBoth Direction = "both"
)

// NodeFilter narrows FindNodes results. Zero values mean "any".
type NodeFilter struct {
	Type             NodeType
	ContentSubstring string
	Metadata         map[string]string
}
