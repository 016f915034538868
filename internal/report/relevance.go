package report

import (
	"sort"
	"strings"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
)

// ============================================================================
// Message Relevance
// ============================================================================

// RelevantNode is one node scored against an incoming message
type RelevantNode struct {
	Node  *graph.Node
	Score float64
}

var stopwords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "are": true,
	"was": true, "were": true, "with": true, "that": true, "this": true,
	"have": true, "has": true, "had": true, "not": true, "you": true,
	"your": true, "they": true, "them": true, "their": true, "its": true,
	"about": true, "what": true, "when": true, "where": true, "which": true,
	"would": true, "could": true, "should": true, "there": true, "been": true,
	"being": true, "into": true, "from": true, "just": true, "like": true,
	"some": true, "more": true, "very": true, "than": true, "then": true,
	"because": true, "while": true, "also": true, "only": true, "over": true,
}

// typeWeights rank how much each node type matters when matching a
// message against the self-model
var typeWeights = map[graph.NodeType]float64{
	graph.NodeOpinion:              1.5,
	graph.NodeStake:                1.5,
	graph.NodeGrowthEdge:           1.3,
	graph.NodeIntention:            1.3,
	graph.NodeObservation:          1.2,
	graph.NodeMark:                 1.2,
	graph.NodeMilestone:            1.1,
	graph.NodeUserObservation:      1.0,
	graph.NodeJournal:              0.9,
	graph.NodeSoloReflection:       0.9,
	graph.NodeCognitiveSnapshot:    0.8,
	graph.NodeSituationalInference: 0.8,
}

// keywords tokenizes text into lowercase terms, dropping stopwords and
// anything shorter than three characters
func keywords(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if len(word) < 3 || stopwords[word] {
			continue
		}
		terms[word] = true
	}
	return terms
}

// MessageRelevantNodes scores nodes against a message by keyword
// overlap, weighted by node-type importance and connectivity
// (1 + 0.1 x degree), best first
func (b *Builder) MessageRelevantNodes(text string, limit int) []RelevantNode {
	if limit <= 0 {
		limit = 5
	}

	terms := keywords(text)
	if len(terms) == 0 {
		return nil
	}

	var results []RelevantNode
	for _, node := range b.store.AllNodes() {
		weight, scored := typeWeights[node.Type]
		if !scored {
			continue
		}

		overlap := 0
		for term := range keywords(node.Content) {
			if terms[term] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}

		degree := b.store.Degree(node.ID)
		score := float64(overlap) * weight * (1 + 0.1*float64(degree))
		results = append(results, RelevantNode{Node: node, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
