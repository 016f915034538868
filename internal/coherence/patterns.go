package coherence

import (
	"sort"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
)

// ============================================================================
// Pattern Mining
// ============================================================================

// PatternCount is one repeated categorical label with its frequency
type PatternCount struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Categorical metadata fields mined across logged events
var patternFields = []string{"distance_move", "driving_assumption"}

// Event node types the miner aggregates over
var patternSources = []graph.NodeType{
	graph.NodeSituationalInference,
	graph.NodePresenceLog,
}

// MinePatterns aggregates repeated categorical labels across
// situational inferences and presence logs. userExternalID narrows to
// events about one user ("" means all); items occurring fewer than
// minCount times are dropped. Results are sorted by frequency, ties by
// field then value for stable output.
func (a *Analyzer) MinePatterns(userExternalID string, minCount int) []PatternCount {
	if minCount < 1 {
		minCount = 2
	}

	counts := make(map[[2]string]int)
	for _, sourceType := range patternSources {
		for _, node := range a.store.NodesByType(sourceType) {
			if userExternalID != "" && !a.aboutUser(node, userExternalID) {
				continue
			}
			for _, field := range patternFields {
				value := node.Metadata[field]
				if value == "" {
					continue
				}
				counts[[2]string{field, value}]++
			}
		}
	}

	var results []PatternCount
	for key, count := range counts {
		if count < minCount {
			continue
		}
		results = append(results, PatternCount{
			Field: key[0],
			Value: key[1],
			Count: count,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		if results[i].Field != results[j].Field {
			return results[i].Field < results[j].Field
		}
		return results[i].Value < results[j].Value
	})
	return results
}

// aboutUser reports whether an event node carries an about edge to the
// given user
func (a *Analyzer) aboutUser(node *graph.Node, userExternalID string) bool {
	for _, edge := range a.store.GetEdges(node.ID, graph.DirectionOut, graph.EdgeAbout) {
		target, err := a.store.GetNode(edge.TargetID)
		if err != nil {
			continue
		}
		if target.Type == graph.NodeUser && target.ExternalID() == userExternalID {
			return true
		}
	}
	return false
}
