package coherence

import (
	"sort"
	"strings"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
)

// ============================================================================
// Friction Detection
// ============================================================================
//
// Friction points are active intentions that keep failing despite a
// meaningful number of attempts. The hypothesis table is fixed and
// rule-based so every annotation stays auditable.

// FrictionPoint is an active intention failing often enough to matter
type FrictionPoint struct {
	Intention      *graph.Node
	SuccessRate    float64
	Attempts       int
	Hypothesis     string
	Recommendation string
}

// Awareness cues: condition phrasings that depend on catching a moment
// as it happens rather than on an external trigger
var awarenessCues = []string{
	"in the moment",
	"when i notice",
	"as i notice",
	"mid-conversation",
	"when i realize",
	"as it happens",
}

// FrictionPoints returns active intentions with at least minAttempts
// logged outcomes and a success rate at or below maxSuccessRate, each
// annotated with a hypothesis and recommendation, worst first
func (a *Analyzer) FrictionPoints(minAttempts int, maxSuccessRate float64) []FrictionPoint {
	if minAttempts < 1 {
		minAttempts = 1
	}

	var points []FrictionPoint
	for _, intention := range a.ActiveIntentions() {
		payload := intention.Intention
		attempts := payload.Attempts()
		if attempts < minAttempts {
			continue
		}
		rate := float64(payload.SuccessCount) / float64(attempts)
		if rate > maxSuccessRate {
			continue
		}

		hypothesis, recommendation := classifyFriction(payload, rate)
		points = append(points, FrictionPoint{
			Intention:      intention,
			SuccessRate:    rate,
			Attempts:       attempts,
			Hypothesis:     hypothesis,
			Recommendation: recommendation,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].SuccessRate != points[j].SuccessRate {
			return points[i].SuccessRate < points[j].SuccessRate
		}
		return points[i].Attempts > points[j].Attempts
	})
	return points
}

// classifyFriction applies the fixed decision table, first match wins
func classifyFriction(payload *graph.IntentionPayload, rate float64) (string, string) {
	switch {
	case payload.SuccessCount == 0:
		return "structural barrier",
			"zero successes suggests the blocker is environmental, not motivational; identify what makes this impossible in practice"
	case rate < 0.2:
		return "conflicts with existing pattern",
			"find the competing habit this intention keeps losing to and address that pattern directly"
	case hasAwarenessCue(payload.Condition):
		return "needs external trigger",
			"in-the-moment awareness is not firing reliably; attach this intention to an external cue instead"
	default:
		return "partial habituation",
			"the behavior is taking hold; keep logging outcomes and revisit after more attempts"
	}
}

// hasAwarenessCue reports whether a condition depends on in-the-moment
// self-awareness
func hasAwarenessCue(condition string) bool {
	lowered := strings.ToLower(condition)
	for _, cue := range awarenessCues {
		if strings.Contains(lowered, cue) {
			return true
		}
	}
	return false
}
