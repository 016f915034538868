package coherence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
)

func newTestAnalyzer(t *testing.T) (*Analyzer, *graph.Store) {
	t.Helper()
	store := graph.NewStore("")
	return NewAnalyzer(store), store
}

func mustAddNode(t *testing.T, s *graph.Store, nodeType graph.NodeType, content string) *graph.Node {
	t.Helper()
	node, err := s.AddNode(&graph.Node{Type: nodeType, Content: content})
	require.NoError(t, err)
	return node
}

func TestAnalyzer_ContradictionLifecycle(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)
	opinion := mustAddNode(t, analyzer.store, graph.NodeOpinion, "I value directness")
	obs := mustAddNode(t, analyzer.store, graph.NodeObservation, "I hedge when uncertain")

	edge, err := analyzer.AddContradiction(opinion.ID, obs.ID, "stated value vs observed behavior")
	require.NoError(t, err)
	require.NotNil(t, edge.Contradiction)
	assert.False(t, edge.Contradiction.Resolved)
	assert.Equal(t, "stated value vs observed behavior", edge.Contradiction.TensionNote)
	assert.False(t, edge.Contradiction.DiscoveredAt.IsZero())

	// Re-adding the same unresolved pair returns the existing edge
	again, err := analyzer.AddContradiction(opinion.ID, obs.ID, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, edge.ID, again.ID)
	assert.Len(t, analyzer.FindContradictions(false), 1)

	require.NoError(t, analyzer.ResolveContradiction(edge.ID))
	assert.True(t, edge.Contradiction.Resolved)
	require.NotNil(t, edge.Contradiction.ResolvedAt)

	// Resolving stays in the audit trail, out of the active set
	assert.Empty(t, analyzer.FindContradictions(false))
	assert.Len(t, analyzer.FindContradictions(true), 1)

	// Resolving twice is a no-op
	require.NoError(t, analyzer.ResolveContradiction(edge.ID))

	// After resolution the pair can contradict again
	fresh, err := analyzer.AddContradiction(opinion.ID, obs.ID, "resurfaced")
	require.NoError(t, err)
	assert.NotEqual(t, edge.ID, fresh.ID)
	assert.Len(t, analyzer.FindContradictions(false), 1)
}

func TestAnalyzer_AddContradiction_Validation(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)
	node := mustAddNode(t, analyzer.store, graph.NodeOpinion, "something")

	_, err := analyzer.AddContradiction(node.ID, node.ID, "self")
	assert.Error(t, err)

	_, err = analyzer.AddContradiction(node.ID, "missing", "ghost")
	assert.Error(t, err)

	err = analyzer.ResolveContradiction("not-an-edge")
	assert.Error(t, err)
}

func TestAnalyzer_IntentionOutcomes(t *testing.T) {
	analyzer, store := newTestAnalyzer(t)

	intention, err := analyzer.RegisterIntention("speak more directly", "when hedging noticed")
	require.NoError(t, err)
	require.NotNil(t, intention.Intention)
	assert.Equal(t, graph.IntentionActive, intention.Intention.Status)
	assert.Nil(t, intention.Intention.SuccessRate(), "no attempts yet means no rate")

	outcome, err := analyzer.LogOutcome(intention.ID, false, "hedged anyway")
	require.NoError(t, err)
	assert.Equal(t, "failure", outcome.Metadata["result"])

	_, err = analyzer.LogOutcome(intention.ID, true, "held the line")
	require.NoError(t, err)

	assert.Equal(t, 1, intention.Intention.SuccessCount)
	assert.Equal(t, 1, intention.Intention.FailureCount)
	rate := intention.Intention.SuccessRate()
	require.NotNil(t, rate)
	assert.InDelta(t, 0.5, *rate, 1e-9)

	assert.Len(t, analyzer.Outcomes(intention.ID), 2)
	assert.Equal(t, 3, store.NodeCount())
}

func TestAnalyzer_LogOutcome_RequiresIntention(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)
	obs := mustAddNode(t, analyzer.store, graph.NodeObservation, "not an intention")

	_, err := analyzer.LogOutcome(obs.ID, true, "")
	assert.Error(t, err)
	_, err = analyzer.LogOutcome("missing", true, "")
	assert.Error(t, err)
}

func TestAnalyzer_IntentionStatusTransitions(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	intention, err := analyzer.RegisterIntention("pause before answering", "")
	require.NoError(t, err)
	require.Len(t, analyzer.ActiveIntentions(), 1)

	// Outcomes never change status by themselves
	for i := 0; i < 10; i++ {
		_, err = analyzer.LogOutcome(intention.ID, true, "")
		require.NoError(t, err)
	}
	assert.Equal(t, graph.IntentionActive, intention.Intention.Status)

	require.NoError(t, analyzer.UpdateIntentionStatus(intention.ID, graph.IntentionAchieved))
	assert.Empty(t, analyzer.ActiveIntentions())

	assert.Error(t, analyzer.UpdateIntentionStatus(intention.ID, "paused"))
}

func TestAnalyzer_FrictionPoints(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	logOutcomes := func(id string, successes, failures int) {
		for i := 0; i < successes; i++ {
			_, err := analyzer.LogOutcome(id, true, "")
			require.NoError(t, err)
		}
		for i := 0; i < failures; i++ {
			_, err := analyzer.LogOutcome(id, false, "")
			require.NoError(t, err)
		}
	}

	blocked, err := analyzer.RegisterIntention("write every morning", "after coffee")
	require.NoError(t, err)
	logOutcomes(blocked.ID, 0, 5)

	losing, err := analyzer.RegisterIntention("stop apologizing preemptively", "at the start of replies")
	require.NoError(t, err)
	logOutcomes(losing.ID, 1, 9)

	aware, err := analyzer.RegisterIntention("slow down", "when I notice I'm rushing")
	require.NoError(t, err)
	logOutcomes(aware.ID, 2, 4)

	settling, err := analyzer.RegisterIntention("ask before assuming", "during planning")
	require.NoError(t, err)
	logOutcomes(settling.ID, 2, 4)

	healthy, err := analyzer.RegisterIntention("thriving habit", "")
	require.NoError(t, err)
	logOutcomes(healthy.ID, 8, 2)

	sparse, err := analyzer.RegisterIntention("too few attempts", "")
	require.NoError(t, err)
	logOutcomes(sparse.ID, 0, 2)

	points := analyzer.FrictionPoints(3, 0.5)
	require.Len(t, points, 4)

	// Worst success rate first
	assert.Equal(t, blocked.ID, points[0].Intention.ID)
	assert.Equal(t, "structural barrier", points[0].Hypothesis)

	assert.Equal(t, losing.ID, points[1].Intention.ID)
	assert.Equal(t, "conflicts with existing pattern", points[1].Hypothesis)

	byID := map[string]FrictionPoint{}
	for _, p := range points {
		byID[p.Intention.ID] = p
	}
	assert.Equal(t, "needs external trigger", byID[aware.ID].Hypothesis)
	assert.Equal(t, "partial habituation", byID[settling.ID].Hypothesis)

	for _, p := range points {
		assert.NotEmpty(t, p.Recommendation)
	}
}

func TestAnalyzer_FrictionIgnoresInactiveIntentions(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	abandoned, err := analyzer.RegisterIntention("given up", "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = analyzer.LogOutcome(abandoned.ID, false, "")
		require.NoError(t, err)
	}
	require.NoError(t, analyzer.UpdateIntentionStatus(abandoned.ID, graph.IntentionAbandoned))

	assert.Empty(t, analyzer.FrictionPoints(3, 0.5))
}

// The worked example: a stated value contradicted by observed behavior,
// with a struggling intention attached to the tension.
func TestAnalyzer_DirectnessScenario(t *testing.T) {
	analyzer, store := newTestAnalyzer(t)

	opinion := mustAddNode(t, store, graph.NodeOpinion, "I value directness")
	obs := mustAddNode(t, store, graph.NodeObservation, "I hedge when uncertain")

	tension, err := analyzer.AddContradiction(opinion.ID, obs.ID, "stated value vs observed behavior")
	require.NoError(t, err)

	intention, err := analyzer.RegisterIntention("speak more directly", "when hedging noticed")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err = analyzer.LogOutcome(intention.ID, false, "")
		require.NoError(t, err)
	}
	_, err = analyzer.LogOutcome(intention.ID, true, "")
	require.NoError(t, err)

	require.Len(t, analyzer.FindContradictions(false), 1)
	assert.Equal(t, tension.ID, analyzer.FindContradictions(false)[0].ID)

	points := analyzer.FrictionPoints(3, 0.5)
	require.Len(t, points, 1)
	assert.Equal(t, intention.ID, points[0].Intention.ID)
	assert.Equal(t, 5, points[0].Attempts)
	assert.InDelta(t, 0.2, points[0].SuccessRate, 1e-9)
	assert.Equal(t, "partial habituation", points[0].Hypothesis)
}

func TestAnalyzer_MinePatterns(t *testing.T) {
	analyzer, store := newTestAnalyzer(t)

	user, err := store.AddNode(&graph.Node{
		Type:     graph.NodeUser,
		Content:  "Jamie",
		Metadata: map[string]string{"external_id": "user-7"},
	})
	require.NoError(t, err)

	addInference := func(distanceMove, assumption string, aboutUser bool) {
		node, err := store.AddNode(&graph.Node{
			Type:    graph.NodeSituationalInference,
			Content: "inference",
			Metadata: map[string]string{
				"distance_move":      distanceMove,
				"driving_assumption": assumption,
			},
		})
		require.NoError(t, err)
		if aboutUser {
			require.True(t, store.AddEdge(&graph.Edge{
				SourceID: node.ID, TargetID: user.ID, Type: graph.EdgeAbout,
			}))
		}
	}

	addInference("toward", "they want depth", true)
	addInference("toward", "they want depth", true)
	addInference("toward", "they want brevity", true)
	addInference("away", "they want brevity", false)

	// Presence logs feed the same counters
	_, err = store.AddNode(&graph.Node{
		Type:     graph.NodePresenceLog,
		Content:  "log",
		Metadata: map[string]string{"distance_move": "toward"},
	})
	require.NoError(t, err)

	all := analyzer.MinePatterns("", 2)
	require.NotEmpty(t, all)
	assert.Equal(t, PatternCount{Field: "distance_move", Value: "toward", Count: 4}, all[0])

	// Narrowed to one user, the unlinked events drop out
	forUser := analyzer.MinePatterns("user-7", 2)
	require.Len(t, forUser, 2)
	assert.Equal(t, PatternCount{Field: "distance_move", Value: "toward", Count: 3}, forUser[0])
	assert.Equal(t, PatternCount{Field: "driving_assumption", Value: "they want depth", Count: 2}, forUser[1])

	// Below-threshold singletons never appear
	for _, p := range all {
		assert.GreaterOrEqual(t, p.Count, 2)
	}
}
