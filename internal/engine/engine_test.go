package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KohlJary/project-cass-sub004/internal/ingest"
	"github.com/KohlJary/project-cass-sub004/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                    "development",
		InstanceID:             "test",
		SnapshotPath:           filepath.Join(t.TempDir(), "self_model.json"),
		EmbeddingTimeout:       time.Second,
		SimilarityThreshold:    0.35,
		SimilarityLimit:        5,
		FrictionMinAttempts:    3,
		FrictionMaxSuccessRate: 0.5,
	}
}

func TestOpen_DegradedWithoutProvider(t *testing.T) {
	eng := Open(testConfig(t))

	assert.False(t, eng.Index.Available())

	_, err := eng.Syncer.SyncObservation(ingest.Fact{ExternalID: "obs-1", Content: "works without similarity"})
	require.NoError(t, err)

	eng.Maintain(context.Background())
	require.NoError(t, eng.Close())
	assert.Equal(t, 1, eng.Store.NodeCount())
}

func TestOpen_ReloadsSnapshot(t *testing.T) {
	cfg := testConfig(t)

	eng := Open(cfg)
	_, err := eng.Syncer.SyncObservation(ingest.Fact{ExternalID: "obs-1", Content: "persisted"})
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	reopened := Open(cfg)
	assert.Equal(t, 1, reopened.Store.NodeCount())
}

func TestOpen_FrictionThresholdsReachOverview(t *testing.T) {
	cfg := testConfig(t)
	eng := Open(cfg)

	intention, err := eng.Analyzer.RegisterIntention("speak more directly", "when hedging noticed")
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = eng.Analyzer.LogOutcome(intention.ID, false, "")
		require.NoError(t, err)
	}
	_, err = eng.Analyzer.LogOutcome(intention.ID, true, "")
	require.NoError(t, err)

	overview := eng.Builder.Snapshot(7, 10)
	require.Len(t, overview.FrictionPoints, 1)
	assert.InDelta(t, 0.2, overview.FrictionPoints[0].SuccessRate, 1e-9)

	// Tighter configured thresholds exclude the same intention
	strictCfg := testConfig(t)
	strictCfg.FrictionMinAttempts = 6
	strict := Open(strictCfg)
	intention2, err := strict.Analyzer.RegisterIntention("speak more directly", "when hedging noticed")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = strict.Analyzer.LogOutcome(intention2.ID, i == 4, "")
		require.NoError(t, err)
	}
	assert.Empty(t, strict.Builder.Snapshot(7, 10).FrictionPoints)
}

func TestOpen_CarriesSimilarityLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.SimilarityLimit = 2

	eng := Open(cfg)
	assert.Equal(t, 2, eng.similarityLimit)
}
