package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/internal/coherence"
	"github.com/KohlJary/project-cass-sub004/internal/graph"
	"github.com/KohlJary/project-cass-sub004/internal/ingest"
	"github.com/KohlJary/project-cass-sub004/internal/report"
	"github.com/KohlJary/project-cass-sub004/internal/similarity"
	"github.com/KohlJary/project-cass-sub004/pkg/config"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

// Engine owns one self-model instance for its whole lifecycle: the
// store is constructed here and passed by reference into the sync
// engine, analyzer, and context builder. There is no process-wide
// instance; whoever owns the session owns the engine.
type Engine struct {
	Store    *graph.Store
	Index    *similarity.Index
	Syncer   *ingest.Syncer
	Analyzer *coherence.Analyzer
	Builder  *report.Builder

	// Per-node suggestion budget for the connect-disconnected pass
	similarityLimit int

	logger *zap.Logger
}

// Open loads (or creates) the instance snapshot and wires every
// component. With no embedding API key configured the similarity index
// runs in degraded mode and the rest of the engine works normally.
func Open(cfg *config.Config) *Engine {
	log := logger.Get()

	store := graph.NewStore(cfg.SnapshotPath)
	store.Load()
	if dropped := store.PruneDanglingEdges(); dropped > 0 {
		log.Warn("Consistency pass dropped edges on load",
			zap.Int("count", dropped),
		)
	}

	var embedder similarity.Embedder
	if cfg.EmbeddingAPIKey != "" || cfg.EmbeddingBaseURL != "" {
		embedder = similarity.NewOpenAIEmbedder(
			cfg.EmbeddingBaseURL,
			cfg.EmbeddingAPIKey,
			cfg.EmbeddingModel,
			cfg.EmbeddingTimeout,
		)
	} else {
		log.Info("No embedding provider configured, similarity disabled")
	}
	index := similarity.NewIndex(store, embedder, cfg.SimilarityThreshold)

	analyzer := coherence.NewAnalyzer(store)

	return &Engine{
		Store:           store,
		Index:           index,
		Syncer:          ingest.NewSyncer(store, index),
		Analyzer:        analyzer,
		Builder:         report.NewBuilder(store, analyzer, cfg.FrictionMinAttempts, cfg.FrictionMaxSuccessRate),
		similarityLimit: cfg.SimilarityLimit,
		logger:          log,
	}
}

// Maintain runs the periodic background passes: the edge consistency
// pass and the connect-disconnected-nodes pass. Callers schedule it;
// the engine never runs it inline with writes.
func (e *Engine) Maintain(ctx context.Context) {
	dropped := e.Store.PruneDanglingEdges()
	connected := e.Index.ConnectDisconnected(ctx, e.similarityLimit)
	e.logger.Info("Maintenance pass complete",
		zap.Int("edges_dropped", dropped),
		zap.Int("edges_created", connected),
	)
}

// Close flushes the snapshot to disk
func (e *Engine) Close() error {
	return e.Store.Save()
}
