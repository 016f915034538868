package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/internal/engine"
	"github.com/KohlJary/project-cass-sub004/internal/graph"
	"github.com/KohlJary/project-cass-sub004/internal/ingest"
	"github.com/KohlJary/project-cass-sub004/pkg/config"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

// Seeds a fresh self-model snapshot with a small worked example so the
// overview, friction, and causal views have something to show.
func main() {
	force := flag.Bool("force", false, "Seed even if the snapshot already has nodes")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting self-model seeding...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	eng := engine.Open(cfg)
	defer func() {
		if err := eng.Close(); err != nil {
			log.Error("Snapshot save failed", zap.Error(err))
		}
	}()

	if eng.Store.NodeCount() > 0 && !*force {
		log.Info("Snapshot already populated, skipping (use -force to seed anyway)",
			zap.Int("nodes", eng.Store.NodeCount()),
		)
		return
	}

	now := time.Now().UTC()

	err = eng.Syncer.SyncBatch(func() error {
		if _, err := eng.Syncer.SyncJournal(ingest.Fact{
			ExternalID: "seed-journal-1",
			Content:    "Caught myself softening a code review comment three times before sending it",
			Timestamp:  now.AddDate(0, 0, -14),
		}); err != nil {
			return err
		}

		if _, err := eng.Syncer.SyncObservation(ingest.Fact{
			ExternalID:  "seed-obs-1",
			Content:     "I hedge when uncertain",
			Timestamp:   now.AddDate(0, 0, -10),
			EmergedFrom: []string{"seed-journal-1"},
		}); err != nil {
			return err
		}

		if _, err := eng.Syncer.SyncOpinion(ingest.Fact{
			ExternalID:  "seed-op-1",
			Content:     "I value directness",
			Timestamp:   now.AddDate(0, 0, -9),
			EvidencedBy: []string{"seed-journal-1"},
		}); err != nil {
			return err
		}

		if _, err := eng.Syncer.SyncUserObservation(ingest.Fact{
			ExternalID: "seed-uo-1",
			Content:    "Jamie prefers blunt feedback over cushioned phrasing",
			Timestamp:  now.AddDate(0, 0, -7),
			AboutUsers: []string{"seed-user-jamie"},
		}); err != nil {
			return err
		}

		for i, move := range []string{"toward", "toward", "away"} {
			if _, err := eng.Syncer.SyncSituationalInference(ingest.Fact{
				ExternalID: fmt.Sprintf("seed-si-%d", i+1),
				Content:    "read the pause as an invitation to go deeper",
				Timestamp:  now.AddDate(0, 0, -6+i),
				Metadata: map[string]string{
					"distance_move":      move,
					"driving_assumption": "they want depth",
				},
				AboutUsers: []string{"seed-user-jamie"},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Seed sync failed", zap.Error(err))
	}

	// The worked tension: a stated value at odds with observed behavior,
	// with a struggling intention attached
	opinion := eng.Store.FindNodes(nodeFilterByExternal("seed-op-1"))
	obs := eng.Store.FindNodes(nodeFilterByExternal("seed-obs-1"))
	if len(opinion) == 1 && len(obs) == 1 {
		if _, err := eng.Analyzer.AddContradiction(opinion[0].ID, obs[0].ID, "stated value vs observed behavior"); err != nil {
			log.Warn("Contradiction seed failed", zap.Error(err))
		}
	}

	intention, err := eng.Analyzer.RegisterIntention("speak more directly", "when hedging noticed")
	if err != nil {
		log.Fatal("Intention seed failed", zap.Error(err))
	}
	for _, success := range []bool{false, false, false, true, false} {
		if _, err := eng.Analyzer.LogOutcome(intention.ID, success, ""); err != nil {
			log.Fatal("Outcome seed failed", zap.Error(err))
		}
	}

	eng.Maintain(context.Background())

	log.Info("Self-model seeded",
		zap.Int("nodes", eng.Store.NodeCount()),
		zap.Int("edges", eng.Store.EdgeCount()),
	)
}

func nodeFilterByExternal(externalID string) graph.NodeFilter {
	return graph.NodeFilter{Metadata: map[string]string{"external_id": externalID}}
}
