package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/internal/engine"
	"github.com/KohlJary/project-cass-sub004/pkg/config"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Opening self-model instance",
		zap.String("instance_id", cfg.InstanceID),
		zap.String("snapshot_path", cfg.SnapshotPath),
	)

	eng := engine.Open(cfg)
	defer func() {
		if err := eng.Close(); err != nil {
			log.Error("Snapshot flush failed on close", zap.Error(err))
		}
	}()

	eng.Maintain(context.Background())

	overview := eng.Builder.Snapshot(7, 10)
	fmt.Print(overview.Render())
}
