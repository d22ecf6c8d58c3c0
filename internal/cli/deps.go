package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/examples"
	"github.com/phrazzld/ankigen/internal/platform/gemini"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/platform/sqlite"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/phrazzld/ankigen/internal/store"
)

// dependencies holds the wired application components shared by the
// generate and serve commands.
type dependencies struct {
	cfg         *config.Config
	logger      *slog.Logger
	checkpoints store.CheckpointStore
	svc         *service.GenerationService
}

// buildDependencies loads configuration and constructs the generation
// pipeline. Configuration problems (a missing API key above all) fail here,
// before any run starts.
func buildDependencies(ctx context.Context, modelOverride string) (*dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if modelOverride != "" {
		cfg.LLM.ModelName = modelOverride
	}

	log := logger.Setup(cfg.Server)

	client, err := gemini.NewClient(ctx, log, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	loader, err := examples.NewLoader(log, cfg.Generation.ExamplesDir)
	if err != nil {
		return nil, err
	}

	// The checkpoint store is best-effort: an unusable path degrades to no
	// session resumption rather than blocking generation.
	var checkpoints store.CheckpointStore
	if cfg.Storage.CheckpointPath != "" {
		cp, err := sqlite.New(cfg.Storage.CheckpointPath)
		if err != nil {
			log.Warn("checkpoint store unavailable, session resumption disabled",
				"path", cfg.Storage.CheckpointPath,
				"error", err)
		} else {
			checkpoints = cp
		}
	}

	svc, err := service.NewGenerationService(log, client, loader, checkpoints, cfg.Generation)
	if err != nil {
		return nil, err
	}

	return &dependencies{
		cfg:         cfg,
		logger:      log,
		checkpoints: checkpoints,
		svc:         svc,
	}, nil
}

// close releases held resources.
func (d *dependencies) close() {
	if d.checkpoints != nil {
		if err := d.checkpoints.Close(); err != nil {
			d.logger.Warn("failed to close checkpoint store", "error", err)
		}
	}
}
