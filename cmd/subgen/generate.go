package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"subgen/internal/assets"
	"subgen/internal/config"
	"subgen/internal/history"
	"subgen/internal/logging"
	"subgen/internal/pipeline"
)

func runGenerate(cmd *cobra.Command, cmdCtx *commandContext, inputArg string) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	input, err := resolveInputPath(inputArg)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}

	cacheRoot, err := cfg.CacheRoot()
	if err != nil {
		return err
	}

	reporter := newProgressReporter(logger)
	defer reporter.finish()

	manager := assets.NewManager(assets.Options{
		Root:              cacheRoot,
		ModelBaseURL:      cfg.Model.BaseURL,
		TranscoderBaseURL: cfg.Transcoder.DownloadURL,
		Logger:            logger,
		OnProgress:        reporter.observe,
	})

	store, err := openHistory(cfg, manager, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := pipeline.NewRunner(pipeline.Options{
		Config:  cfg,
		Assets:  manager,
		History: store,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	result, err := runner.Generate(cmd.Context(), input)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.OutputPath)
	return nil
}

// openHistory returns nil when history is disabled; pipeline treats a nil
// store as "don't record".
func openHistory(cfg *config.Config, manager *assets.Manager, logger *slog.Logger) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	// The database lives inside the cache, which must exist first.
	if err := manager.EnsureCache(); err != nil {
		return nil, err
	}
	store, err := history.Open(filepath.Join(manager.Root(), "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}
