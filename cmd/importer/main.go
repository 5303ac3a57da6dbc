package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/rickgao/market-insight/internal/config"
	"github.com/rickgao/market-insight/internal/database"
	"github.com/rickgao/market-insight/internal/ingest"
	"github.com/rickgao/market-insight/internal/sanitize"
	"github.com/rickgao/market-insight/internal/store"
	"github.com/rickgao/market-insight/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/importer.local.yaml", "path to config file")
	migrateFlag := flag.Bool("migrate", false, "apply pending schema migrations before importing")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting importer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateImporter(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"data_dir", cfg.Ingest.DataDir,
		"concurrency", cfg.Ingest.Concurrency,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *migrateFlag {
		logger.Info("applying schema migrations")
		if err := database.Migrate(cfg.Database); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	st := store.New(pool, cfg.Database.StatementTimeout, logger)
	san := sanitize.New(decimal.NewFromInt(cfg.Ingest.MaxPrice))

	pipeline := ingest.New(ingest.Config{
		DataDir:        cfg.Ingest.DataDir,
		Concurrency:    cfg.Ingest.Concurrency,
		MaxRetries:     cfg.Ingest.MaxRetries,
		RetryBaseDelay: cfg.Ingest.RetryBaseDelay,
		RetryMaxDelay:  cfg.Ingest.RetryMaxDelay,
	}, san, st, logger)

	stats, err := pipeline.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("import aborted", "error", err)
		os.Exit(1)
	}
	if err != nil {
		logger.Warn("import interrupted, partial results follow")
	}

	logger.Info("importer finished",
		"files_total", stats.FilesTotal,
		"files_imported", stats.FilesImported,
		"files_skipped", stats.FilesSkipped,
		"files_failed", stats.FilesFailed,
		"rows_imported", stats.RowsImported,
		"rows_rejected", stats.RowsRejected,
	)

	if stats.FilesFailed > 0 {
		os.Exit(1)
	}
}
