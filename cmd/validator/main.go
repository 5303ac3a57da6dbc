package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/rickgao/market-insight/internal/config"
	"github.com/rickgao/market-insight/internal/database"
	"github.com/rickgao/market-insight/internal/sanitize"
	"github.com/rickgao/market-insight/internal/store"
	"github.com/rickgao/market-insight/internal/universe"
	"github.com/rickgao/market-insight/internal/validate"
	"github.com/rickgao/market-insight/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/importer.local.yaml", "path to config file")
	flag.Parse()

	// Report goes to stdout; logs stay on stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting validator",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateValidator(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	san := sanitize.New(decimal.NewFromInt(cfg.Ingest.MaxPrice))
	scanner := validate.NewScanner(cfg.Validate.DataDir, san, logger)

	rep, err := scanner.Scan(ctx)
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	expected, err := universe.LoadExpected(cfg.Validate.ExpectedFile)
	if err != nil {
		logger.Error("failed to load symbol universe", "error", err)
		os.Exit(1)
	}

	failed := map[string]struct{}{}
	if cfg.Validate.FailedFile != "" {
		failed, err = universe.LoadFailed(cfg.Validate.FailedFile)
		if err != nil {
			logger.Error("failed to load failed-symbol list", "error", err)
			os.Exit(1)
		}
	}

	// The collected set comes from the permanent store when one is
	// configured; otherwise the artifacts stand in for it.
	collected := rep.ArtifactSymbols()
	fromStore := false
	if cfg.Database.Enabled() {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		st := store.New(pool, cfg.Database.StatementTimeout, logger)
		collected, err = st.IngestedSymbols(ctx)
		pool.Close()
		if err != nil {
			logger.Error("failed to query ingested symbols", "error", err)
			os.Exit(1)
		}
		fromStore = true
	}

	rep.Reconcile(expected, failed, collected, fromStore)

	if err := rep.WriteText(os.Stdout, cfg.Validate.TopN); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	logger.Info("validator finished",
		"artifacts", rep.TotalFiles,
		"defects", rep.Defects(),
	)
}
