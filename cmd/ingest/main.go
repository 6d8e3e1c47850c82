// Command ingest runs one full ingestion pass: load the insurer registry,
// discover the yearly handbook archives, parse them into indicator records,
// and persist everything with column-level upsert semantics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"insurstat/internal/config"
	"insurstat/internal/infrastructure"
	"insurstat/internal/pipeline"
	"insurstat/internal/registry"
	"insurstat/internal/store"
	"insurstat/internal/tabular"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	noDiscover := flag.Bool("no-discover", false, "skip listing-page discovery, use pinned archive URLs only")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *noDiscover {
		cfg.Source.Discover = false
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("creating data directories failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The seed list is the one run-fatal input: without it nothing resolves.
	reg, err := registry.Load(cfg.Paths.SeedFile, cfg.Paths.AliasFile, logger)
	if err != nil {
		logger.Error("loading insurer registry failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("insurer registry loaded",
		slog.Int("insurers", reg.Len()),
		slog.Int("known_names", len(reg.KnownNames())))

	dict := tabular.DefaultDictionary()
	if cfg.Paths.MetricsFile != "" {
		dict, err = tabular.LoadDictionary(cfg.Paths.MetricsFile)
		if err != nil {
			logger.Error("loading metric dictionary failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	st, err := store.Open(cfg.Paths.DatabasePath)
	if err != nil {
		logger.Error("opening indicator store failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.SeedInsurers(ctx, reg.Insurers()); err != nil {
		logger.Error("seeding insurers failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	p := pipeline.New(cfg, st, reg, dict, logger)
	periods := p.Periods(ctx)
	if len(periods) == 0 {
		logger.Error("no handbook archives found; check listing pages or pin archive URLs in config")
		os.Exit(1)
	}

	report, err := p.Run(ctx, periods)
	if err != nil {
		logger.Error("ingestion run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Print(report.Summary())
	if report.RowsWritten == 0 {
		logger.Warn("no rows ingested", slog.String("run_id", report.RunID))
	}
}
