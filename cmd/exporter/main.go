package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"call-analytics-exporter/internal/config"
	"call-analytics-exporter/internal/criteria"
	"call-analytics-exporter/internal/export"
	"call-analytics-exporter/internal/logger"
	"call-analytics-exporter/internal/source"
	"call-analytics-exporter/internal/warehouse"
)

func main() {
	once := flag.Bool("once", false, "run one export pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	if !*once {
		log.Warn().Msg("exporter must be run with --once, refusing to start as a loop")
		os.Exit(1)
	}

	// run owns all the defers so connections are released on every exit path.
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error().Err(err).Msg("export run aborted")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	src, err := source.Open(ctx, cfg.Mongo, log)
	if err != nil {
		return fmt.Errorf("source connection failed: %w", err)
	}
	defer func() {
		if err := src.Close(ctx); err != nil {
			log.Error().Err(err).Msg("closing source store")
		}
	}()

	sink, err := warehouse.Open(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("warehouse connection failed: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Error().Err(err).Msg("closing warehouse")
		}
	}()

	pipeline := export.New(src, sink, criteria.NewRegistry(), log)

	report, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	for _, unit := range report.Failed() {
		log.Warn().
			Str("stage", unit.Stage).
			Str("day", unit.Day).
			Str("category", unit.Category).
			Str("error", unit.Err).
			Msg("unit failed during run")
	}
	return nil
}
