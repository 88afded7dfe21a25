package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"superPayroll/internal/config"
	"superPayroll/internal/mapping"
	"superPayroll/internal/storage"
	"superPayroll/internal/storage/postgres"
)

func runMap(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadMap(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	policy, err := mapping.ParseRevisionPolicy(cfg.RevisionPolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store storage.Store
		flush func() error
	)
	if cfg.PGDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()

		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
	} else {
		mem, err := storage.OpenMemoryStore(cfg.StateFile)
		if err != nil {
			return err
		}
		store = mem
		flush = mem.Flush
	}

	logger.Info("map start",
		zap.String("in", cfg.In),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("state_file", cfg.StateFile),
		zap.Int("batch_size", cfg.BatchSize),
		zap.String("revision_policy", string(policy)),
		zap.String("cursor", cfg.CursorName),
		zap.Bool("skip_invalid", cfg.SkipInvalid),
	)

	processor := mapping.NewProcessor(mapping.ProcessorConfig{
		BatchSize:   cfg.BatchSize,
		CursorName:  cfg.CursorName,
		SkipInvalid: cfg.SkipInvalid,
	}, store, mapping.NewMapper(policy, logger), logger)

	_, runErr := processor.Run(ctx, cfg.In)

	// Committed batches are kept even when a later batch failed.
	if flush != nil {
		if err := flush(); err != nil {
			if runErr != nil {
				logger.Error("flush snapshot", zap.Error(err))
				return runErr
			}
			return err
		}
	}
	return runErr
}
