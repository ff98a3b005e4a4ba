package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"betScope/internal/config"
	"betScope/internal/indexer"
	"betScope/internal/metrics"
	"betScope/internal/storage"
	"betScope/internal/storage/kafka"
	"betScope/internal/storage/postgres"
	"betScope/internal/subgraph"
	"betScope/internal/transform"
)

func runSync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSync(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := storage.NewFanout()
	if cfg.Out != "" {
		sinks.Add("jsonl", storage.NewJsonlStorage(cfg.Out))
	}

	var (
		store *postgres.Store
		state indexer.StateStore = &indexer.FileStateStore{Path: cfg.Checkpoint}
	)
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks.Add("postgres", store)
		state = &indexer.DBStateStore{Store: store, Name: cfg.StateName}
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink := kafka.NewSink(kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic), cfg.KafkaTopic, logger)
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("close kafka writer", zap.Error(err))
			}
		}()
		sinks.Add("kafka", sink)
	}

	if sinks.Len() == 0 {
		return fmt.Errorf("no output configured: set out, pg-dsn or kafka-brokers")
	}

	if cfg.MetricsAddr != "" {
		srv := metrics.StartServer(cfg.MetricsAddr, func(ctx context.Context) error {
			if store != nil {
				return store.Ping(ctx)
			}
			return nil
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics server started", zap.String("addr", cfg.MetricsAddr))
	}

	client := subgraph.NewClient(cfg.SubgraphURL, logger,
		subgraph.WithQuery(cfg.Query),
		subgraph.WithEntity(cfg.Entity),
		subgraph.WithAPIKey(cfg.APIKey),
		subgraph.WithRateLimit(cfg.RPS, 1),
	)

	runner := indexer.NewRunner(indexer.RunConfig{
		PageSize:     cfg.PageSize,
		UpdatedAfter: cfg.UpdatedAfter,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, client, transform.NewTransformer(logger), sinks, state, logger)

	logger.Info("sync start",
		zap.String("subgraph_url", cfg.SubgraphURL),
		zap.String("entity", cfg.Entity),
		zap.String("query_file", cfg.QueryFile),
		zap.String("api_key", redactSecret(cfg.APIKey)),
		zap.Int("page_size", cfg.PageSize),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactSecret(cfg.PGDSN)),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("sync complete",
		zap.Int("pages", stats.Pages),
		zap.Int("fetched", stats.Fetched),
		zap.Int("stored", stats.Stored),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int64("cursor", stats.Cursor),
	)
	return nil
}
