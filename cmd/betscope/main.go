package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "betscope",
		Short:        "P2P betting market sync and transaction tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync bets from the indexer into canonical storage",
		RunE:  runSync,
	}

	syncCmd.Flags().String("subgraph-url", "", "GraphQL indexer endpoint")
	syncCmd.Flags().String("query-file", "", "GraphQL query document (built-in bets query if empty)")
	syncCmd.Flags().String("entity", "bets", "top-level response field holding the bet list")
	syncCmd.Flags().String("api-key", "", "indexer API key sent as a Bearer token, or @file")
	syncCmd.Flags().Int("page-size", 100, "records per page")
	syncCmd.Flags().Int64("updated-after", 0, "start cursor (unix seconds), overridden by a newer checkpoint")
	syncCmd.Flags().Int("max-retries", 5, "maximum retry attempts per page")
	syncCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	syncCmd.Flags().Float64("rps", 5, "indexer requests per second, 0 disables limiting")
	syncCmd.Flags().String("out", "./data/bets.jsonl", "output JSONL path, empty disables")
	syncCmd.Flags().String("pg-dsn", "", "Postgres DSN for bet upserts and checkpoint state")
	syncCmd.Flags().StringSlice("kafka-brokers", nil, "Kafka brokers (comma-separated)")
	syncCmd.Flags().String("kafka-topic", "betscope.bets", "Kafka topic for bets")
	syncCmd.Flags().String("checkpoint", "./data/sync_checkpoint.json", "checkpoint file path, used without Postgres")
	syncCmd.Flags().String("state-name", "bets_sync", "checkpoint name in Postgres")
	syncCmd.Flags().String("metrics-addr", "", "serve /metrics and /healthz on this address")
	syncCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(syncCmd)

	normalizeCmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize raw bet records JSONL into canonical bets",
		RunE:  runNormalize,
	}

	normalizeCmd.Flags().String("in", "", "input raw bet records JSONL")
	normalizeCmd.Flags().String("out", "./data/bets.jsonl", "output bets JSONL")
	normalizeCmd.Flags().String("errors", "./data/normalize_errors.jsonl", "unreadable lines JSONL")
	normalizeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(normalizeCmd)

	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a contract call and wait for its outcome",
		RunE:  runSubmit,
	}

	submitCmd.Flags().String("rpc", "", "JSON-RPC URL")
	submitCmd.Flags().String("private-key", "", "hex private key of the sender, or @file")
	submitCmd.Flags().String("contract", "", "contract address")
	submitCmd.Flags().String("abi", "", "contract ABI JSON file (built-in bet contract if empty)")
	submitCmd.Flags().String("function", "", "method name")
	submitCmd.Flags().String("args", "[]", "method arguments as a JSON array")
	submitCmd.Flags().String("value", "0", "wei attached to the call")
	submitCmd.Flags().Duration("fallback-timeout", 30*time.Second, "assume success when no receipt arrives within this time")
	submitCmd.Flags().Duration("poll-interval", 2*time.Second, "receipt polling interval")
	submitCmd.Flags().Int("max-receipt-errors", 5, "consecutive receipt RPC errors before failing")
	submitCmd.Flags().String("redis-addr", "", "publish lifecycle notifications to this Redis")
	submitCmd.Flags().String("redis-channel", "betscope.tx", "Redis channel for notifications")
	submitCmd.Flags().String("nats-url", "", "publish lifecycle notifications to this NATS server")
	submitCmd.Flags().String("nats-subject", "betscope.tx", "NATS subject for notifications")
	submitCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(submitCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactSecret(value string) string {
	if value == "" {
		return value
	}
	return "***"
}
