package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// SyncConfig holds configuration for the sync command.
type SyncConfig struct {
	SubgraphURL  string
	QueryFile    string
	Query        string
	Entity       string
	APIKey       string
	PageSize     int
	UpdatedAfter int64
	MaxRetries   int
	RetryBackoff time.Duration
	RPS          float64
	Out          string
	PGDSN        string
	KafkaBrokers []string
	KafkaTopic   string
	Checkpoint   string
	StateName    string
	MetricsAddr  string
	LogLevel     string
}

// LoadSync merges config file, environment variables, and flags into SyncConfig.
// The query file, when set, is read into Query.
func LoadSync(cfgFile string, flags *pflag.FlagSet) (SyncConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"entity":        "bets",
		"page-size":     100,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"rps":           5.0,
		"out":           "./data/bets.jsonl",
		"checkpoint":    "./data/sync_checkpoint.json",
		"kafka-topic":   "betscope.bets",
		"state-name":    "bets_sync",
		"log-level":     "info",
	})
	if err != nil {
		return SyncConfig{}, err
	}

	apiKey, err := getSecret(v, "api-key")
	if err != nil {
		return SyncConfig{}, err
	}

	cfg := SyncConfig{
		SubgraphURL:  v.GetString("subgraph-url"),
		QueryFile:    v.GetString("query-file"),
		Entity:       v.GetString("entity"),
		APIKey:       apiKey,
		PageSize:     v.GetInt("page-size"),
		UpdatedAfter: v.GetInt64("updated-after"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		RPS:          v.GetFloat64("rps"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		KafkaBrokers: getStringSlice(v, "kafka-brokers"),
		KafkaTopic:   v.GetString("kafka-topic"),
		Checkpoint:   v.GetString("checkpoint"),
		StateName:    v.GetString("state-name"),
		MetricsAddr:  v.GetString("metrics-addr"),
		LogLevel:     v.GetString("log-level"),
	}

	if cfg.QueryFile != "" {
		data, err := os.ReadFile(cfg.QueryFile)
		if err != nil {
			return SyncConfig{}, fmt.Errorf("read query file: %w", err)
		}
		cfg.Query = string(data)
	}

	return cfg, nil
}

// Validate checks required settings.
func (c SyncConfig) Validate() error {
	if c.SubgraphURL == "" {
		return fmt.Errorf("subgraph url is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be greater than zero")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}
	return nil
}
