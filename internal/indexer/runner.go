package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"betScope/internal/model"
	"betScope/internal/storage"
	"betScope/internal/subgraph"
	"betScope/internal/transform"
)

// Source returns pages of raw bet records ordered by updatedAt ascending,
// starting at Page.UpdatedAfter inclusive.
type Source interface {
	FetchBets(ctx context.Context, page subgraph.Page) ([]model.RawBetRecord, error)
}

// RunConfig holds runtime settings for a sync.
type RunConfig struct {
	PageSize     int
	UpdatedAfter int64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Stats summarizes one Run.
type Stats struct {
	Pages      int
	Fetched    int
	Stored     int
	Duplicates int
	Cursor     int64
}

// Runner pages bets from the indexer, transforms them and writes them to
// storage, checkpointing the updatedAt cursor after every page.
type Runner struct {
	cfg         RunConfig
	source      Source
	transformer *transform.Transformer
	storage     storage.Storage
	state       StateStore
	logger      *zap.Logger
	seen        map[string]int64
}

// NewRunner builds a Runner with its dependencies. state may be nil.
func NewRunner(cfg RunConfig, source Source, transformer *transform.Transformer, storageSink storage.Storage, state StateStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if transformer == nil {
		transformer = transform.NewTransformer(logger)
	}
	return &Runner{
		cfg:         cfg,
		source:      source,
		transformer: transformer,
		storage:     storageSink,
		state:       state,
		logger:      logger,
		seen:        make(map[string]int64),
	}
}

// Run executes the sync loop until the indexer returns a short page.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	if r.source == nil {
		return stats, fmt.Errorf("source is nil")
	}
	if r.storage == nil {
		return stats, fmt.Errorf("storage is nil")
	}
	if r.cfg.PageSize <= 0 {
		return stats, fmt.Errorf("page size must be greater than zero")
	}

	cursor := r.cfg.UpdatedAfter
	if r.state != nil {
		saved, ok, err := r.state.Load(ctx)
		if err != nil {
			return stats, fmt.Errorf("load checkpoint: %w", err)
		}
		if ok && saved > cursor {
			cursor = saved
			r.logger.Info("resume from checkpoint", zap.Int64("updated_after", cursor))
		}
	}

	skip := 0
	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		page := subgraph.Page{First: r.cfg.PageSize, Skip: skip, UpdatedAfter: cursor}
		records, err := r.fetchWithRetry(ctx, page)
		if err != nil {
			return stats, fmt.Errorf("fetch bets: %w", err)
		}
		stats.Pages++
		stats.Fetched += len(records)

		bets := r.transformer.TransformAll(records)
		fresh := make([]model.Bet, 0, len(bets))
		maxUpdated := cursor
		atMax := 0
		for _, bet := range bets {
			switch {
			case bet.UpdatedAt > maxUpdated:
				maxUpdated = bet.UpdatedAt
				atMax = 1
			case bet.UpdatedAt == maxUpdated:
				atMax++
			}
			if r.isDuplicate(bet) {
				stats.Duplicates++
				continue
			}
			fresh = append(fresh, bet)
		}

		if err := r.storage.PutBetBatch(ctx, fresh); err != nil {
			return stats, fmt.Errorf("store bets: %w", err)
		}
		stats.Stored += len(fresh)

		// Ties at the cursor are re-served by an inclusive query, so skip
		// past the ones already seen.
		if maxUpdated > cursor {
			cursor = maxUpdated
			skip = atMax
		} else {
			skip += len(records)
		}

		if r.state != nil {
			if err := r.state.Save(ctx, cursor); err != nil {
				return stats, fmt.Errorf("save checkpoint: %w", err)
			}
		}

		r.logger.Info("page complete",
			zap.Int("fetched", len(records)),
			zap.Int("stored", len(fresh)),
			zap.Int64("cursor", cursor),
			zap.Int("skip", skip),
		)

		if len(records) < r.cfg.PageSize {
			break
		}
	}

	stats.Cursor = cursor
	return stats, nil
}

func (r *Runner) fetchWithRetry(ctx context.Context, page subgraph.Page) ([]model.RawBetRecord, error) {
	var records []model.RawBetRecord
	policy := retryPolicy{maxRetries: r.cfg.MaxRetries, baseDelay: r.cfg.RetryBackoff, retryable: subgraph.Retryable}
	err := policy.do(ctx, func(ctx context.Context) error {
		var err error
		records, err = r.source.FetchBets(ctx, page)
		if err != nil {
			r.logger.Warn("fetch bets failed", zap.Error(err), zap.Int("skip", page.Skip), zap.Int64("updated_after", page.UpdatedAfter))
		}
		return err
	})
	return records, err
}

// isDuplicate reports whether this version of the bet was already stored in
// this run.
func (r *Runner) isDuplicate(bet model.Bet) bool {
	if last, ok := r.seen[bet.ID]; ok && last >= bet.UpdatedAt {
		return true
	}
	r.seen[bet.ID] = bet.UpdatedAt
	return false
}
