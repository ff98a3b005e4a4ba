package storage

import (
	"context"

	"betScope/internal/model"
)

// Storage defines a sink for canonical bets.
type Storage interface {
	PutBetBatch(ctx context.Context, bets []model.Bet) error
}
