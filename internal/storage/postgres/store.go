package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"betScope/internal/model"
)

// Schema creates the tables the store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS bets (
	id           TEXT PRIMARY KEY,
	options      JSONB NOT NULL,
	bet_type     TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	image        TEXT NOT NULL DEFAULT '',
	link         TEXT NOT NULL DEFAULT '',
	owner        TEXT NOT NULL DEFAULT '',
	result       BIGINT NOT NULL,
	status       TEXT NOT NULL,
	created_at   BIGINT NOT NULL,
	updated_at   BIGINT NOT NULL,
	bet_duration BIGINT NOT NULL,
	private_bet  BOOLEAN NOT NULL DEFAULT FALSE,
	synced_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bets_updated_at_idx ON bets (updated_at);
CREATE TABLE IF NOT EXISTS indexer_state (
	name              TEXT PRIMARY KEY,
	last_processed_ts BIGINT NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for bets and sync progress.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutBetBatch implements storage.Storage.
func (s *Store) PutBetBatch(ctx context.Context, bets []model.Bet) error {
	return s.UpsertBets(ctx, bets)
}

// UpsertBets inserts or updates bets. A row is only replaced by a version
// with an equal or newer updated_at.
func (s *Store) UpsertBets(ctx context.Context, bets []model.Bet) error {
	if len(bets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, bet := range bets {
		options, err := json.Marshal(bet.Options)
		if err != nil {
			return fmt.Errorf("marshal options for bet %s: %w", bet.ID, err)
		}
		batch.Queue(`
			INSERT INTO bets (
				id, options, bet_type, name, description, image, link, owner,
				result, status, created_at, updated_at, bet_duration, private_bet, synced_at
			) VALUES ($1, $2::jsonb, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
			ON CONFLICT (id)
			DO UPDATE SET
				options = EXCLUDED.options,
				bet_type = EXCLUDED.bet_type,
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				image = EXCLUDED.image,
				link = EXCLUDED.link,
				owner = EXCLUDED.owner,
				result = EXCLUDED.result,
				status = EXCLUDED.status,
				created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at,
				bet_duration = EXCLUDED.bet_duration,
				private_bet = EXCLUDED.private_bet,
				synced_at = now()
			WHERE bets.updated_at <= EXCLUDED.updated_at
		`,
			bet.ID,
			string(options),
			string(bet.BetType),
			bet.Name,
			bet.Description,
			bet.Image,
			bet.Link,
			bet.Owner,
			bet.Result,
			string(bet.Status),
			bet.CreatedAt,
			bet.UpdatedAt,
			bet.BetDuration,
			bet.PrivateBet,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bets {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts int64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, ts)
	return err
}
