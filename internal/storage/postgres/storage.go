package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
)

// dbPool is the subset of pgxpool.Pool the archive needs; it lets tests
// substitute a mock pool.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Storage archives finalized order states in PostgreSQL so dispositions
// remain readable after their coordinators are evicted.
type Storage struct {
	pool   dbPool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fulfillment_orders (
            order_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            phase TEXT NOT NULL,
            timed_out BOOLEAN NOT NULL,
            partially_fulfilled BOOLEAN NOT NULL,
            state JSONB NOT NULL,
            finalized_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_fulfillment_orders_user ON fulfillment_orders(user_id, finalized_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// SaveFinalState upserts a finalized order state. Re-archiving the same order
// keeps the latest snapshot.
func (s *Storage) SaveFinalState(ctx context.Context, state model.OrderState) error {
	if state.FinalizedAt == nil {
		return fmt.Errorf("%w: order %q is not finalized", domainErrors.ErrInvalidArgs, state.Order.ID)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal order state: %w", err)
	}

	const query = `INSERT INTO fulfillment_orders (order_id, user_id, phase, timed_out, partially_fulfilled, state, finalized_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (order_id) DO UPDATE SET
            phase=EXCLUDED.phase,
            timed_out=EXCLUDED.timed_out,
            partially_fulfilled=EXCLUDED.partially_fulfilled,
            state=EXCLUDED.state,
            finalized_at=EXCLUDED.finalized_at`

	_, err = s.pool.Exec(ctx, query,
		state.Order.ID,
		state.Order.UserID,
		string(state.Phase),
		state.TimedOut,
		state.PartiallyFulfilled,
		payload,
		*state.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("archive order %q: %w", state.Order.ID, err)
	}
	return nil
}

// GetFinalState returns the archived state for an order id.
func (s *Storage) GetFinalState(ctx context.Context, orderID string) (*model.OrderState, error) {
	const query = `SELECT state FROM fulfillment_orders WHERE order_id=$1`

	var payload []byte
	err := s.pool.QueryRow(ctx, query, orderID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %q", domainErrors.ErrNotFound, orderID)
		}
		return nil, err
	}

	var state model.OrderState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal order state: %w", err)
	}
	return &state, nil
}
