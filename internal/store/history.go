package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

const createQuoteHistory = `
CREATE TABLE IF NOT EXISTS quote_history (
	symbol        TEXT        NOT NULL,
	exchange      TEXT        NOT NULL,
	observed_at   TIMESTAMPTZ NOT NULL,
	open          DOUBLE PRECISION,
	prev_close    DOUBLE PRECISION,
	day_low       DOUBLE PRECISION,
	day_high      DOUBLE PRECISION,
	week52_low    DOUBLE PRECISION,
	week52_high   DOUBLE PRECISION,
	volume        BIGINT,
	lower_circuit DOUBLE PRECISION,
	upper_circuit DOUBLE PRECISION,
	PRIMARY KEY (symbol, observed_at)
)`

// History records each pass's quotes in the quote_history table.
type History struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewHistory creates a History over the given pool.
func NewHistory(db *pgxpool.Pool, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the quote_history table when missing.
func (h *History) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, createQuoteHistory); err != nil {
		return fmt.Errorf("create quote_history: %w", err)
	}
	return nil
}

// Ping reports database health.
func (h *History) Ping(ctx context.Context) error {
	return h.db.Ping(ctx)
}

// Close releases the underlying pool.
func (h *History) Close() {
	h.db.Close()
}

// HandleSnapshot records the snapshot's quotes.
func (h *History) HandleSnapshot(ctx context.Context, snap model.RankedSnapshot) error {
	_, err := h.Insert(ctx, snap.Quotes)
	return err
}

// Insert batch-inserts quotes and reports how many were already recorded.
func (h *History) Insert(ctx context.Context, quotes []model.QuoteSnapshot) (conflicts int, err error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	start := time.Now()

	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO quote_history (
				symbol, exchange, observed_at,
				open, prev_close, day_low, day_high,
				week52_low, week52_high, volume,
				lower_circuit, upper_circuit
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (symbol, observed_at) DO NOTHING
		`, q.Symbol, q.Exchange, q.ObservedAt,
			q.Open, q.PrevClose, q.DayLow, q.DayHigh,
			q.Week52Low, q.Week52High, q.Volume,
			q.LowerCircuit, q.UpperCircuit)
	}

	results := h.db.SendBatch(ctx, batch)
	defer results.Close()

	for range quotes {
		ct, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("insert quote history: %w", err)
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	h.logger.Debug("quote history written",
		"count", len(quotes),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)

	return conflicts, nil
}
