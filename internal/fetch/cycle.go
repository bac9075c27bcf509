package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lohithgpbasu/stockfeed/internal/merge"
	"github.com/lohithgpbasu/stockfeed/internal/metrics"
	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// SymbolSource provides the watchlist for each pass.
type SymbolSource interface {
	Symbols(ctx context.Context) ([]model.Symbol, error)
}

// SymbolSourceFunc is a function adapter for SymbolSource.
type SymbolSourceFunc func(ctx context.Context) ([]model.Symbol, error)

func (f SymbolSourceFunc) Symbols(ctx context.Context) ([]model.Symbol, error) {
	return f(ctx)
}

// SnapshotHandler receives each pass's ranked snapshot.
type SnapshotHandler interface {
	HandleSnapshot(ctx context.Context, snap model.RankedSnapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(ctx context.Context, snap model.RankedSnapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(ctx context.Context, snap model.RankedSnapshot) error {
	return f(ctx, snap)
}

// CycleConfig holds acquisition loop configuration.
type CycleConfig struct {
	Interval     time.Duration // Time between passes (default: 3m)
	CycleTimeout time.Duration // Per-pass deadline (default: 2m)
	TopN         int           // Snapshot size cap (default: 50)
}

// DefaultCycleConfig returns sensible defaults.
func DefaultCycleConfig() CycleConfig {
	return CycleConfig{
		Interval:     3 * time.Minute,
		CycleTimeout: 2 * time.Minute,
		TopN:         50,
	}
}

// Stats reports what the most recent pass did.
type Stats struct {
	CompletedAt time.Time
	Symbols     int
	Quotes      int
	Failed      int
}

// Cycle runs acquisition passes on a fixed interval. A failed pass is
// logged and counted; it never takes the loop down.
type Cycle struct {
	cfg     CycleConfig
	pool    *Pool
	source  SymbolSource
	handler SnapshotHandler
	logger  *slog.Logger

	mu    sync.Mutex
	stats Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCycle creates an acquisition loop over the given pool.
func NewCycle(cfg CycleConfig, pool *Pool, source SymbolSource, handler SnapshotHandler, logger *slog.Logger) *Cycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cycle{
		cfg:     cfg,
		pool:    pool,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the acquisition loop.
func (c *Cycle) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("acquisition loop started",
		"interval", c.cfg.Interval,
		"timeout", c.cfg.CycleTimeout,
		"top_n", c.cfg.TopN,
	)

	return nil
}

// Stop gracefully shuts down the loop.
func (c *Cycle) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("acquisition loop stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a copy of the most recent pass's numbers.
func (c *Cycle) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// run is the main acquisition loop.
func (c *Cycle) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	// Run a pass immediately on start.
	c.runOnce()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.runOnce()
		}
	}
}

func (c *Cycle) runOnce() {
	if _, err := c.Once(c.ctx); err != nil {
		metrics.CycleFailures.Inc()
		c.logger.Error("acquisition pass failed", "err", err)
	}
}

// Once runs a single acquisition pass under the configured deadline and
// returns the snapshot it produced.
func (c *Cycle) Once(ctx context.Context) (model.RankedSnapshot, error) {
	if c.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CycleTimeout)
		defer cancel()
	}
	return c.acquire(ctx)
}

// acquire fetches the whole watchlist, merges the results and hands the
// snapshot downstream.
func (c *Cycle) acquire(ctx context.Context) (model.RankedSnapshot, error) {
	start := time.Now()
	logger := c.logger.With("run_id", uuid.NewString())

	symbols, err := c.source.Symbols(ctx)
	if err != nil {
		return model.RankedSnapshot{}, fmt.Errorf("load watchlist: %w", err)
	}
	if len(symbols) == 0 {
		logger.Debug("watchlist is empty, nothing to fetch")
		return model.RankedSnapshot{GeneratedAt: time.Now()}, nil
	}

	// Without any session no fetch can succeed, so a failed warm-up ends
	// the pass here. Renewals during the pass only fail their own symbol.
	if _, err := c.pool.sessions.Ensure(ctx); err != nil {
		return model.RankedSnapshot{}, err
	}

	results := c.pool.Run(ctx, symbols)
	snap := merge.Merge(results, c.cfg.TopN)
	failed := merge.Failures(results)

	if c.handler != nil {
		if err := c.handler.HandleSnapshot(ctx, snap); err != nil {
			return snap, fmt.Errorf("handle snapshot: %w", err)
		}
	}

	c.mu.Lock()
	c.stats = Stats{
		CompletedAt: time.Now(),
		Symbols:     len(symbols),
		Quotes:      len(snap.Quotes),
		Failed:      failed,
	}
	c.mu.Unlock()

	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	metrics.QuotesPublished.Add(float64(len(snap.Quotes)))
	metrics.SymbolsFailed.Add(float64(failed))

	logger.Info("acquisition pass complete",
		"symbols", len(symbols),
		"quotes", len(snap.Quotes),
		"failed", failed,
		"duration", time.Since(start),
	)

	return snap, nil
}
