package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lohithgpbasu/stockfeed/internal/metrics"
	"github.com/lohithgpbasu/stockfeed/internal/model"
	"github.com/lohithgpbasu/stockfeed/internal/nse"
)

// QuoteFetcher fetches one symbol's quote over an established session.
// *nse.Client implements it.
type QuoteFetcher interface {
	Quote(ctx context.Context, s *nse.Session, sym model.Symbol) (*model.QuoteSnapshot, error)
}

// SessionSource hands out the shared session and replaces it after auth
// failures. *nse.SessionManager implements it.
type SessionSource interface {
	Ensure(ctx context.Context) (*nse.Session, error)
	Renew(ctx context.Context, stale *nse.Session) (*nse.Session, error)
}

// Config holds worker pool configuration.
type Config struct {
	Concurrency int    // Max concurrent fetches (default: 5)
	Policy      Policy // Retry policy for failed attempts
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 5,
		Policy:      DefaultPolicy(),
	}
}

// Pool fans symbol fetches out over a bounded set of workers. Backoff
// suspends only the worker whose fetch failed; the rest keep draining the
// queue.
type Pool struct {
	cfg      Config
	fetcher  QuoteFetcher
	sessions SessionSource
	logger   *slog.Logger

	// sleep is swapped in tests to observe backoff without waiting it out.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPool creates a worker pool over the given fetcher and session source.
func NewPool(cfg Config, fetcher QuoteFetcher, sessions SessionSource, logger *slog.Logger) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		cfg:      cfg,
		fetcher:  fetcher,
		sessions: sessions,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Run fetches every symbol and returns exactly one result per input, in
// input order. Cancellation abandons undispatched symbols; fetches already
// under way still contribute their result.
func (p *Pool) Run(ctx context.Context, symbols []model.Symbol) []model.FetchResult {
	results := make([]model.FetchResult, len(symbols))
	if len(symbols) == 0 {
		return results
	}

	type task struct {
		idx int
		sym model.Symbol
	}

	workers := p.cfg.Concurrency
	if workers > len(symbols) {
		workers = len(symbols)
	}

	tasks := make(chan task)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results[t.idx] = p.fetchSymbol(ctx, t.sym)
			}
		}()
	}

	var queued int
feed:
	for i, sym := range symbols {
		select {
		case tasks <- task{idx: i, sym: sym}:
			queued++
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	// Symbols never handed to a worker still get a result.
	for i := queued; i < len(symbols); i++ {
		results[i] = model.Failed(symbols[i], model.KindNetwork, ctx.Err(), 0)
	}

	return results
}

// fetchSymbol drives one symbol through the attempt loop until it produces
// a quote or the policy gives up.
func (p *Pool) fetchSymbol(ctx context.Context, sym model.Symbol) model.FetchResult {
	var renewed bool

	for attempt := 1; ; attempt++ {
		metrics.FetchAttempts.Inc()

		session, err := p.sessions.Ensure(ctx)
		if err != nil {
			kind := nse.Classify(err)
			metrics.FetchFailures.WithLabelValues(string(kind)).Inc()
			return model.Failed(sym, kind, err, attempt)
		}

		quote, err := p.fetcher.Quote(ctx, session, sym)
		if err == nil {
			return model.Ok(sym, quote, attempt)
		}

		if ctx.Err() != nil {
			return model.Failed(sym, model.KindNetwork, ctx.Err(), attempt)
		}

		kind := nse.Classify(err)
		decision := p.cfg.Policy.Decide(attempt, kind, renewed)

		switch decision.Kind {
		case DecisionRenewSession:
			p.logger.Info("session rejected, renewing",
				"symbol", sym.Ticker,
				"attempt", attempt,
				"kind", kind,
			)
			if _, rerr := p.sessions.Renew(ctx, session); rerr != nil {
				rkind := nse.Classify(rerr)
				metrics.FetchFailures.WithLabelValues(string(rkind)).Inc()
				return model.Failed(sym, rkind, rerr, attempt)
			}
			renewed = true

		case DecisionRetryAfter:
			p.logger.Debug("retrying fetch",
				"symbol", sym.Ticker,
				"attempt", attempt,
				"kind", kind,
				"backoff", decision.Delay,
			)
			if serr := p.sleep(ctx, decision.Delay); serr != nil {
				return model.Failed(sym, model.KindNetwork, serr, attempt)
			}

		case DecisionGiveUp:
			p.logger.Warn("giving up on symbol",
				"symbol", sym.Ticker,
				"attempts", attempt,
				"kind", kind,
				"err", err,
			)
			metrics.FetchFailures.WithLabelValues(string(kind)).Inc()
			return model.Failed(sym, kind, err, attempt)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
