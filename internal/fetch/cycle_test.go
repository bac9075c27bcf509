package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lohithgpbasu/stockfeed/internal/model"
	"github.com/lohithgpbasu/stockfeed/internal/nse"
)

// staticSource returns a fixed watchlist.
type staticSource struct {
	symbols []model.Symbol
	err     error
}

func (s *staticSource) Symbols(ctx context.Context) ([]model.Symbol, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.symbols, nil
}

func newTestCycle(t *testing.T, serverURL string, cfg CycleConfig, pcfg Config, source SymbolSource, handler SnapshotHandler) *Cycle {
	t.Helper()
	client := nse.NewClient(serverURL, nse.WithRateLimit(1000, 1000))
	sessions := nse.NewSessionManager(client, nil)
	pool := NewPool(pcfg, client, sessions, nil)
	return NewCycle(cfg, pool, source, handler, nil)
}

func quietPoolConfig() Config {
	return Config{
		Concurrency: 4,
		Policy:      Policy{MaxRetries: 1, BaseDelay: time.Millisecond},
	}
}

// TestCycle_Once tests a single acquisition pass end to end.
func TestCycle_Once(t *testing.T) {
	t.Run("produces a ranked snapshot", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.Write([]byte(`{"open": 100.5, "volume": 1000}`))
		}))
		defer server.Close()

		var handled int32
		var got model.RankedSnapshot
		handler := SnapshotHandlerFunc(func(ctx context.Context, snap model.RankedSnapshot) error {
			atomic.AddInt32(&handled, 1)
			got = snap
			return nil
		})

		source := &staticSource{symbols: []model.Symbol{
			model.NewSymbol("RELIANCE.NS", "Reliance Industries"),
			model.NewSymbol("TCS", "Tata Consultancy"),
			model.NewSymbol("RELIANCE.BO", "Reliance Industries"),
		}}

		c := newTestCycle(t, server.URL, DefaultCycleConfig(), quietPoolConfig(), source, handler)

		snap, err := c.Once(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if handled != 1 {
			t.Fatalf("handler calls = %d, want 1", handled)
		}

		// The two RELIANCE listings collapse to one quote.
		if len(snap.Quotes) != 2 {
			t.Fatalf("len(Quotes) = %d, want 2", len(snap.Quotes))
		}
		seen := map[string]bool{}
		for _, q := range snap.Quotes {
			seen[q.Symbol] = true
		}
		if !seen["RELIANCE"] || !seen["TCS"] {
			t.Errorf("quotes = %v, want RELIANCE and TCS", seen)
		}
		if len(got.Quotes) != len(snap.Quotes) {
			t.Errorf("handler saw %d quotes, want %d", len(got.Quotes), len(snap.Quotes))
		}

		stats := c.Stats()
		if stats.Symbols != 3 || stats.Quotes != 2 || stats.Failed != 0 {
			t.Errorf("Stats = %+v, want {Symbols: 3, Quotes: 2, Failed: 0}", stats)
		}
		if stats.CompletedAt.IsZero() {
			t.Error("CompletedAt should be set")
		}
	})

	t.Run("initial warm-up failure aborts the pass", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		var handled int32
		handler := SnapshotHandlerFunc(func(ctx context.Context, snap model.RankedSnapshot) error {
			atomic.AddInt32(&handled, 1)
			return nil
		})

		source := &staticSource{symbols: []model.Symbol{model.NewSymbol("TCS", "")}}
		c := newTestCycle(t, server.URL, DefaultCycleConfig(), quietPoolConfig(), source, handler)

		_, err := c.Once(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "session warm-up") {
			t.Errorf("error = %v, want warm-up failure", err)
		}
		if handled != 0 {
			t.Errorf("handler calls = %d, want 0", handled)
		}
	})

	t.Run("fetch failures are not pass failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		var handled int32
		var got model.RankedSnapshot
		handler := SnapshotHandlerFunc(func(ctx context.Context, snap model.RankedSnapshot) error {
			atomic.AddInt32(&handled, 1)
			got = snap
			return nil
		})

		source := &staticSource{symbols: []model.Symbol{
			model.NewSymbol("AAA", ""),
			model.NewSymbol("BBB", ""),
		}}
		c := newTestCycle(t, server.URL, DefaultCycleConfig(), quietPoolConfig(), source, handler)

		snap, err := c.Once(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snap.Quotes) != 0 {
			t.Errorf("len(Quotes) = %d, want 0", len(snap.Quotes))
		}
		if handled != 1 {
			t.Errorf("handler calls = %d, want 1 (empty snapshots still flow downstream)", handled)
		}
		if len(got.Quotes) != 0 {
			t.Errorf("handler saw %d quotes, want 0", len(got.Quotes))
		}

		stats := c.Stats()
		if stats.Failed != 2 {
			t.Errorf("Stats.Failed = %d, want 2", stats.Failed)
		}
	})

	t.Run("handler errors propagate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.Write([]byte(`{"open": 1}`))
		}))
		defer server.Close()

		handler := SnapshotHandlerFunc(func(ctx context.Context, snap model.RankedSnapshot) error {
			return errors.New("disk full")
		})

		source := &staticSource{symbols: []model.Symbol{model.NewSymbol("TCS", "")}}
		c := newTestCycle(t, server.URL, DefaultCycleConfig(), quietPoolConfig(), source, handler)

		_, err := c.Once(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "handle snapshot") {
			t.Errorf("error = %v, want handler wrap", err)
		}
	})

	t.Run("watchlist errors abort the pass", func(t *testing.T) {
		source := &staticSource{err: errors.New("no such file")}
		c := newTestCycle(t, "http://127.0.0.1:1", DefaultCycleConfig(), quietPoolConfig(), source, nil)

		_, err := c.Once(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "load watchlist") {
			t.Errorf("error = %v, want watchlist wrap", err)
		}
	})

	t.Run("empty watchlist is a quiet no-op", func(t *testing.T) {
		var handled int32
		handler := SnapshotHandlerFunc(func(ctx context.Context, snap model.RankedSnapshot) error {
			atomic.AddInt32(&handled, 1)
			return nil
		})

		source := &staticSource{}
		c := newTestCycle(t, "http://127.0.0.1:1", DefaultCycleConfig(), quietPoolConfig(), source, handler)

		snap, err := c.Once(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snap.Quotes) != 0 {
			t.Errorf("len(Quotes) = %d, want 0", len(snap.Quotes))
		}
		if handled != 0 {
			t.Errorf("handler calls = %d, want 0", handled)
		}
	})

	t.Run("pass deadline turns slow fetches into failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				w.WriteHeader(http.StatusOK)
				return
			}
			time.Sleep(2 * time.Second)
			w.Write([]byte(`{"open": 1}`))
		}))
		defer server.Close()

		cfg := DefaultCycleConfig()
		cfg.CycleTimeout = 100 * time.Millisecond

		source := &staticSource{symbols: []model.Symbol{model.NewSymbol("TCS", "")}}
		c := newTestCycle(t, server.URL, cfg, quietPoolConfig(), source, nil)

		snap, err := c.Once(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snap.Quotes) != 0 {
			t.Errorf("len(Quotes) = %d, want 0", len(snap.Quotes))
		}
		if c.Stats().Failed != 1 {
			t.Errorf("Stats.Failed = %d, want 1", c.Stats().Failed)
		}
	})
}

// TestCycle_StartStop tests the loop lifecycle.
func TestCycle_StartStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(`{"open": 1}`))
	}))
	defer server.Close()

	passes := make(chan struct{}, 4)
	handler := SnapshotHandlerFunc(func(ctx context.Context, snap model.RankedSnapshot) error {
		select {
		case passes <- struct{}{}:
		default:
		}
		return nil
	})

	cfg := DefaultCycleConfig()
	cfg.Interval = time.Hour // First pass runs immediately; no second pass.

	source := &staticSource{symbols: []model.Symbol{model.NewSymbol("TCS", "")}}
	c := newTestCycle(t, server.URL, cfg, quietPoolConfig(), source, handler)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-passes:
	case <-time.After(5 * time.Second):
		t.Fatal("no pass completed after Start")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
