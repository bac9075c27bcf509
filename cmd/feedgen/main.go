package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lohithgpbasu/stockfeed/internal/config"
	"github.com/lohithgpbasu/stockfeed/internal/feed"
	"github.com/lohithgpbasu/stockfeed/internal/fetch"
	"github.com/lohithgpbasu/stockfeed/internal/model"
	"github.com/lohithgpbasu/stockfeed/internal/nse"
	"github.com/lohithgpbasu/stockfeed/internal/publish"
	"github.com/lohithgpbasu/stockfeed/internal/store"
	"github.com/lohithgpbasu/stockfeed/internal/symbols"
	"github.com/lohithgpbasu/stockfeed/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/feedgen.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single acquisition pass and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// .env is optional for local runs
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting feedgen",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"base_url", cfg.Upstream.BaseURL,
		"interval", cfg.Fetch.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Quote client and session manager
	client := nse.NewClient(
		cfg.Upstream.BaseURL,
		nse.WithQuotePath(cfg.Upstream.QuotePath),
		nse.WithUserAgent(cfg.Upstream.UserAgent),
		nse.WithTimeout(cfg.Upstream.Timeout),
		nse.WithRateLimit(cfg.Upstream.RateLimit, cfg.Upstream.RateBurst),
		nse.WithLogger(logger),
	)
	sessions := nse.NewSessionManager(client, logger)

	// Watchlist
	var source fetch.SymbolSource
	if cfg.Watchlist.Symbol != "" {
		source = singleSymbolSource(cfg.Watchlist.Symbol)
		logger.Info("single-symbol mode", "symbol", cfg.Watchlist.Symbol)
	} else {
		source = symbols.NewSource(cfg.Watchlist.Path)
		logger.Info("watchlist file", "path", cfg.Watchlist.Path)
	}

	// Optional quote history database
	var history *store.History
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		db, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		history = store.NewHistory(db, logger)
		if err := history.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare quote history schema", "error", err)
			os.Exit(1)
		}

		logger.Info("database connected")
	}

	// Feed outputs and optional git publishing
	writer := feed.NewWriter(cfg.Feed.XMLPath, cfg.Feed.CSVPath, logger)

	var publisher *publish.Publisher
	if cfg.Publish.Enabled {
		publisher = publish.New(publish.Config{
			RepoDir: cfg.Publish.RepoDir,
			Message: cfg.Publish.CommitMessage,
			Push:    cfg.Publish.Push,
			Paths:   []string{cfg.Feed.XMLPath, cfg.Feed.CSVPath},
		}, logger)
	}

	handler := snapshotHandler(writer, history, publisher, logger)

	// Worker pool and acquisition loop
	pool := fetch.NewPool(fetch.Config{
		Concurrency: cfg.Fetch.Concurrency,
		Policy: fetch.Policy{
			MaxRetries: cfg.Fetch.MaxRetries,
			BaseDelay:  cfg.Fetch.BaseDelay,
			Jitter:     true,
		},
	}, client, sessions, logger)

	cycle := fetch.NewCycle(fetch.CycleConfig{
		Interval:     cfg.Fetch.Interval,
		CycleTimeout: cfg.Fetch.CycleTimeout,
		TopN:         cfg.Snapshot.TopN,
	}, pool, source, handler, logger)

	if *once {
		snap, err := cycle.Once(ctx)
		if err != nil {
			logger.Error("acquisition pass failed", "error", err)
			os.Exit(1)
		}
		logger.Info("single pass complete", "quotes", len(snap.Quotes))
		return
	}

	// Observability server
	obsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createObsHandler(cycle, history, cfg.Metrics.Path),
	}

	go func() {
		logger.Info("starting observability server", "port", cfg.Metrics.Port)
		if err := obsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("observability server error", "error", err)
		}
	}()

	// Start the acquisition loop
	if err := cycle.Start(ctx); err != nil {
		logger.Error("failed to start acquisition loop", "error", err)
		os.Exit(1)
	}

	logger.Info("feedgen running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := cycle.Stop(shutdownCtx); err != nil {
		logger.Error("acquisition loop shutdown error", "error", err)
	}
	obsServer.Shutdown(shutdownCtx)

	logger.Info("feedgen stopped")
}

// singleSymbolSource expands one configured ticker into its NSE and BSE
// variants so a single instrument is tracked on both exchanges.
func singleSymbolSource(ticker string) fetch.SymbolSource {
	base := model.NewSymbol(ticker, "").Base()
	return symbols.Static{
		model.NewSymbol(base, ""),
		model.NewSymbol(base+".BO", ""),
	}
}

// snapshotHandler chains the per-pass outputs. File rendering failures fail
// the pass; history and publish errors are logged and skipped.
func snapshotHandler(writer *feed.Writer, history *store.History, publisher *publish.Publisher, logger *slog.Logger) fetch.SnapshotHandler {
	return fetch.SnapshotHandlerFunc(func(ctx context.Context, snap model.RankedSnapshot) error {
		if err := writer.HandleSnapshot(ctx, snap); err != nil {
			return err
		}
		if history != nil {
			if err := history.HandleSnapshot(ctx, snap); err != nil {
				logger.Error("quote history write failed", "error", err)
			}
		}
		if publisher != nil {
			if err := publisher.HandleSnapshot(ctx, snap); err != nil {
				logger.Error("feed publish failed", "error", err)
			}
		}
		return nil
	})
}

// createObsHandler serves Prometheus metrics and a JSON health check.
func createObsHandler(cycle *fetch.Cycle, history *store.History, metricsPath string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if history != nil {
			if err := history.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}

		// Check acquisition loop
		stats := cycle.Stats()
		health.Components["acquisition"] = map[string]interface{}{
			"last_pass": stats.CompletedAt,
			"symbols":   stats.Symbols,
			"quotes":    stats.Quotes,
			"failed":    stats.Failed,
		}
		if stats.CompletedAt.IsZero() {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
