package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration for a feedgen instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Feed      FeedConfig      `yaml:"feed"`
	Publish   PublishConfig   `yaml:"publish"`
	Database  DBConfig        `yaml:"database"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// InstanceConfig identifies this feed generator in logs.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// UpstreamConfig holds quote endpoint settings.
type UpstreamConfig struct {
	BaseURL   string        `yaml:"base_url"`
	QuotePath string        `yaml:"quote_path"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second across all workers
	RateBurst int           `yaml:"rate_burst"`
}

// WatchlistConfig selects the symbols to fetch. Symbol, when set, bypasses
// the file and runs in single-symbol mode.
type WatchlistConfig struct {
	Path   string `yaml:"path"`
	Symbol string `yaml:"symbol"`
}

// FetchConfig holds worker pool and retry settings.
type FetchConfig struct {
	Concurrency  int           `yaml:"concurrency"`
	MaxRetries   int           `yaml:"max_retries"`
	BaseDelay    time.Duration `yaml:"base_delay"`
	CycleTimeout time.Duration `yaml:"cycle_timeout"`
	Interval     time.Duration `yaml:"interval"`
}

// SnapshotConfig holds merge settings.
type SnapshotConfig struct {
	TopN int `yaml:"top_n"`
}

// FeedConfig holds output file paths.
type FeedConfig struct {
	XMLPath string `yaml:"xml_path"`
	CSVPath string `yaml:"csv_path"`
}

// PublishConfig controls the git publish step. When enabled, refreshed feed
// files are staged and committed; Push additionally pushes to the remote.
type PublishConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Push          bool   `yaml:"push"`
	RepoDir       string `yaml:"repo_dir"`
	CommitMessage string `yaml:"commit_message"`
}

// DBConfig holds the optional quote history database. An empty host disables
// the sink.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a history database is configured.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// MetricsConfig holds the observability HTTP server settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ParseLogLevel maps a config string to a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
