package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID    = "feedgen"
	DefaultBaseURL       = "https://www.nseindia.com"
	DefaultQuotePath     = "/api/quote-equity"
	DefaultUserAgent     = "Mozilla/5.0"
	DefaultTimeout       = 10 * time.Second
	DefaultRateLimit     = 5.0
	DefaultRateBurst     = 5
	DefaultWatchlistPath = "symbols.csv"
	DefaultConcurrency   = 5
	DefaultMaxRetries    = 3
	DefaultBaseDelay     = 1 * time.Second
	DefaultCycleTimeout  = 2 * time.Minute
	DefaultInterval      = 180 * time.Second
	DefaultTopN          = 50
	DefaultXMLPath       = "feed.xml"
	DefaultCSVPath       = "store-stock-details.csv"
	DefaultRepoDir       = "."
	DefaultCommitMessage = "chore: update stock feed"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultMetricsPort   = 9090
	DefaultMetricsPath   = "/metrics"
	DefaultLogLevel      = "info"
)

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Upstream defaults
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultBaseURL
	}
	if c.Upstream.QuotePath == "" {
		c.Upstream.QuotePath = DefaultQuotePath
	}
	if c.Upstream.UserAgent == "" {
		c.Upstream.UserAgent = DefaultUserAgent
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultTimeout
	}
	if c.Upstream.RateLimit == 0 {
		c.Upstream.RateLimit = DefaultRateLimit
	}
	if c.Upstream.RateBurst == 0 {
		c.Upstream.RateBurst = DefaultRateBurst
	}

	// Watchlist defaults
	if c.Watchlist.Path == "" && c.Watchlist.Symbol == "" {
		c.Watchlist.Path = DefaultWatchlistPath
	}

	// Fetch defaults
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = DefaultConcurrency
	}
	if c.Fetch.MaxRetries == 0 {
		c.Fetch.MaxRetries = DefaultMaxRetries
	}
	if c.Fetch.BaseDelay == 0 {
		c.Fetch.BaseDelay = DefaultBaseDelay
	}
	if c.Fetch.CycleTimeout == 0 {
		c.Fetch.CycleTimeout = DefaultCycleTimeout
	}
	if c.Fetch.Interval == 0 {
		c.Fetch.Interval = DefaultInterval
	}

	// Snapshot defaults
	if c.Snapshot.TopN == 0 {
		c.Snapshot.TopN = DefaultTopN
	}

	// Feed defaults
	if c.Feed.XMLPath == "" {
		c.Feed.XMLPath = DefaultXMLPath
	}
	if c.Feed.CSVPath == "" {
		c.Feed.CSVPath = DefaultCSVPath
	}

	// Publish defaults
	if c.Publish.RepoDir == "" {
		c.Publish.RepoDir = DefaultRepoDir
	}
	if c.Publish.CommitMessage == "" {
		c.Publish.CommitMessage = DefaultCommitMessage
	}

	// Database defaults apply only when a history database is configured
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			c.Database.Port = DefaultDBPort
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = DefaultDBSSLMode
		}
		if c.Database.MaxConns == 0 {
			c.Database.MaxConns = DefaultMaxConns
		}
		if c.Database.MinConns == 0 {
			c.Database.MinConns = DefaultMinConns
		}
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
