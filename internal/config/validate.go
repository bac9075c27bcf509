package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("upstream.base_url must be an http(s) URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be > 0")
	}
	if c.Upstream.RateLimit <= 0 {
		return errors.New("upstream.rate_limit must be > 0")
	}
	if c.Upstream.RateBurst < 1 {
		return errors.New("upstream.rate_burst must be >= 1")
	}

	if c.Watchlist.Path == "" && c.Watchlist.Symbol == "" {
		return errors.New("watchlist.path or watchlist.symbol is required")
	}

	if c.Fetch.Concurrency < 1 {
		return errors.New("fetch.concurrency must be >= 1")
	}
	if c.Fetch.MaxRetries < 1 {
		return errors.New("fetch.max_retries must be >= 1")
	}
	if c.Fetch.BaseDelay <= 0 {
		return errors.New("fetch.base_delay must be > 0")
	}
	if c.Fetch.CycleTimeout <= 0 {
		return errors.New("fetch.cycle_timeout must be > 0")
	}
	if c.Fetch.Interval <= 0 {
		return errors.New("fetch.interval must be > 0")
	}

	if c.Snapshot.TopN < 1 {
		return errors.New("snapshot.top_n must be >= 1")
	}

	if c.Feed.XMLPath == "" {
		return errors.New("feed.xml_path is required")
	}
	if c.Feed.CSVPath == "" {
		return errors.New("feed.csv_path is required")
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (db DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
