package nse

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"
)

// Client issues warm-up and quote requests against the NSE public API.
// It is safe for concurrent use; a shared rate limiter paces all callers.
type Client struct {
	baseURL   string
	quotePath string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger

	// newHTTPClient builds the cookie-holding client for each warm-up.
	newHTTPClient func() (*http.Client, error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a quote API client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   baseURL,
		quotePath: "/api/quote-equity",
		userAgent: "Mozilla/5.0",
		timeout:   10 * time.Second,
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
		logger:    slog.Default(),
	}
	c.newHTTPClient = c.defaultHTTPClient

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithQuotePath overrides the quote endpoint path.
func WithQuotePath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.quotePath = path
		}
	}
}

// WithUserAgent sets the User-Agent presented to the upstream.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps the request rate shared by all workers.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClientFactory overrides how per-session HTTP clients are built.
func WithHTTPClientFactory(f func() (*http.Client, error)) ClientOption {
	return func(c *Client) {
		if f != nil {
			c.newHTTPClient = f
		}
	}
}

func (c *Client) defaultHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Jar:     jar,
		Timeout: c.timeout,
	}, nil
}
