package nse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// APIError represents an error response from the quote API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nse api error %d: %s", e.StatusCode, e.Message)
}

// Kind maps the HTTP status to an error kind. Statuses other than the
// explicit auth and throttle signals count as malformed: the upstream answers
// automation checks with odd 4xx pages that usually pass on retry.
func (e *APIError) Kind() model.ErrorKind {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return model.KindUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return model.KindForbidden
	case e.StatusCode == http.StatusTooManyRequests:
		return model.KindRateLimited
	case e.StatusCode >= 500:
		return model.KindNetwork
	default:
		return model.KindMalformed
	}
}

// MalformedError reports a 2xx response whose body is not a usable quote.
type MalformedError struct {
	Reason string
	Cause  error
}

func (e *MalformedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return e.Cause
}

// Classify maps any fetch error to its retry kind. Transport errors,
// timeouts and cancellations all count as network failures.
func Classify(err error) model.ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	var malErr *MalformedError
	if errors.As(err, &malErr) {
		return model.KindMalformed
	}
	return model.KindNetwork
}

// Warmup establishes a fresh session by visiting the site root, which hands
// out the cookies the quote endpoint requires.
func (c *Client) Warmup(ctx context.Context) (*Session, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	hc, err := c.newHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("create warm-up request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("warm-up request: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "warm-up rejected: " + http.StatusText(resp.StatusCode),
		}
	}

	c.logger.Debug("session warmed up", "status", resp.StatusCode)

	return &Session{
		client:    hc,
		createdAt: time.Now(),
		state:     StateWarmed,
	}, nil
}

// Quote fetches the current quote for one symbol using the given session.
// The symbol's exchange suffix is stripped for the request and recorded on
// the returned snapshot.
func (c *Client) Quote(ctx context.Context, s *Session, sym model.Symbol) (*model.QuoteSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	s.markActive()

	base := sym.Base()
	query := url.Values{}
	query.Set("symbol", base)
	fullURL := c.baseURL + c.quotePath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create quote request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", c.baseURL+"/get-quotes/equity?symbol="+url.QueryEscape(base))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			s.markExpired()
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var env quoteEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedError{Reason: "body is not json", Cause: err}
	}
	if !env.hasQuoteData() {
		return nil, &MalformedError{Reason: "no quote fields in body"}
	}

	quote := env.toQuote(sym, time.Now())

	c.logger.Debug("quote fetched",
		"symbol", sym.Ticker,
		"exchange", quote.Exchange,
	)

	return quote, nil
}
