package model

import (
	"strings"
	"time"
)

// Exchange identifiers used throughout the pipeline.
const (
	ExchangeNSE = "NSE"
	ExchangeBSE = "BSE"
)

// -----------------------------------------------------------------------------
// Watchlist Types
// -----------------------------------------------------------------------------

// Symbol identifies one watchlist entry. Immutable once loaded.
type Symbol struct {
	Ticker      string // Upper case, optionally suffixed ".NS"/".BO" (e.g. "RELIANCE.NS")
	DisplayName string // Human-readable name; falls back to the ticker
}

// NewSymbol normalizes raw watchlist fields into a Symbol.
func NewSymbol(ticker, displayName string) Symbol {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	d := strings.TrimSpace(displayName)
	if d == "" {
		d = t
	}
	return Symbol{Ticker: t, DisplayName: d}
}

// Base returns the ticker with any exchange suffix stripped. Quotes for the
// NSE and BSE variants of one instrument share a base.
func (s Symbol) Base() string {
	base, _ := splitTicker(s.Ticker)
	return base
}

// Exchange returns which exchange the ticker variant trades on. Unsuffixed
// tickers default to NSE.
func (s Symbol) Exchange() string {
	_, exchange := splitTicker(s.Ticker)
	return exchange
}

func splitTicker(ticker string) (base, exchange string) {
	switch {
	case strings.HasSuffix(ticker, ".NS"):
		return strings.TrimSuffix(ticker, ".NS"), ExchangeNSE
	case strings.HasSuffix(ticker, ".BO"):
		return strings.TrimSuffix(ticker, ".BO"), ExchangeBSE
	default:
		return ticker, ExchangeNSE
	}
}

// -----------------------------------------------------------------------------
// Error Classification
// -----------------------------------------------------------------------------

// ErrorKind categorizes a failed fetch attempt for retry decisions.
type ErrorKind string

const (
	// KindNetwork covers connection failures, timeouts and 5xx responses.
	KindNetwork ErrorKind = "network"
	// KindUnauthorized is an HTTP 401: the session is no longer accepted.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindForbidden is an HTTP 403: the anti-automation layer rejected us.
	KindForbidden ErrorKind = "forbidden"
	// KindRateLimited is an HTTP 429; it backs off like a network error.
	KindRateLimited ErrorKind = "rate_limited"
	// KindMalformed is a body that is not JSON or carries no quote fields,
	// typically a transient anti-bot page.
	KindMalformed ErrorKind = "malformed"
)

// IsAuth reports whether the kind signals a rejected session.
func (k ErrorKind) IsAuth() bool {
	return k == KindUnauthorized || k == KindForbidden
}

// -----------------------------------------------------------------------------
// Quote Types
// -----------------------------------------------------------------------------

// QuoteSnapshot is one observed quote for one exchange variant of a symbol.
// Pointer fields stay nil when the upstream omitted the value.
type QuoteSnapshot struct {
	Symbol   string // Base ticker, no exchange suffix
	Exchange string // ExchangeNSE or ExchangeBSE

	Open       *float64
	PrevClose  *float64
	DayLow     *float64
	DayHigh    *float64
	Week52Low  *float64
	Week52High *float64
	Volume     *int64

	// Circuit limits from the price band, when published.
	LowerCircuit *float64
	UpperCircuit *float64

	ObservedAt time.Time
}

// FetchResult is the outcome of all attempts for one symbol. Exactly one is
// produced per input symbol, whatever the failure mix.
type FetchResult struct {
	Symbol   Symbol
	Quote    *QuoteSnapshot // nil when the fetch failed
	Kind     ErrorKind      // set when Quote is nil
	Err      error          // last error observed, set when Quote is nil
	Attempts int
}

// OK reports whether the fetch produced a quote.
func (r FetchResult) OK() bool {
	return r.Quote != nil
}

// Ok builds a successful result.
func Ok(sym Symbol, quote *QuoteSnapshot, attempts int) FetchResult {
	return FetchResult{Symbol: sym, Quote: quote, Attempts: attempts}
}

// Failed builds a terminal failure result.
func Failed(sym Symbol, kind ErrorKind, err error, attempts int) FetchResult {
	return FetchResult{Symbol: sym, Kind: kind, Err: err, Attempts: attempts}
}

// RankedSnapshot is the deduplicated, most-recent-first output of one
// acquisition cycle, truncated to the configured top-N.
type RankedSnapshot struct {
	GeneratedAt time.Time
	Quotes      []QuoteSnapshot
}
