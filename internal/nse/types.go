package nse

import (
	"strconv"
	"strings"
	"time"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// quoteEnvelope mirrors the subset of the quote-equity response we consume.
// The price band arrives under "priceBand" or "priceband" depending on the
// upstream revision.
type quoteEnvelope struct {
	Symbol           string     `json:"symbol"`
	LastPrice        flexFloat  `json:"lastPrice"`
	Open             flexFloat  `json:"open"`
	PreviousClose    flexFloat  `json:"previousClose"`
	DayLow           flexFloat  `json:"dayLow"`
	DayHigh          flexFloat  `json:"dayHigh"`
	FiftyTwoWeekLow  flexFloat  `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh flexFloat  `json:"fiftyTwoWeekHigh"`
	Volume           flexInt    `json:"volume"`
	PriceBand        *priceBand `json:"priceBand"`
	PriceBandAlt     *priceBand `json:"priceband"`
}

type priceBand struct {
	Lower flexFloat `json:"lower"`
	Upper flexFloat `json:"upper"`
}

func (e *quoteEnvelope) band() *priceBand {
	if e.PriceBand != nil {
		return e.PriceBand
	}
	return e.PriceBandAlt
}

// hasQuoteData reports whether the body carried at least one quote field.
// Anti-bot interstitials often return well-formed but empty JSON.
func (e *quoteEnvelope) hasQuoteData() bool {
	return e.LastPrice.ok || e.Open.ok || e.PreviousClose.ok ||
		e.DayLow.ok || e.DayHigh.ok ||
		e.FiftyTwoWeekLow.ok || e.FiftyTwoWeekHigh.ok ||
		e.Volume.ok || e.band() != nil
}

// toQuote converts the envelope to a QuoteSnapshot for the given symbol.
func (e *quoteEnvelope) toQuote(sym model.Symbol, observedAt time.Time) *model.QuoteSnapshot {
	q := &model.QuoteSnapshot{
		Symbol:     sym.Base(),
		Exchange:   sym.Exchange(),
		Open:       e.Open.ptr(),
		PrevClose:  e.PreviousClose.ptr(),
		DayLow:     e.DayLow.ptr(),
		DayHigh:    e.DayHigh.ptr(),
		Week52Low:  e.FiftyTwoWeekLow.ptr(),
		Week52High: e.FiftyTwoWeekHigh.ptr(),
		Volume:     e.Volume.ptr(),
		ObservedAt: observedAt,
	}

	if band := e.band(); band != nil {
		q.LowerCircuit = band.Lower.ptr()
		q.UpperCircuit = band.Upper.ptr()
	}

	return q
}

// flexFloat accepts a number, a quoted number (with or without thousands
// separators), or null. Unparsable values are treated as absent.
type flexFloat struct {
	val float64
	ok  bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := normalizeNumeric(data)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.val = v
	f.ok = true
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.ok {
		return nil
	}
	v := f.val
	return &v
}

// flexInt is flexFloat's integral counterpart, for volume fields that may
// arrive in scientific notation.
type flexInt struct {
	val int64
	ok  bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := normalizeNumeric(data)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.val = int64(v)
	f.ok = true
	return nil
}

func (f flexInt) ptr() *int64 {
	if !f.ok {
		return nil
	}
	v := f.val
	return &v
}

func normalizeNumeric(data []byte) string {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return ""
	}
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
