package nse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// TestQuoteEnvelopeUnmarshal tests tolerant parsing of quote bodies.
func TestQuoteEnvelopeUnmarshal(t *testing.T) {
	t.Run("plain numbers", func(t *testing.T) {
		var env quoteEnvelope
		err := json.Unmarshal([]byte(`{"open": 101.5, "volume": 42000}`), &env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !env.Open.ok || env.Open.val != 101.5 {
			t.Errorf("Open = %+v, want 101.5", env.Open)
		}
		if !env.Volume.ok || env.Volume.val != 42000 {
			t.Errorf("Volume = %+v, want 42000", env.Volume)
		}
	})

	t.Run("quoted numbers with separators", func(t *testing.T) {
		var env quoteEnvelope
		err := json.Unmarshal([]byte(`{"previousClose": "2,890.10", "volume": "1,52,80,000"}`), &env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !env.PreviousClose.ok || env.PreviousClose.val != 2890.10 {
			t.Errorf("PreviousClose = %+v, want 2890.10", env.PreviousClose)
		}
		if !env.Volume.ok || env.Volume.val != 15280000 {
			t.Errorf("Volume = %+v, want 15280000", env.Volume)
		}
	})

	t.Run("null and unparsable values are absent", func(t *testing.T) {
		var env quoteEnvelope
		err := json.Unmarshal([]byte(`{"open": null, "dayLow": "-", "dayHigh": ""}`), &env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Open.ok || env.DayLow.ok || env.DayHigh.ok {
			t.Errorf("absent fields parsed: open=%v dayLow=%v dayHigh=%v",
				env.Open.ok, env.DayLow.ok, env.DayHigh.ok)
		}
	})

	t.Run("scientific notation volume", func(t *testing.T) {
		var env quoteEnvelope
		err := json.Unmarshal([]byte(`{"volume": 1.5e6}`), &env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !env.Volume.ok || env.Volume.val != 1500000 {
			t.Errorf("Volume = %+v, want 1500000", env.Volume)
		}
	})
}

// TestHasQuoteData tests detection of empty anti-bot bodies.
func TestHasQuoteData(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{"empty object", `{}`, false},
		{"unrelated fields only", `{"status": "ok", "message": "hello"}`, false},
		{"single price field", `{"lastPrice": 10}`, true},
		{"volume only", `{"volume": 5}`, true},
		{"band only", `{"priceBand": {"lower": 1, "upper": 2}}`, true},
		{"lowercase band only", `{"priceband": {"lower": 1, "upper": 2}}`, true},
		{"all values null", `{"open": null, "dayLow": null}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env quoteEnvelope
			if err := json.Unmarshal([]byte(tt.body), &env); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := env.hasQuoteData(); got != tt.expected {
				t.Errorf("hasQuoteData() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestBandPreference tests that the canonical priceBand key wins.
func TestBandPreference(t *testing.T) {
	var env quoteEnvelope
	body := `{"priceBand": {"lower": 90, "upper": 110}, "priceband": {"lower": 1, "upper": 2}}`
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	band := env.band()
	if band == nil {
		t.Fatal("band() = nil, want priceBand")
	}
	if band.Lower.val != 90 || band.Upper.val != 110 {
		t.Errorf("band = [%v, %v], want [90, 110]", band.Lower.val, band.Upper.val)
	}
}

// TestToQuote tests envelope to snapshot conversion.
func TestToQuote(t *testing.T) {
	var env quoteEnvelope
	body := `{
		"open": 100.5,
		"previousClose": 99,
		"dayLow": 98,
		"dayHigh": 102,
		"fiftyTwoWeekLow": 80,
		"fiftyTwoWeekHigh": 120,
		"volume": 1000,
		"priceBand": {"lower": 90, "upper": 110}
	}`
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	observedAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	quote := env.toQuote(model.NewSymbol("HDFCBANK.BO", ""), observedAt)

	if quote.Symbol != "HDFCBANK" {
		t.Errorf("Symbol = %q, want %q", quote.Symbol, "HDFCBANK")
	}
	if quote.Exchange != model.ExchangeBSE {
		t.Errorf("Exchange = %q, want %q", quote.Exchange, model.ExchangeBSE)
	}
	if quote.Open == nil || *quote.Open != 100.5 {
		t.Errorf("Open = %v, want 100.5", quote.Open)
	}
	if quote.Week52High == nil || *quote.Week52High != 120 {
		t.Errorf("Week52High = %v, want 120", quote.Week52High)
	}
	if quote.Volume == nil || *quote.Volume != 1000 {
		t.Errorf("Volume = %v, want 1000", quote.Volume)
	}
	if quote.LowerCircuit == nil || *quote.LowerCircuit != 90 {
		t.Errorf("LowerCircuit = %v, want 90", quote.LowerCircuit)
	}
	if !quote.ObservedAt.Equal(observedAt) {
		t.Errorf("ObservedAt = %v, want %v", quote.ObservedAt, observedAt)
	}

	t.Run("sparse envelope", func(t *testing.T) {
		var sparse quoteEnvelope
		if err := json.Unmarshal([]byte(`{"lastPrice": 5}`), &sparse); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		q := sparse.toQuote(model.NewSymbol("X", ""), observedAt)
		if q.Open != nil || q.Volume != nil || q.LowerCircuit != nil {
			t.Error("sparse envelope should leave unreported fields nil")
		}
	})
}
