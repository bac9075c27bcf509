// Package symbols loads the equity watchlist.
//
// The watchlist is a small CSV of "ticker,display_name" rows. The header
// row is optional, '#' starts a comment, and rows with just a ticker are
// fine. Tickers carry an optional exchange suffix (.NS or .BO).
package symbols

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// Parse reads watchlist rows from r.
func Parse(r io.Reader) ([]model.Symbol, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var syms []model.Symbol
	first := true
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read watchlist: %w", err)
		}

		ticker := strings.TrimSpace(rec[0])
		if first {
			first = false
			if strings.EqualFold(ticker, "ticker") {
				continue
			}
		}
		if ticker == "" {
			continue
		}

		display := ""
		if len(rec) > 1 {
			display = strings.TrimSpace(rec[1])
		}
		syms = append(syms, model.NewSymbol(ticker, display))
	}

	return syms, nil
}

// Load reads the watchlist file at path.
func Load(path string) ([]model.Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()

	syms, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return syms, nil
}

// Source re-reads the watchlist file on every pass, so edits take effect
// without a restart.
type Source struct {
	Path string
}

// NewSource creates a file-backed watchlist source.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// Symbols loads the current watchlist.
func (s *Source) Symbols(ctx context.Context) ([]model.Symbol, error) {
	return Load(s.Path)
}

// Static serves a fixed watchlist.
type Static []model.Symbol

// Symbols returns the fixed list.
func (s Static) Symbols(ctx context.Context) ([]model.Symbol, error) {
	return s, nil
}
