// Package merge collapses per-symbol fetch results into a ranked snapshot.
package merge

import (
	"sort"
	"time"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// Merge builds a RankedSnapshot from a batch of fetch results. Failed
// results are dropped, duplicate symbols keep the most recently observed
// quote, and the survivors are ranked newest first. A positive topN caps
// the snapshot at the N freshest quotes.
func Merge(results []model.FetchResult, topN int) model.RankedSnapshot {
	latest := make(map[string]*model.QuoteSnapshot)
	for _, r := range results {
		if !r.OK() {
			continue
		}
		q := r.Quote
		if prev, ok := latest[q.Symbol]; ok && !q.ObservedAt.After(prev.ObservedAt) {
			continue
		}
		latest[q.Symbol] = q
	}

	quotes := make([]model.QuoteSnapshot, 0, len(latest))
	for _, q := range latest {
		quotes = append(quotes, *q)
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].ObservedAt.Equal(quotes[j].ObservedAt) {
			return quotes[i].Symbol < quotes[j].Symbol
		}
		return quotes[i].ObservedAt.After(quotes[j].ObservedAt)
	})

	if topN > 0 && len(quotes) > topN {
		quotes = quotes[:topN]
	}

	return model.RankedSnapshot{
		GeneratedAt: time.Now(),
		Quotes:      quotes,
	}
}

// Failures counts the results that did not produce a quote.
func Failures(results []model.FetchResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
