// Package feed renders ranked snapshots to the published artifacts.
//
// Two files per pass:
//   - feed.xml: the full snapshot, regenerated atomically (tmp + rename)
//   - store-stock-details.csv: append-only history, one row per quote
//
// All timestamps render in Indian Standard Time (UTC+05:30) at seconds
// precision. Unreported values render as empty strings.
package feed
