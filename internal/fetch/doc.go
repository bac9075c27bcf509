// Package fetch implements the quote acquisition pipeline.
//
// The pipeline:
//   - Fans symbol fetches out over a bounded worker pool
//   - Retries failed attempts with linear backoff per the retry policy
//   - Renews the shared session at most once per symbol on auth failures
//   - Merges results into a ranked snapshot and hands it downstream
//   - Repeats on a fixed interval until stopped
package fetch
