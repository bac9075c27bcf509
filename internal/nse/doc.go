// Package nse provides the client for the NSE public quote API.
//
// The endpoint sits behind an anti-automation layer:
//   - Data requests are only served to sessions that first visited the site
//     root and collected its cookies (warm-up)
//   - Requests need a browser-like User-Agent and a Referer for the symbol
//   - Sessions expire without notice; expiry surfaces as 401/403
//   - Throttled callers receive 429 or an HTML interstitial page
//
// SessionManager owns the live session and serializes warm-ups so a burst of
// expired workers triggers exactly one renewal.
package nse
