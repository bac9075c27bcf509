// Package model defines shared data types flowing through the feed pipeline.
//
// Conventions:
//   - Optional numeric quote fields are pointers; nil means the upstream did
//     not report a value, which is distinct from zero
//   - Tickers are upper case; ".NS"/".BO" suffixes select the exchange variant
//   - Timestamps are time.Time, rendered in exchange-local form only at the
//     feed boundary
package model
