package feed

import (
	"math"
	"strconv"
	"time"
)

var istZone = time.FixedZone("IST", 5*3600+30*60)

// Timestamp renders t in Indian Standard Time at seconds precision,
// e.g. "2026-01-02T15:30:00+05:30".
func Timestamp(t time.Time) string {
	return t.In(istZone).Format("2006-01-02T15:04:05-07:00")
}

// fmtPrice renders a price with two decimals. Unreported and non-finite
// values become empty strings, matching the published feed schema.
func fmtPrice(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func fmtVolume(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
