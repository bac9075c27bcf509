package feed

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

var csvHeader = []string{
	"timestamp", "exchange", "symbol",
	"open", "prev_close", "todays_low", "todays_high",
	"week52_low", "week52_high", "volume",
	"lower_circuit", "upper_circuit",
}

// AppendCSV appends one history row per quote, writing the header first
// when the file is new or empty.
func AppendCSV(path string, snap model.RankedSnapshot) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, q := range snap.Quotes {
		row := []string{
			Timestamp(q.ObservedAt),
			q.Exchange,
			q.Symbol,
			fmtPrice(q.Open),
			fmtPrice(q.PrevClose),
			fmtPrice(q.DayLow),
			fmtPrice(q.DayHigh),
			fmtPrice(q.Week52Low),
			fmtPrice(q.Week52High),
			fmtVolume(q.Volume),
			fmtPrice(q.LowerCircuit),
			fmtPrice(q.UpperCircuit),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", q.Symbol, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
