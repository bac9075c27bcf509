package feed

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/lohithgpbasu/stockfeed/internal/metrics"
	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// stockFeed is the XML document root. The child tags mirror the published
// feed schema; consumers parse it by tag name, so the set is fixed.
type stockFeed struct {
	XMLName     xml.Name    `xml:"stockFeed"`
	GeneratedAt string      `xml:"generatedAt,attr"`
	Stocks      []stockElem `xml:"stock"`
}

type stockElem struct {
	Exchange     string `xml:"exchange,attr"`
	Symbol       string `xml:"symbol,attr"`
	Open         string `xml:"open"`
	PrevClose    string `xml:"prevClose"`
	TodaysLow    string `xml:"todaysLow"`
	TodaysHigh   string `xml:"todaysHigh"`
	Week52Low    string `xml:"week52Low"`
	Week52High   string `xml:"week52High"`
	Volume       string `xml:"volume"`
	LowerCircuit string `xml:"lowerCircuit"`
	UpperCircuit string `xml:"upperCircuit"`
}

func toStockElem(q model.QuoteSnapshot) stockElem {
	return stockElem{
		Exchange:     q.Exchange,
		Symbol:       q.Symbol,
		Open:         fmtPrice(q.Open),
		PrevClose:    fmtPrice(q.PrevClose),
		TodaysLow:    fmtPrice(q.DayLow),
		TodaysHigh:   fmtPrice(q.DayHigh),
		Week52Low:    fmtPrice(q.Week52Low),
		Week52High:   fmtPrice(q.Week52High),
		Volume:       fmtVolume(q.Volume),
		LowerCircuit: fmtPrice(q.LowerCircuit),
		UpperCircuit: fmtPrice(q.UpperCircuit),
	}
}

// WriteXML renders the snapshot and atomically replaces the feed file, so
// readers never observe a half-written document.
func WriteXML(path string, snap model.RankedSnapshot) error {
	doc := stockFeed{
		GeneratedAt: Timestamp(snap.GeneratedAt),
		Stocks:      make([]stockElem, 0, len(snap.Quotes)),
	}
	for _, q := range snap.Quotes {
		doc.Stocks = append(doc.Stocks, toStockElem(q))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}

	data := make([]byte, 0, len(xml.Header)+len(out)+1)
	data = append(data, xml.Header...)
	data = append(data, out...)
	data = append(data, '\n')

	if err := writeAtomic(path, data); err != nil {
		return err
	}
	metrics.FeedBytes.Add(float64(len(data)))
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
