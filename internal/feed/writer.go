package feed

import (
	"context"
	"log/slog"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// Writer renders each snapshot to the XML feed and the CSV history.
type Writer struct {
	xmlPath string
	csvPath string
	logger  *slog.Logger
}

// NewWriter creates a Writer targeting the given output files.
func NewWriter(xmlPath, csvPath string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		xmlPath: xmlPath,
		csvPath: csvPath,
		logger:  logger,
	}
}

// HandleSnapshot writes both artifacts. The history append runs first so a
// failed XML replace cannot leave the feed ahead of the history.
func (w *Writer) HandleSnapshot(ctx context.Context, snap model.RankedSnapshot) error {
	if err := AppendCSV(w.csvPath, snap); err != nil {
		return err
	}
	if err := WriteXML(w.xmlPath, snap); err != nil {
		return err
	}

	w.logger.Debug("snapshot written",
		"quotes", len(snap.Quotes),
		"xml", w.xmlPath,
		"csv", w.csvPath,
	)
	return nil
}
