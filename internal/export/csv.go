// Package export serializes sales history rows to tabular text formats.
// It is a pure consumer of the ledger's flat rows; row content and order
// come from the ledger, the filename from the caller.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/tillworks/till/internal/model"
)

// WriteCSV writes the rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []model.SaleRow) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// DefaultFilename returns the conventional export filename for the given
// time, e.g. "sales_history_20250115_093042.csv".
func DefaultFilename(t time.Time) string {
	return fmt.Sprintf("sales_history_%s.csv", t.Format("20060102_150405"))
}
