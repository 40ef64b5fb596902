// =============================================================================
// FZ10 Ingest - CSV Exporter
// =============================================================================
//
// Writes stored registration records back out as a flat CSV file, one row per
// normalized record, in the same column order the store uses for its natural
// key. The extra JSON column is passed through verbatim so nothing parsed
// from the sheet is lost on the way out.
//
// =============================================================================

package exporter

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kbadata/fz10/internal/store"
	"github.com/kbadata/fz10/pkg/utils"
)

// header is the fixed CSV column order.
var header = []string{
	"brand", "model_series", "category",
	"year", "period", "period_range",
	"count", "count_range", "extra",
}

// Write renders records as CSV to an arbitrary writer.
func Write(w io.Writer, records []store.StoredRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Brand,
			rec.ModelSeries,
			rec.Category,
			yearField(rec.Year),
			rec.Period,
			rec.PeriodRange.String,
			countField(rec.Count),
			rec.CountRange.String,
			rec.Extra,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile renders records as CSV into a file, creating parent directories
// as needed.
func WriteFile(path string, records []store.StoredRecord) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// yearField renders the year key column; the zero stand-in for "no year"
// exports as an empty field.
func yearField(year int64) string {
	if year == 0 {
		return ""
	}
	return strconv.FormatInt(year, 10)
}

// countField renders a nullable count.
func countField(count sql.NullInt64) string {
	if !count.Valid {
		return ""
	}
	return strconv.FormatInt(count.Int64, 10)
}
