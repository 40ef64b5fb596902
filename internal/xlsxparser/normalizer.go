// =============================================================================
// FZ10 Ingest - Row Normalizer
// =============================================================================
//
// Streams the data rows below the headers and pivots each category block into
// one normalized record. The only cross-row state in the engine is the
// forward-filled brand: the source format carries the manufacturer name down
// implicitly via blank cells, so the cursor threads a single accumulator
// through one sequential scan. Each cursor owns its own accumulator; nothing
// is shared across invocations.
//
// USAGE:
//   cur, err := xlsxparser.Parse(blob)
//   if err != nil {
//       return err
//   }
//   defer cur.Close()
//
//   for cur.Next() {
//       rec := cur.Record()
//       // Process the record...
//   }
//
//   if err := cur.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kbadata/fz10/internal/types"
)

// summarySentinel is the literal marker the KBA places in the model series
// column of per-brand total rows.
const summarySentinel = "ZUSAMMEN"

// summaryTextRE matches the aggregate-row wording in the brand column
// ("Insgesamt" for the grand total, "Zusammen" for subtotals).
var summaryTextRE = regexp.MustCompile(`(?i)insgesamt|zusammen`)

// =============================================================================
// RECORD CURSOR
// =============================================================================

// Cursor is a lazy, forward-only stream of normalized records over one
// workbook. It implements types.RecordSource and follows the database/sql
// Rows protocol. Each data row expands into one record per category, so a
// single call to the underlying row reader can buffer several records.
type Cursor struct {
	f      *excelize.File
	rows   *excelize.Rows
	schema *Schema

	// parsed holds the label-parser output for each block column, computed
	// once; block structure is uniform across categories.
	parsed []LabelFields

	// brand is the forward-fill accumulator threaded through the pass.
	brand string

	pending   []types.NormalizedRecord
	current   types.NormalizedRecord
	rowNumber int
	err       error
	closed    bool
}

// newCursor wraps an open streaming row reader positioned just after the
// header rows. headerRows is the 1-based sheet row number of the sub-header,
// used for error reporting.
func newCursor(f *excelize.File, rows *excelize.Rows, schema *Schema, headerRows int) *Cursor {
	parsed := make([]LabelFields, len(schema.FieldLabels))
	for i, label := range schema.FieldLabels {
		parsed[i] = ParseLabel(label)
	}
	return &Cursor{
		f:         f,
		rows:      rows,
		schema:    schema,
		parsed:    parsed,
		rowNumber: headerRows,
	}
}

// Schema returns the resolved column layout.
func (c *Cursor) Schema() *Schema {
	return c.schema
}

// Next advances to the next record. Returns false when the sheet is
// exhausted or an error occurred; check Err afterwards.
func (c *Cursor) Next() bool {
	if c.err != nil || c.closed {
		return false
	}

	for len(c.pending) == 0 {
		if !c.rows.Next() {
			if err := c.rows.Error(); err != nil {
				c.err = fmt.Errorf("error streaming rows: %w", err)
			}
			return false
		}
		cells, err := c.rows.Columns()
		if err != nil {
			c.err = fmt.Errorf("error reading row %d: %w", c.rowNumber+1, err)
			return false
		}
		c.rowNumber++
		c.pending = c.normalizeRow(cells)
	}

	c.current = c.pending[0]
	c.pending = c.pending[1:]
	return true
}

// Record returns the current record. Only valid after Next returned true.
func (c *Cursor) Record() types.NormalizedRecord {
	return c.current
}

// RowNumber returns the 1-based sheet row number of the most recently read
// data row.
func (c *Cursor) RowNumber() int {
	return c.rowNumber
}

// Err returns the first error encountered while streaming.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the streaming reader and the workbook handle.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	rowsErr := c.rows.Close()
	fileErr := c.f.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return fileErr
}

// =============================================================================
// ROW NORMALIZATION
// =============================================================================

// normalizeRow pivots one raw data row into zero or more records, strictly in
// this order:
//
//  1. Blank separator rows are dropped.
//  2. The brand accumulator updates from a non-empty key cell. This happens
//     before the summary checks, so a summary brand carries down into the
//     blank rows below it until a new brand appears.
//  3. Rows whose filled brand matches the summary wording are dropped.
//  4. Rows whose model series equals the summary sentinel are dropped.
//  5. Everything else yields one record per category block. Exclusion is
//     all-or-nothing per row; no partial records.
func (c *Cursor) normalizeRow(cells []string) []types.NormalizedRecord {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	if rowEmpty(cells) {
		return nil
	}

	if b := cell(c.schema.BrandCol); b != "" {
		c.brand = b
	}

	if summaryTextRE.MatchString(c.brand) {
		return nil
	}

	model := cell(c.schema.ModelCol)
	if model == summarySentinel {
		return nil
	}

	records := make([]types.NormalizedRecord, 0, len(c.schema.Categories))
	for bi, category := range c.schema.Categories {
		rec := types.NormalizedRecord{
			Brand:       c.brand,
			ModelSeries: model,
			Category:    category,
		}

		for j := 0; j < c.schema.BlockWidth; j++ {
			value := cell(c.schema.BlockStart + bi*c.schema.BlockWidth + j)
			label := c.parsed[j]

			switch {
			case label.PeriodRange != "":
				rng := label.PeriodRange
				rec.PeriodRange = &rng
				// The range year overwrites a single-period year
				// unconditionally, matching the source data where both
				// labels always name the same year.
				year := label.Year
				rec.Year = &year
				if value != "" {
					v := value
					rec.CountRange = &v
				}

			case label.Year != 0:
				period := label.Period
				rec.Period = &period
				if rec.Year == nil {
					year := label.Year
					rec.Year = &year
				}
				rec.Count = parseCount(value)

			default:
				// Columns without period semantics (e.g. "Anteil in %")
				// ride along under their normalized key.
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[c.schema.FieldKeys[j]] = value
			}
		}

		records = append(records, rec)
	}
	return records
}

// rowEmpty checks if a row contains only empty cells.
func rowEmpty(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCount coerces a count cell to an integer. The KBA uses dot grouping
// for thousands and a "-" placeholder for suppressed values; anything that
// does not parse becomes nil rather than an error, since the row itself is
// still valid.
func parseCount(raw string) *int64 {
	t := strings.TrimSpace(raw)
	if t == "" {
		return nil
	}
	t = strings.ReplaceAll(t, " ", "")
	t = strings.ReplaceAll(t, " ", "")
	t = strings.ReplaceAll(t, ".", "")
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
