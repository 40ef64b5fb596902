// =============================================================================
// FZ10 Ingest - XLSX Parser
// =============================================================================
//
// This module is the core of the application: it turns the KBA's FZ 10
// workbook into a stream of normalized long-form records. The sheet carries a
// two-row hierarchical header:
//
//   - a sparse "group" row whose labels span several merged columns (one
//     label per vehicle category), and
//   - a dense "sub-header" row naming each column ("Marke", "Modellreihe",
//     "Juni 2025", "Jan. - Juni 2025", "Anteil in %", ...).
//
// The parser reconstructs column semantics from those two rows, detects the
// repeating column block that represents one category, forward-fills the
// brand key column across blank cells, excludes summary rows, and emits one
// record per (row, category) pair.
//
// PIPELINE (single forward-only pass over a streaming row cursor):
//   1. Skip the fixed count of leading rows above the header
//   2. Resolve the two header rows into a Schema (headers.go, blocks.go)
//   3. Stream data rows through the record Cursor (normalizer.go)
//
// The workbook blob is opened in streaming read-only mode; the row sequence
// is consumed exactly once and is not restartable without reopening.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// LAYOUT CONFIGURATION
// =============================================================================

// Layout describes the structural constants of an FZ 10 workbook: the sheet
// that carries the table and the number of title rows above the group header.
// These are assumptions about the published format, not runtime knobs.
type Layout struct {
	// Sheet is the name of the worksheet containing the table.
	Sheet string

	// SkipRows is the number of leading rows above the group header row.
	// With SkipRows = 7 the group header sits on sheet row 8 and the
	// sub-header on row 9, matching the published FZ 10 format.
	SkipRows int
}

// DefaultLayout returns the layout of the FZ 10.1 table as published by the
// KBA since the 2019 format revision.
func DefaultLayout() Layout {
	return Layout{
		Sheet:    "FZ 10.1",
		SkipRows: 7,
	}
}

// =============================================================================
// PARSER ENTRY POINTS
// =============================================================================

// Parse opens a workbook blob with the default FZ 10.1 layout and returns a
// record cursor positioned before the first data row.
//
// The returned cursor owns the workbook handle; callers must Close it.
func Parse(blob []byte) (*Cursor, error) {
	return ParseWithLayout(blob, DefaultLayout())
}

// ParseWithLayout opens a workbook blob using a custom layout.
//
// The header rows are consumed immediately to build the schema (block layout,
// categories, field keys) before any data row is touched. A missing sheet or
// missing static key columns is a schema error and aborts the pass.
func ParseWithLayout(blob []byte, layout Layout) (*Cursor, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	rows, err := f.Rows(layout.Sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrSchema, layout.Sheet, err)
	}

	group, sub, err := readHeaderRows(rows, layout.SkipRows)
	if err != nil {
		rows.Close()
		f.Close()
		return nil, err
	}

	schema, err := ResolveSchema(group, sub)
	if err != nil {
		rows.Close()
		f.Close()
		return nil, err
	}

	return newCursor(f, rows, schema, layout.SkipRows+2), nil
}
