// =============================================================================
// FZ10 Ingest - Header Resolver
// =============================================================================
//
// Reads the two overlapping header rows and reconstructs usable column
// semantics. The group row is sparse: a label appears only in the first cell
// of a merged span, every other cell of the span is empty. Forward-filling
// left-to-right recovers the merged-cell semantics without access to the
// workbook's merge metadata.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSchema marks a fatal structural mismatch between the workbook and the
// expected FZ 10 layout: a missing sheet, truncated header rows, or absent
// static key columns. This is a precondition failure, not a data-quality
// issue, and always aborts the pass.
var ErrSchema = errors.New("unexpected sheet schema")

// Static key column labels as printed in the FZ 10.1 sub-header.
const (
	brandLabel = "Marke"
	modelLabel = "Modellreihe"
)

// readHeaderRows advances the streaming cursor past the leading title rows
// and reads exactly two rows: the sparse group header and the dense
// sub-header.
func readHeaderRows(rows *excelize.Rows, skip int) (group, sub []string, err error) {
	for i := 0; i < skip; i++ {
		if !rows.Next() {
			return nil, nil, fmt.Errorf("%w: sheet ends at row %d, before the header rows", ErrSchema, i)
		}
	}

	group, err = nextRow(rows, "group header")
	if err != nil {
		return nil, nil, err
	}
	sub, err = nextRow(rows, "sub-header")
	if err != nil {
		return nil, nil, err
	}
	return group, sub, nil
}

// nextRow reads one row from the cursor, failing with a schema error if the
// sheet ends early.
func nextRow(rows *excelize.Rows, what string) ([]string, error) {
	if !rows.Next() {
		return nil, fmt.Errorf("%w: sheet ends before the %s row", ErrSchema, what)
	}
	cells, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s row: %w", what, err)
	}
	return cells, nil
}

// forwardFill carries the last seen non-empty value across empty cells,
// left-to-right. Cells before the first non-empty value stay empty.
func forwardFill(cells []string) []string {
	filled := make([]string, len(cells))
	last := ""
	for i, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			last = strings.TrimSpace(cell)
		}
		filled[i] = last
	}
	return filled
}

// padTo extends a row with empty cells up to n columns. The streaming reader
// trims trailing empties per row, so the group row is usually shorter than
// the sub-header row.
func padTo(cells []string, n int) []string {
	if len(cells) >= n {
		return cells
	}
	padded := make([]string, n)
	copy(padded, cells)
	return padded
}

// findColumn locates a static key column in the sub-header by label.
// Matching is case-insensitive and tolerates the footnote markers the KBA
// appends to labels (e.g. "Modellreihe 2)"), hence the prefix fallback.
// Returns -1 if the label is not present.
func findColumn(sub []string, label string) int {
	for i, cell := range sub {
		if strings.EqualFold(strings.TrimSpace(cell), label) {
			return i
		}
	}
	for i, cell := range sub {
		trimmed := strings.TrimSpace(cell)
		if len(trimmed) >= len(label) && strings.EqualFold(trimmed[:len(label)], label) {
			return i
		}
	}
	return -1
}
