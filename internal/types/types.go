// =============================================================================
// FZ10 Ingest - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser
//   - ingest
//   - store
//   - exporter
//
// =============================================================================

package types

import "fmt"

// =============================================================================
// RECORD TYPES
// =============================================================================

// NormalizedRecord is one long-form registration record: the value of a single
// (data row, category block) pair after header resolution and pivoting.
//
// Pointer fields are nullable. A nil Year/Period/Count means the source sheet
// carried no parseable value for that field; the record is still valid.
type NormalizedRecord struct {
	// Brand is the manufacturer name ("Marke"), forward-filled from the
	// nearest non-empty cell at or above the source row.
	Brand string

	// ModelSeries is the vehicle line within a brand ("Modellreihe").
	ModelSeries string

	// Category is the group-header label spanning the column block this
	// record was pivoted from (e.g. a vehicle class).
	Category string

	// Year is the reporting year parsed from the sub-header labels.
	Year *int

	// Period is the single-period name (e.g. "Juni") parsed from the
	// sub-header label of the monthly count column.
	Period *string

	// PeriodRange is the cumulative range (e.g. "Jan.-Juni") parsed from the
	// sub-header label of the cumulative count column.
	PeriodRange *string

	// Count is the registration count for the single period. Nil if the cell
	// was empty or not numeric.
	Count *int64

	// CountRange is the raw cell value of the cumulative column. Kept
	// unparsed because the source mixes counts with placeholders.
	CountRange *string

	// Extra holds block columns whose sub-header label carries no
	// period/year information (e.g. "Anteil in %"), keyed by the normalized
	// field key.
	Extra map[string]string
}

// RecordSource is a forward-only cursor over normalized records. It follows
// the database/sql Rows protocol: Next advances, Record returns the current
// element, Err reports the first error once Next returns false.
//
// A RecordSource may be consumed exactly once; the backing spreadsheet reader
// is not restartable.
type RecordSource interface {
	Next() bool
	Record() NormalizedRecord
	Err() error
}

// =============================================================================
// REPORTING PERIOD
// =============================================================================

// Period identifies one monthly FZ 10 publication.
type Period struct {
	Year  int
	Month int
}

// String renders the period as "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Valid reports whether the period is a plausible publication date.
// The KBA publishes FZ 10 monthly from 2006 onwards.
func (p Period) Valid() bool {
	return p.Year >= 2006 && p.Year <= 2100 && p.Month >= 1 && p.Month <= 12
}
