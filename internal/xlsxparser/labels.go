// =============================================================================
// FZ10 Ingest - Label Parser
// =============================================================================

package xlsxparser

import (
	"regexp"
	"strconv"
	"strings"
)

// LabelFields holds the structured fields extracted from a free-text
// sub-header label. Exactly one of Period or PeriodRange is set; Year is 0
// when the label carries no trailing four-digit year.
type LabelFields struct {
	Period      string
	PeriodRange string
	Year        int
}

// Label grammar: a small, explicit two-rule grammar (range first, then
// single period) with an unmatched fallback. Deliberately not generalized
// beyond these two shapes; the source format has shown no others.
var (
	rangeLabelRE  = regexp.MustCompile(`^(.+?)\s*-\s*(.+?)\s+(\d{4})$`)
	singleLabelRE = regexp.MustCompile(`^(.*\S)\s+(\d{4})$`)
)

// ParseLabel extracts period fields from a raw sub-header text fragment.
//
//	"Juni 2025"        -> Period "Juni", Year 2025
//	"Jan. - Juni 2025" -> PeriodRange "Jan.-Juni", Year 2025
//	"Anteil in %"      -> Period "Anteil in %", Year 0
//
// Malformed text never fails; the unmatched fallback keeps the original text
// as the period name.
func ParseLabel(text string) LabelFields {
	t := strings.TrimSpace(text)

	if m := rangeLabelRE.FindStringSubmatch(t); m != nil {
		year, _ := strconv.Atoi(m[3])
		return LabelFields{PeriodRange: m[1] + "-" + m[2], Year: year}
	}

	if m := singleLabelRE.FindStringSubmatch(t); m != nil {
		year, _ := strconv.Atoi(m[2])
		return LabelFields{Period: m[1], Year: year}
	}

	return LabelFields{Period: t}
}
