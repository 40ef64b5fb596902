// =============================================================================
// FZ10 Ingest - Block Segmenter
// =============================================================================
//
// Determines the repeating column block from the resolved headers. After the
// static key columns, the sheet repeats one group of columns per vehicle
// category; the block width is detected dynamically from the forward-filled
// group row rather than hard-coded, so the parser adapts if the KBA adds or
// removes a sub-column.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"regexp"
	"strings"
)

// Schema is the resolved column layout of one FZ 10 sheet. It is built once
// from the two header rows and reused for every data row.
type Schema struct {
	// BrandCol and ModelCol are the indices of the static key columns.
	BrandCol int
	ModelCol int

	// BlockStart is the index of the first dynamic column; BlockWidth is the
	// number of columns in one category block. Block width is constant
	// across all categories in a sheet.
	BlockStart int
	BlockWidth int

	// Categories is the ordered list of group-header labels, sampled at the
	// first column of each block.
	Categories []string

	// FieldLabels are the raw sub-header labels of the first block; the
	// block structure is uniform, so they apply to every category.
	FieldLabels []string

	// FieldKeys are the normalized forms of FieldLabels (lowercase,
	// underscore-separated).
	FieldKeys []string
}

// ResolveSchema builds the Schema from the raw group header row and the dense
// sub-header row.
func ResolveSchema(group, sub []string) (*Schema, error) {
	brandCol := findColumn(sub, brandLabel)
	if brandCol < 0 {
		return nil, fmt.Errorf("%w: sub-header is missing the %q column", ErrSchema, brandLabel)
	}
	modelCol := findColumn(sub, modelLabel)
	if modelCol < 0 {
		return nil, fmt.Errorf("%w: sub-header is missing the %q column", ErrSchema, modelLabel)
	}

	start := brandCol
	if modelCol > start {
		start = modelCol
	}
	start++

	if start >= len(sub) {
		return nil, fmt.Errorf("%w: no data columns after the static key columns", ErrSchema)
	}

	filled := forwardFill(padTo(group, len(sub)))
	if filled[start] == "" {
		return nil, fmt.Errorf("%w: group header is empty above the first data column", ErrSchema)
	}

	// Block width: run length of identical filled group values starting at
	// the first dynamic column.
	width := 0
	for i := start; i < len(filled) && filled[i] == filled[start]; i++ {
		width++
	}

	// Categories repeat every width columns until the header row ends.
	var categories []string
	for c := start; c < len(filled); c += width {
		label := strings.TrimSpace(filled[c])
		if label == "" {
			break
		}
		categories = append(categories, label)
	}

	labels := make([]string, width)
	keys := make([]string, width)
	for j := 0; j < width; j++ {
		labels[j] = strings.TrimSpace(sub[start+j])
		keys[j] = NormalizeKey(labels[j])
	}

	return &Schema{
		BrandCol:    brandCol,
		ModelCol:    modelCol,
		BlockStart:  start,
		BlockWidth:  width,
		Categories:  categories,
		FieldLabels: labels,
		FieldKeys:   keys,
	}, nil
}

// keySepRE matches runs of characters that separate words in a header label.
// Letters, digits and the percent sign survive; everything else collapses to
// a single underscore.
var keySepRE = regexp.MustCompile(`[^\pL\pN%]+`)

// NormalizeKey derives the canonical field key from a raw sub-header label:
// lowercase, underscore-separated.
//
//	"Juni 2025"        -> "juni_2025"
//	"Jan. - Juni 2025" -> "jan_juni_2025"
//	"Anteil in %"      -> "anteil_in_%"
func NormalizeKey(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	key = keySepRE.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}
