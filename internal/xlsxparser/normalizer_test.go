package xlsxparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kbadata/fz10/internal/types"
)

// buildWorkbook writes rows into a fresh workbook and returns the serialized
// blob. Row numbers are 1-based sheet rows; nil cells stay empty.
func buildWorkbook(t *testing.T, sheet string, rows map[int][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	for rowNum, cells := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

// titleRows returns the boilerplate above the header, mirroring the
// published layout where the table header starts on sheet row 8.
func titleRows() map[int][]interface{} {
	rows := make(map[int][]interface{})
	rows[1] = []interface{}{"FZ 10.1 Neuzulassungen von Personenkraftwagen"}
	for r := 2; r <= 7; r++ {
		rows[r] = []interface{}{""}
	}
	return rows
}

// fixtureBlob builds the reference sheet: one "Cars" category block spanning
// columns C-E, two real model rows, one per-brand total row and one grand
// total row.
func fixtureBlob(t *testing.T) []byte {
	rows := titleRows()
	rows[8] = []interface{}{nil, nil, "Cars", nil, nil}
	rows[9] = []interface{}{"Marke", "Modellreihe", "Juni 2025", "Jan. - Juni 2025", "Anteil in %"}
	rows[10] = []interface{}{"Ford", "Focus", 10, 60, "5%"}
	rows[11] = []interface{}{nil, "Fiesta", 5, 30, "3%"}
	rows[12] = []interface{}{"Ford", "ZUSAMMEN", 15, 90, "8%"}
	rows[13] = []interface{}{"INSGESAMT", nil, 20, 120, "10%"}
	return buildWorkbook(t, "FZ 10.1", rows)
}

// collect drains a cursor into a slice.
func collect(t *testing.T, cur *Cursor) []types.NormalizedRecord {
	t.Helper()

	var records []types.NormalizedRecord
	for cur.Next() {
		records = append(records, cur.Record())
	}
	require.NoError(t, cur.Err())
	return records
}

func TestParseEndToEnd(t *testing.T) {
	cur, err := Parse(fixtureBlob(t))
	require.NoError(t, err)
	defer cur.Close()

	records := collect(t, cur)

	// Two non-summary rows, one category: exactly two records. The
	// ZUSAMMEN and INSGESAMT rows must not appear in any form.
	require.Len(t, records, 2)

	focus, fiesta := records[0], records[1]

	assert.Equal(t, "Ford", focus.Brand)
	assert.Equal(t, "Focus", focus.ModelSeries)
	assert.Equal(t, "Cars", focus.Category)
	require.NotNil(t, focus.Year)
	assert.Equal(t, 2025, *focus.Year)
	require.NotNil(t, focus.Period)
	assert.Equal(t, "Juni", *focus.Period)
	require.NotNil(t, focus.PeriodRange)
	assert.Equal(t, "Jan.-Juni", *focus.PeriodRange)
	require.NotNil(t, focus.Count)
	assert.Equal(t, int64(10), *focus.Count)
	require.NotNil(t, focus.CountRange)
	assert.Equal(t, "60", *focus.CountRange)
	assert.Equal(t, map[string]string{"anteil_in_%": "5%"}, focus.Extra)

	// The Fiesta row has a blank brand cell; the brand forward-fills from
	// the Focus row above it.
	assert.Equal(t, "Ford", fiesta.Brand)
	assert.Equal(t, "Fiesta", fiesta.ModelSeries)
	require.NotNil(t, fiesta.Year)
	assert.Equal(t, 2025, *fiesta.Year)
	require.NotNil(t, fiesta.Count)
	assert.Equal(t, int64(5), *fiesta.Count)
	require.NotNil(t, fiesta.CountRange)
	assert.Equal(t, "30", *fiesta.CountRange)
}

func TestRecordCountIsRowsTimesCategories(t *testing.T) {
	rows := titleRows()
	rows[8] = []interface{}{nil, nil, "Pkw", nil, "Lkw", nil}
	rows[9] = []interface{}{
		"Marke", "Modellreihe",
		"Juni 2025", "Jan. - Juni 2025",
		"Juni 2025", "Jan. - Juni 2025",
	}
	rows[10] = []interface{}{"VW", "Golf", 1, 2, 3, 4}
	rows[11] = []interface{}{nil, "Polo", 5, 6, 7, 8}
	rows[12] = []interface{}{"Opel", "Astra", 9, 10, 11, 12}

	cur, err := Parse(buildWorkbook(t, "FZ 10.1", rows))
	require.NoError(t, err)
	defer cur.Close()

	records := collect(t, cur)

	// 3 non-summary rows x 2 categories.
	require.Len(t, records, 6)
	assert.Equal(t, []string{"Pkw", "Lkw"}, cur.Schema().Categories)

	// Block slicing: the Lkw record of the Golf row carries the second
	// block's cells.
	golfLkw := records[1]
	assert.Equal(t, "Lkw", golfLkw.Category)
	require.NotNil(t, golfLkw.Count)
	assert.Equal(t, int64(3), *golfLkw.Count)
	require.NotNil(t, golfLkw.CountRange)
	assert.Equal(t, "4", *golfLkw.CountRange)
}

func TestSummaryBrandCarriesDown(t *testing.T) {
	// The fold's brand state updates before the summary check, so rows
	// below a summary brand with blank key cells stay excluded until a new
	// brand appears.
	rows := titleRows()
	rows[8] = []interface{}{nil, nil, "Pkw"}
	rows[9] = []interface{}{"Marke", "Modellreihe", "Juni 2025"}
	rows[10] = []interface{}{"Ford", "Focus", 1}
	rows[11] = []interface{}{"INSGESAMT", nil, 99}
	rows[12] = []interface{}{nil, "Phantom", 98}
	rows[13] = []interface{}{"Opel", "Astra", 2}

	cur, err := Parse(buildWorkbook(t, "FZ 10.1", rows))
	require.NoError(t, err)
	defer cur.Close()

	records := collect(t, cur)
	require.Len(t, records, 2)
	assert.Equal(t, "Ford", records[0].Brand)
	assert.Equal(t, "Opel", records[1].Brand)

	for _, rec := range records {
		assert.NotContains(t, rec.Brand, "INSGESAMT")
		assert.NotEqual(t, "ZUSAMMEN", rec.ModelSeries)
	}
}

func TestBlankSeparatorRowsAreSkipped(t *testing.T) {
	rows := titleRows()
	rows[8] = []interface{}{nil, nil, "Pkw"}
	rows[9] = []interface{}{"Marke", "Modellreihe", "Juni 2025"}
	rows[10] = []interface{}{"Ford", "Focus", 1}
	rows[11] = []interface{}{nil, nil, nil}
	rows[12] = []interface{}{nil, "Fiesta", 2}

	cur, err := Parse(buildWorkbook(t, "FZ 10.1", rows))
	require.NoError(t, err)
	defer cur.Close()

	records := collect(t, cur)
	require.Len(t, records, 2)

	// The blank row must not reset the forward-filled brand.
	assert.Equal(t, "Ford", records[1].Brand)
	assert.Equal(t, "Fiesta", records[1].ModelSeries)
}

func TestParseIdempotence(t *testing.T) {
	blob := fixtureBlob(t)

	first, err := Parse(blob)
	require.NoError(t, err)
	defer first.Close()

	second, err := Parse(blob)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, collect(t, first), collect(t, second))
}

func TestRangeYearTakesPrecedence(t *testing.T) {
	// When the single-period and range labels disagree on the year, the
	// range year wins regardless of column order. This mirrors the source
	// data, where both labels always name the same year; see DESIGN.md.
	t.Run("single before range", func(t *testing.T) {
		rows := titleRows()
		rows[8] = []interface{}{nil, nil, "Pkw", nil}
		rows[9] = []interface{}{"Marke", "Modellreihe", "Dez. 2024", "Jan. - Dez. 2025"}
		rows[10] = []interface{}{"Ford", "Focus", 1, 2}

		cur, err := Parse(buildWorkbook(t, "FZ 10.1", rows))
		require.NoError(t, err)
		defer cur.Close()

		records := collect(t, cur)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].Year)
		assert.Equal(t, 2025, *records[0].Year)
	})

	t.Run("range before single", func(t *testing.T) {
		rows := titleRows()
		rows[8] = []interface{}{nil, nil, "Pkw", nil}
		rows[9] = []interface{}{"Marke", "Modellreihe", "Jan. - Dez. 2025", "Dez. 2024"}
		rows[10] = []interface{}{"Ford", "Focus", 2, 1}

		cur, err := Parse(buildWorkbook(t, "FZ 10.1", rows))
		require.NoError(t, err)
		defer cur.Close()

		records := collect(t, cur)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].Year)
		assert.Equal(t, 2025, *records[0].Year)
	})
}

func TestParseSchemaErrors(t *testing.T) {
	t.Run("missing sheet", func(t *testing.T) {
		rows := map[int][]interface{}{1: {"wrong sheet"}}
		blob := buildWorkbook(t, "Sheet1", rows)

		_, err := Parse(blob)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("missing key columns", func(t *testing.T) {
		rows := titleRows()
		rows[8] = []interface{}{nil, nil, "Pkw"}
		rows[9] = []interface{}{"Hersteller", "Baureihe", "Juni 2025"}
		rows[10] = []interface{}{"Ford", "Focus", 1}

		_, err := Parse(buildWorkbook(t, "FZ 10.1", rows))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("sheet ends before the header rows", func(t *testing.T) {
		rows := map[int][]interface{}{1: {"title only"}}
		blob := buildWorkbook(t, "FZ 10.1", rows)

		_, err := Parse(blob)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchema)
	})
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{"10", i64(10)},
		{"1.234", i64(1234)},
		{"1.234.567", i64(1234567)},
		{" 42 ", i64(42)},
		{"", nil},
		{"-", nil},
		{".", nil},
		{"5%", nil},
		{"n/a", nil},
	}

	for _, tt := range tests {
		got := parseCount(tt.raw)
		if tt.want == nil {
			assert.Nil(t, got, "raw %q", tt.raw)
		} else {
			require.NotNil(t, got, "raw %q", tt.raw)
			assert.Equal(t, *tt.want, *got, "raw %q", tt.raw)
		}
	}
}

func i64(n int64) *int64 {
	return &n
}
