package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jjmcli/internal/dataset"
)

func coverageRow(district, month, coverage string) dataset.Row {
	row := dataset.Row{
		"month":    dataset.NewValue(month),
		"coverage": dataset.NewValue(coverage),
	}
	if district != "" {
		row["district"] = dataset.NewValue(district)
	}
	return row
}

func deltaColumns(withDistrict bool) Columns {
	cols := Columns{Coverage: "coverage", Date: "month"}
	if withDistrict {
		cols.District = "district"
	}
	return cols
}

func TestComputeDeltas_SingleDistrictScenario(t *testing.T) {
	table := dataset.NewTable("district", "month", "coverage")
	// Deliberately out of order; the stage must sort chronologically.
	table.Append(coverageRow("A", "2019-06-01", "65"))
	table.Append(coverageRow("A", "2019-04-01", "50"))
	table.Append(coverageRow("A", "2019-05-01", "70"))

	out := ComputeDeltas(table, deltaColumns(true))
	require.Equal(t, 3, out.Len())

	// Sorted by date
	assert.Equal(t, "50", out.Rows[0].Get("coverage").String())
	assert.Equal(t, "70", out.Rows[1].Get("coverage").String())
	assert.Equal(t, "65", out.Rows[2].Get("coverage").String())

	// First row of the group has no previous period
	assert.False(t, out.Rows[0].Get(ColPreviousPeriod).Present())
	assert.Equal(t, "50", out.Rows[1].Get(ColPreviousPeriod).String())
	assert.Equal(t, "70", out.Rows[2].Get(ColPreviousPeriod).String())

	pct0, _ := out.Rows[0].Float(ColChangePercent)
	pct1, _ := out.Rows[1].Float(ColChangePercent)
	pct2, _ := out.Rows[2].Float(ColChangePercent)
	assert.InDelta(t, 0.0, pct0, 1e-9)
	assert.InDelta(t, 40.0, pct1, 1e-9)
	assert.InDelta(t, -7.14, pct2, 0.01)

	abs1, ok := out.Rows[1].Float(ColChangeAbsolute)
	require.True(t, ok)
	assert.InDelta(t, 20.0, abs1, 1e-9)
	assert.False(t, out.Rows[0].Get(ColChangeAbsolute).Present())
}

func TestComputeDeltas_GroupResetsBetweenDistricts(t *testing.T) {
	table := dataset.NewTable("district", "month", "coverage")
	table.Append(coverageRow("B", "2019-04-01", "30"))
	table.Append(coverageRow("A", "2019-04-01", "50"))
	table.Append(coverageRow("A", "2019-05-01", "55"))
	table.Append(coverageRow("B", "2019-05-01", "45"))

	out := ComputeDeltas(table, deltaColumns(true))

	// Sorted by (district, date): A, A, B, B
	assert.Equal(t, "A", out.Rows[0].Get("district").String())
	assert.Equal(t, "B", out.Rows[2].Get("district").String())

	// B's first row must not inherit A's last coverage
	assert.False(t, out.Rows[2].Get(ColPreviousPeriod).Present())
	assert.Equal(t, "30", out.Rows[3].Get(ColPreviousPeriod).String())
}

func TestComputeDeltas_UngroupedFallback(t *testing.T) {
	table := dataset.NewTable("month", "coverage")
	table.Append(coverageRow("", "2019-05-01", "70"))
	table.Append(coverageRow("", "2019-04-01", "50"))

	out := ComputeDeltas(table, deltaColumns(false))

	// Whole-table chronological ordering
	assert.Equal(t, "50", out.Rows[0].Get("coverage").String())
	assert.Equal(t, "50", out.Rows[1].Get(ColPreviousPeriod).String())
}

func TestComputeDeltas_ZeroPreviousYieldsZeroPercent(t *testing.T) {
	table := dataset.NewTable("month", "coverage")
	table.Append(coverageRow("", "2019-04-01", "0"))
	table.Append(coverageRow("", "2019-05-01", "25"))

	out := ComputeDeltas(table, deltaColumns(false))

	// Division by a zero previous value resolves to 0% rather than Inf.
	pct, ok := out.Rows[1].Float(ColChangePercent)
	require.True(t, ok)
	assert.InDelta(t, 0.0, pct, 1e-9)

	// The absolute change is still defined.
	abs, ok := out.Rows[1].Float(ColChangeAbsolute)
	require.True(t, ok)
	assert.InDelta(t, 25.0, abs, 1e-9)
}

func TestComputeDeltas_UnparseableDatesSortLast(t *testing.T) {
	table := dataset.NewTable("month", "coverage")
	table.Append(coverageRow("", "not a date", "10"))
	table.Append(coverageRow("", "2019-04-01", "50"))
	table.Append(coverageRow("", "2019-05-01", "60"))

	out := ComputeDeltas(table, deltaColumns(false))

	assert.Equal(t, "50", out.Rows[0].Get("coverage").String())
	assert.Equal(t, "60", out.Rows[1].Get("coverage").String())
	assert.Equal(t, "10", out.Rows[2].Get("coverage").String())
	// The undated row still participates in the shift chain.
	assert.Equal(t, "60", out.Rows[2].Get(ColPreviousPeriod).String())
}

func TestComputeDeltas_StableOnTies(t *testing.T) {
	table := dataset.NewTable("month", "coverage", "tag")
	first := coverageRow("", "2019-04-01", "50")
	first["tag"] = dataset.NewValue("first")
	second := coverageRow("", "2019-04-01", "55")
	second["tag"] = dataset.NewValue("second")
	table.Append(first)
	table.Append(second)

	out := ComputeDeltas(table, deltaColumns(false))

	assert.Equal(t, "first", out.Rows[0].Get("tag").String())
	assert.Equal(t, "second", out.Rows[1].Get("tag").String())
}

func TestComputeDeltas_MissingCoverageAbsorbed(t *testing.T) {
	table := dataset.NewTable("month", "coverage")
	table.Append(coverageRow("", "2019-04-01", "50"))
	row := dataset.Row{"month": dataset.NewValue("2019-05-01"), "coverage": dataset.Absent()}
	table.Append(row)
	table.Append(coverageRow("", "2019-06-01", "60"))

	out := ComputeDeltas(table, deltaColumns(false))

	// Row with absent coverage: percent defaults to 0, absolute unknown.
	pct, ok := out.Rows[1].Float(ColChangePercent)
	require.True(t, ok)
	assert.InDelta(t, 0.0, pct, 1e-9)
	assert.False(t, out.Rows[1].Get(ColChangeAbsolute).Present())

	// The following row's previous period is the absent cell, so its
	// percent also defaults to 0.
	assert.False(t, out.Rows[2].Get(ColPreviousPeriod).Present())
	pct2, _ := out.Rows[2].Float(ColChangePercent)
	assert.InDelta(t, 0.0, pct2, 1e-9)
}

func TestComputeDeltas_DateLayouts(t *testing.T) {
	layouts := []string{"2019-04-01", "2019-04", "04/2019", "Apr-2019", "April 2019"}

	for _, s := range layouts {
		t.Run(s, func(t *testing.T) {
			_, ok := parseDate(dataset.NewValue(s))
			assert.True(t, ok)
		})
	}

	_, ok := parseDate(dataset.NewValue("quarter three"))
	assert.False(t, ok)
	_, ok = parseDate(dataset.Absent())
	assert.False(t, ok)
}

func TestComputeDeltas_InputUnchanged(t *testing.T) {
	table := dataset.NewTable("month", "coverage")
	table.Append(coverageRow("", "2019-05-01", "70"))
	table.Append(coverageRow("", "2019-04-01", "50"))

	_ = ComputeDeltas(table, deltaColumns(false))

	assert.Equal(t, []string{"month", "coverage"}, table.Columns)
	assert.Equal(t, "70", table.Rows[0].Get("coverage").String())
}
