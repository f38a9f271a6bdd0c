package cleaning

import (
	"sort"
	"strconv"
	"time"

	"jjmcli/internal/dataset"
)

// Derived column names added by delta computation.
const (
	ColPreviousPeriod = "coverage_previous_period"
	ColChangeAbsolute = "coverage_change_absolute"
	ColChangePercent  = "coverage_change_percent"
)

// dateLayouts are the reporting-period formats accepted by the delta
// stage. Government exports mix full dates, month stamps, and spelled-out
// months depending on the source year.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01",
	"01/2006",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"2006-01-02T15:04:05Z07:00",
}

// parseDate coerces a reporting-period cell to a time. Values that fail
// every layout report ok=false; such rows are kept and ordered after the
// dated rows of their group rather than dropped.
func parseDate(v dataset.Value) (time.Time, bool) {
	if !v.Present() {
		return time.Time{}, false
	}
	s := v.String()
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseReportingDate parses a reporting-period cell using the same layout
// set as the delta stage, so downstream joins bucket periods identically.
func ParseReportingDate(v dataset.Value) (time.Time, bool) {
	return parseDate(v)
}

// delta carries the per-row derivation state before it is materialized
// into table columns. Previous is absent for the first row of a group,
// and PercentKnown is false when the percent change had no defined value
// (no previous period, or a previous value of exactly zero).
type delta struct {
	Previous     dataset.Value
	AbsKnown     bool
	Abs          float64
	PercentKnown bool
	Percent      float64
}

// ComputeDeltas sorts the table chronologically, grouped by district when
// one is resolved, and derives the previous-period coverage plus absolute
// and percent change for every row. The returned table is a sorted copy
// with the three derived columns appended; the input table is unchanged.
//
// Undefined percent changes materialize as 0, matching the reporting
// convention that the first observation of a series shows no movement.
func ComputeDeltas(t *dataset.Table, cols Columns) *dataset.Table {
	out := t.Clone()

	type rowKey struct {
		index    int
		district string
		date     time.Time
		dated    bool
	}

	keys := make([]rowKey, len(out.Rows))
	for i, row := range out.Rows {
		key := rowKey{index: i}
		if cols.District != "" {
			key.district = row.Get(cols.District).String()
		}
		key.date, key.dated = parseDate(row.Get(cols.Date))
		keys[i] = key
	}

	// Stable sort: district, then date, undated rows last within their
	// group, original relative order preserved on ties.
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.district != b.district {
			return a.district < b.district
		}
		if a.dated != b.dated {
			return a.dated
		}
		if !a.dated {
			return false
		}
		return a.date.Before(b.date)
	})

	sorted := make([]dataset.Row, len(out.Rows))
	for i, key := range keys {
		sorted[i] = out.Rows[key.index]
	}
	out.Rows = sorted

	deltas := make([]delta, len(out.Rows))
	var (
		groupDistrict string
		inGroup       bool
		prev          dataset.Value
	)
	for i, key := range keys {
		row := out.Rows[i]

		if !inGroup || key.district != groupDistrict {
			groupDistrict = key.district
			inGroup = true
			prev = dataset.Absent()
		}

		d := delta{Previous: prev}

		cov, covOK := row.Float(cols.Coverage)
		prevF, prevOK := prev.Float()
		if covOK && prevOK {
			d.AbsKnown = true
			d.Abs = cov - prevF
			if prevF != 0 {
				d.PercentKnown = true
				d.Percent = (cov - prevF) / prevF * 100
			}
		}

		deltas[i] = d
		prev = row.Get(cols.Coverage)
	}

	out.AddColumn(ColPreviousPeriod)
	out.AddColumn(ColChangeAbsolute)
	out.AddColumn(ColChangePercent)

	for i, row := range out.Rows {
		d := deltas[i]

		row[ColPreviousPeriod] = d.Previous

		if d.AbsKnown {
			row[ColChangeAbsolute] = dataset.NewValue(formatFloat(d.Abs))
		} else {
			row[ColChangeAbsolute] = dataset.Absent()
		}

		// Undefined percent resolves to the display default here, at the
		// materialization boundary.
		percent := 0.0
		if d.PercentKnown {
			percent = d.Percent
		}
		row[ColChangePercent] = dataset.NewValue(formatFloat(percent))
	}

	return out
}

// formatFloat renders a derived numeric cell with minimal digits.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
