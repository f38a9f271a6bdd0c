package cleaning

import (
	"fmt"
	"log/slog"
	"strings"

	"jjmcli/internal/dataset"
	"jjmcli/internal/errors"
)

// Role identifies the semantic purpose of a column in a raw coverage table.
type Role string

const (
	RoleCoverage Role = "coverage"
	RoleDate     Role = "date"
	RoleDistrict Role = "district"
)

// roleKeywords lists the lowercase substrings tried for each role, in
// priority order. Matching iterates keywords before columns, so an early
// generic keyword wins over a later specific one even when a more specific
// column exists further right in the table. That shadowing is accepted:
// source schemas vary too much for exact matching to be practical.
var roleKeywords = map[Role][]string{
	RoleCoverage: {
		"coverage", "fhtc", "fhtc_coverage", "coverage_percent",
		"coverage_pct", "coverage_percentage", "percent_coverage",
		"household_coverage", "tap_coverage", "connection_coverage",
	},
	RoleDate: {
		"date", "period", "month", "year", "time", "timestamp",
		"reporting_date", "reporting_period", "month_year",
	},
	RoleDistrict: {
		"district", "district_code", "district_name", "dist_code", "dist_name",
	},
}

// ResolveRole returns the first column whose lower-cased name contains one
// of the role's keywords as a substring, scanning keywords in priority
// order and columns in table order. It is a pure function of the column
// list; row content never influences resolution.
func ResolveRole(columns []string, role Role) (string, bool) {
	keywords, ok := roleKeywords[role]
	if !ok {
		return "", false
	}

	lowered := make([]string, len(columns))
	for i, col := range columns {
		lowered[i] = strings.ToLower(col)
	}

	for _, keyword := range keywords {
		for i, col := range lowered {
			if strings.Contains(col, keyword) {
				return columns[i], true
			}
		}
	}

	return "", false
}

// Overrides carries explicitly supplied column names. Empty fields are
// auto-detected.
type Overrides struct {
	Coverage string
	Date     string
	District string
}

// Columns is the resolved role→column mapping for a table. District is
// empty when no district column exists; delta computation then degrades
// to whole-table ordering.
type Columns struct {
	Coverage string
	Date     string
	District string
}

// ResolveColumns resolves the three roles for a table, honoring overrides.
// An override that names a column missing from the table, or an unresolved
// coverage/date role, is a configuration error naming the offending
// column or role. A missing district column is not an error.
func ResolveColumns(t *dataset.Table, overrides Overrides, logger *slog.Logger) (Columns, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var cols Columns

	resolve := func(role Role, override string, required bool) (string, error) {
		if override != "" {
			if !t.HasColumn(override) {
				return "", errors.NewConfigError(
					fmt.Sprintf("%s column %q not found in input", role, override), nil).
					WithContext("role", string(role)).
					WithContext("column", override)
			}
			logger.Info("Using explicitly supplied column",
				slog.String("role", string(role)),
				slog.String("column", override))
			return override, nil
		}

		name, ok := ResolveRole(t.Columns, role)
		if !ok {
			if required {
				return "", errors.NewConfigError(
					fmt.Sprintf("could not identify %s column; specify it explicitly", role), nil).
					WithContext("role", string(role))
			}
			logger.Warn("Could not automatically identify optional column",
				slog.String("role", string(role)))
			return "", nil
		}

		logger.Info("Identified column",
			slog.String("role", string(role)),
			slog.String("column", name))
		return name, nil
	}

	var err error
	if cols.Coverage, err = resolve(RoleCoverage, overrides.Coverage, true); err != nil {
		return Columns{}, err
	}
	if cols.Date, err = resolve(RoleDate, overrides.Date, true); err != nil {
		return Columns{}, err
	}
	if cols.District, err = resolve(RoleDistrict, overrides.District, false); err != nil {
		return Columns{}, err
	}

	return cols, nil
}
