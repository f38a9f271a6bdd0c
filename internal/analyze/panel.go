package analyze

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"jjmcli/internal/cleaning"
	"jjmcli/internal/dataset"
	apperrors "jjmcli/internal/errors"
)

// PanelRow is one district-month observation of the merged panel:
// cleaned FHTC coverage joined with diarrhoea inpatient cases.
type PanelRow struct {
	State    string
	District string
	Period   string
	Coverage float64
	Cases    float64
	LogCases float64
}

// BuildPanel inner-joins the cleaned coverage table with the long-format
// health case table on (district, calendar month). District names are
// matched case-insensitively after trimming; coverage rows without a
// health observation (and vice versa) drop out. The log of cases is
// shifted by one so zero-case months stay in the panel.
func BuildPanel(coverage, health *dataset.Table, logger *slog.Logger) ([]PanelRow, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cols, err := cleaning.ResolveColumns(coverage, cleaning.Overrides{}, logger)
	if err != nil {
		return nil, err
	}
	if cols.District == "" {
		return nil, apperrors.NewConfigError("coverage table has no district column to join on", nil)
	}

	for _, required := range []string{"state", "district", "period", "cases"} {
		if !health.HasColumn(required) {
			return nil, apperrors.NewSourceError(
				fmt.Sprintf("health table is missing the %q column", required), nil)
		}
	}

	type caseObs struct {
		state string
		cases float64
	}
	healthByKey := make(map[string]caseObs, health.Len())
	for _, row := range health.Rows {
		cases, ok := row.Float("cases")
		if !ok {
			continue
		}
		key := joinKey(row.Get("district").String(), row.Get("period").String())
		healthByKey[key] = caseObs{state: row.Get("state").String(), cases: cases}
	}

	var panel []PanelRow
	for _, row := range coverage.Rows {
		cov, ok := row.Float(cols.Coverage)
		if !ok {
			continue
		}
		date, ok := cleaning.ParseReportingDate(row.Get(cols.Date))
		if !ok {
			continue
		}
		period := fmt.Sprintf("%04d-%02d", date.Year(), int(date.Month()))

		district := row.Get(cols.District).String()
		obs, ok := healthByKey[joinKey(district, period)]
		if !ok {
			continue
		}

		panel = append(panel, PanelRow{
			State:    obs.state,
			District: strings.TrimSpace(district),
			Period:   period,
			Coverage: cov,
			Cases:    obs.cases,
			LogCases: math.Log(obs.cases + 1),
		})
	}

	logger.Info("built district-month panel",
		slog.Int("coverage_rows", coverage.Len()),
		slog.Int("health_rows", health.Len()),
		slog.Int("panel_rows", len(panel)))

	if len(panel) == 0 {
		return nil, apperrors.NewSourceError("coverage and health tables share no district-months", nil)
	}
	return panel, nil
}

func joinKey(district, period string) string {
	return strings.ToLower(strings.TrimSpace(district)) + "|" + strings.TrimSpace(period)
}
