package analyze

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	apperrors "jjmcli/internal/errors"
)

// DefaultTargetStates mixes the programme's star states with lagging ones
// so the coefficient comparison spans both ends of the rollout.
var DefaultTargetStates = []string{
	"West Bengal",
	"Andhra Pradesh",
	"Arunachal Pradesh",
	"Nagaland",
	"Delhi",
	"Uttarakhand",
}

// MinObservations is the smallest state panel worth regressing; below
// this the fixed-effects estimate is noise.
const MinObservations = 20

// StateResult is the fixed-effects estimate for one state: the effect of
// FHTC coverage on log diarrhoea inpatient cases.
type StateResult struct {
	State        string
	Coefficient  float64
	PValue       float64
	Observations int
	Districts    int
}

// RunStateRegressions fits, per target state, a panel regression of log
// cases on coverage with district fixed effects (time effects are left
// out so the programme's growth trend stays in the estimate). States with
// too few observations or no within-district coverage variation are
// skipped. Results come back in target-state order.
func RunStateRegressions(panel []PanelRow, targetStates []string, logger *slog.Logger) ([]StateResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(targetStates) == 0 {
		targetStates = DefaultTargetStates
	}

	byState := make(map[string][]PanelRow)
	for _, row := range panel {
		byState[row.State] = append(byState[row.State], row)
	}

	var results []StateResult
	for _, state := range targetStates {
		rows := byState[state]
		if len(rows) < MinObservations {
			logger.Warn("skipping state with too few observations",
				slog.String("state", state),
				slog.Int("observations", len(rows)),
				slog.Int("minimum", MinObservations))
			continue
		}

		result, ok := fitEntityFE(state, rows)
		if !ok {
			logger.Warn("skipping state with no within-district coverage variation",
				slog.String("state", state))
			continue
		}

		logger.Info("fitted state regression",
			slog.String("state", state),
			slog.Float64("coefficient", result.Coefficient),
			slog.Float64("p_value", result.PValue),
			slog.Int("observations", result.Observations))
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, apperrors.NewValidationError("no target state had enough panel data to regress")
	}
	return results, nil
}

// fitEntityFE estimates the coverage coefficient by the within
// transformation: both variables are demeaned per district, then the
// slope is ordinary least squares on the demeaned data. Degrees of
// freedom account for the absorbed district means.
func fitEntityFE(state string, rows []PanelRow) (StateResult, bool) {
	byDistrict := make(map[string][]int)
	for i, row := range rows {
		byDistrict[row.District] = append(byDistrict[row.District], i)
	}

	demeanedX := make([]float64, len(rows))
	demeanedY := make([]float64, len(rows))

	districts := make([]string, 0, len(byDistrict))
	for district := range byDistrict {
		districts = append(districts, district)
	}
	sort.Strings(districts)

	for _, district := range districts {
		indices := byDistrict[district]
		xs := make([]float64, len(indices))
		ys := make([]float64, len(indices))
		for k, i := range indices {
			xs[k] = rows[i].Coverage
			ys[k] = rows[i].LogCases
		}
		meanX := stat.Mean(xs, nil)
		meanY := stat.Mean(ys, nil)
		for k, i := range indices {
			demeanedX[i] = xs[k] - meanX
			demeanedY[i] = ys[k] - meanY
		}
	}

	var sxx, sxy float64
	for i := range demeanedX {
		sxx += demeanedX[i] * demeanedX[i]
		sxy += demeanedX[i] * demeanedY[i]
	}
	if sxx == 0 {
		return StateResult{}, false
	}
	beta := sxy / sxx

	df := float64(len(rows) - len(byDistrict) - 1)
	if df <= 0 {
		return StateResult{}, false
	}

	var sse float64
	for i := range demeanedX {
		resid := demeanedY[i] - beta*demeanedX[i]
		sse += resid * resid
	}

	pValue := 0.0
	if sse > 0 {
		se := math.Sqrt(sse / df / sxx)
		tStat := beta / se
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		pValue = 2 * tDist.CDF(-math.Abs(tStat))
	}

	return StateResult{
		State:        state,
		Coefficient:  beta,
		PValue:       pValue,
		Observations: len(rows),
		Districts:    len(byDistrict),
	}, true
}
