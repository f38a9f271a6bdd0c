package cleaning

import (
	"log/slog"

	"jjmcli/internal/dataset"
)

// Flag column names added by bias detection.
const (
	ColSuspiciousSpike = "suspicious_spike"
	ColReportingError  = "reporting_error"
)

// Detection thresholds. A single-period coverage jump above the spike
// threshold outpaces any realistic construction throughput, and a
// percentage outside [0, 100] cannot describe household coverage at all.
const (
	SpikeThresholdPercent = 15.0
	CoverageMin           = 0.0
	CoverageMax           = 100.0
)

// BiasCounts aggregates the flags raised over a table.
type BiasCounts struct {
	SuspiciousSpikes int
	ReportingErrors  int
}

// DetectBias appends the suspicious_spike and reporting_error flag columns
// to the table in place and returns the aggregate counts. Rows are flagged,
// never dropped; filtering is the orchestrator's decision. A row whose
// coverage failed numeric coercion raises neither flag.
func DetectBias(t *dataset.Table, coverageCol string, logger *slog.Logger) BiasCounts {
	if logger == nil {
		logger = slog.Default()
	}

	t.AddColumn(ColSuspiciousSpike)
	t.AddColumn(ColReportingError)

	var counts BiasCounts
	for _, row := range t.Rows {
		spike := false
		if pct, ok := row.Float(ColChangePercent); ok && pct > SpikeThresholdPercent {
			spike = true
			counts.SuspiciousSpikes++
		}

		reportingError := false
		if cov, ok := row.Float(coverageCol); ok && (cov < CoverageMin || cov > CoverageMax) {
			reportingError = true
			counts.ReportingErrors++
		}

		row[ColSuspiciousSpike] = dataset.NewValue(formatBool(spike))
		row[ColReportingError] = dataset.NewValue(formatBool(reportingError))
	}

	logger.Info("Bias detection completed",
		slog.Int("suspicious_spikes", counts.SuspiciousSpikes),
		slog.Int("reporting_errors", counts.ReportingErrors))

	return counts
}

// IsFlagged reports whether a boolean flag column is set on the row.
func IsFlagged(row dataset.Row, col string) bool {
	return row.Get(col).String() == "true"
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
