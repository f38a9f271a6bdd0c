package cleaning

import (
	"context"
	"log/slog"

	"jjmcli/internal/dataset"
)

// Cleaner runs the coverage cleaning pipeline: load, resolve columns,
// compute temporal deltas, flag bias, filter reporting errors, persist.
// A Cleaner holds no state between runs; every Clean call is a single
// complete pass with no partial output on failure.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner that reports through logger.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Request describes a single cleaning run. The column fields are optional
// overrides; empty fields are auto-detected from the input's header.
type Request struct {
	InputPath  string
	OutputPath string
	Overrides  Overrides
}

// Clean executes the pipeline for req and returns the cleaned table
// alongside its summary. Fatal conditions (unreadable input, unresolved
// mandatory role, misnamed override, unwritable output) abort the run
// before the output location is touched. Dirty cell values are never
// fatal: non-numeric coverage and unparseable dates are absorbed into
// absent values and surface only through the aggregate counts.
func (c *Cleaner) Clean(ctx context.Context, req Request) (*dataset.Table, *Summary, error) {
	logger := c.logger
	logger.InfoContext(ctx, "starting coverage cleaning run",
		slog.String("input", req.InputPath),
		slog.String("output", req.OutputPath))

	raw, err := dataset.ReadCSV(req.InputPath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load raw table",
			slog.String("input", req.InputPath),
			slog.String("error", err.Error()))
		return nil, nil, err
	}
	logger.InfoContext(ctx, "loaded raw table",
		slog.Int("rows", raw.Len()),
		slog.Int("columns", len(raw.Columns)))

	cols, err := ResolveColumns(raw, req.Overrides, logger)
	if err != nil {
		return nil, nil, err
	}

	// Non-numeric coverage values become absent rather than failing the
	// run; they show up in neither flag.
	raw.CoerceNumeric(cols.Coverage)

	enriched := ComputeDeltas(raw, cols)
	logger.InfoContext(ctx, "computed period-over-period coverage changes",
		slog.Bool("grouped_by_district", cols.District != ""))

	counts := DetectBias(enriched, cols.Coverage, logger)

	cleaned := enriched.Filter(func(row dataset.Row) bool {
		return !IsFlagged(row, ColReportingError)
	})
	logger.InfoContext(ctx, "filtered reporting errors",
		slog.Int("removed", enriched.Len()-cleaned.Len()),
		slog.Int("remaining", cleaned.Len()))

	summary := buildSummary(enriched, cols, counts, cleaned.Len())

	if err := cleaned.WriteCSV(req.OutputPath); err != nil {
		logger.ErrorContext(ctx, "failed to persist cleaned table",
			slog.String("output", req.OutputPath),
			slog.String("error", err.Error()))
		return nil, nil, err
	}
	logger.InfoContext(ctx, "saved cleaned table",
		slog.String("output", req.OutputPath),
		slog.Int("rows", cleaned.Len()))

	return cleaned, summary, nil
}

// buildSummary assembles the run report from the fully enriched
// (pre-filter) table, so flag totals include the rows that were removed.
func buildSummary(enriched *dataset.Table, cols Columns, counts BiasCounts, cleanedRows int) *Summary {
	summary := &Summary{
		OriginalRows:          enriched.Len(),
		FilteredRows:          enriched.Len() - cleanedRows,
		CleanedRows:           cleanedRows,
		SuspiciousSpikesTotal: counts.SuspiciousSpikes,
		ReportingErrorsTotal:  counts.ReportingErrors,
		DistrictsFlagged:      []string{},
	}

	if cols.District != "" {
		seen := make(map[string]bool)
		for _, row := range enriched.Rows {
			if !IsFlagged(row, ColSuspiciousSpike) {
				continue
			}
			district := row.Get(cols.District).String()
			if !seen[district] {
				seen[district] = true
				summary.DistrictsFlagged = append(summary.DistrictsFlagged, district)
			}
		}
		summary.DistrictsWithSuspiciousSpikes = len(summary.DistrictsFlagged)
	} else {
		// Without a district column the best available figure is the raw
		// count of flagged rows.
		summary.DistrictsWithSuspiciousSpikes = counts.SuspiciousSpikes
	}

	return summary
}
