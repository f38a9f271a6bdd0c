package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"jjmcli/internal/dataset"
	"jjmcli/internal/exporter"
)

// Analyzer merges the cleaned coverage data with the health case table
// and estimates per-state coverage effects.
type Analyzer struct {
	csvWriter *exporter.CSVWriter
	logger    *slog.Logger
}

// NewAnalyzer creates an analyzer writing outputs through csvWriter.
func NewAnalyzer(csvWriter *exporter.CSVWriter, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{csvWriter: csvWriter, logger: logger}
}

// Request describes one analysis run. PanelFile and ResultsFile are
// resolved by the CSV writer; TargetStates defaults to the standard
// comparison set when empty.
type Request struct {
	CoveragePath string
	HealthPath   string
	PanelFile    string
	ResultsFile  string
	TargetStates []string
}

// Run builds the panel, persists it, and fits the state regressions.
func (a *Analyzer) Run(ctx context.Context, req Request) ([]StateResult, error) {
	a.logger.InfoContext(ctx, "starting coverage-health analysis",
		slog.String("coverage", req.CoveragePath),
		slog.String("health", req.HealthPath))

	coverage, err := dataset.ReadCSV(req.CoveragePath)
	if err != nil {
		return nil, err
	}
	health, err := dataset.ReadCSV(req.HealthPath)
	if err != nil {
		return nil, err
	}

	panel, err := BuildPanel(coverage, health, a.logger)
	if err != nil {
		return nil, err
	}

	if err := a.writePanel(req.PanelFile, panel); err != nil {
		return nil, err
	}

	results, err := RunStateRegressions(panel, req.TargetStates, a.logger)
	if err != nil {
		return nil, err
	}

	if err := a.writeResults(req.ResultsFile, results); err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "saved regression results",
		slog.String("output", req.ResultsFile),
		slog.Int("states", len(results)))

	return results, nil
}

func (a *Analyzer) writePanel(file string, panel []PanelRow) error {
	records := make([][]string, len(panel))
	for i, row := range panel {
		records[i] = []string{
			row.State,
			row.District,
			row.Period,
			formatFloat(row.Coverage),
			formatFloat(row.Cases),
			formatFloat(row.LogCases),
		}
	}
	return a.csvWriter.WriteSimpleCSV(file,
		[]string{"state", "district", "period", "fhtc_coverage", "cases", "log_cases"},
		records)
}

func (a *Analyzer) writeResults(file string, results []StateResult) error {
	records := make([][]string, len(results))
	for i, r := range results {
		records[i] = []string{
			r.State,
			formatFloat(r.Coefficient),
			formatFloat(r.PValue),
			strconv.Itoa(r.Observations),
			strconv.Itoa(r.Districts),
		}
	}
	return a.csvWriter.WriteSimpleCSV(file,
		[]string{"state", "coefficient", "p_value", "observations", "districts"},
		records)
}

// RenderResults formats the regression results as an operator-facing
// comparison block.
func RenderResults(results []StateResult) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "STATE-SPECIFIC REGRESSIONS (Trend Included)\n")
	fmt.Fprintf(&b, "%s\n", rule)
	for _, r := range results {
		fmt.Fprintf(&b, "State: %-20s | Coef: %8.4f | P-Val: %.4f | N: %d\n",
			r.State, r.Coefficient, r.PValue, r.Observations)
	}
	fmt.Fprintf(&b, "%s\n", rule)
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
