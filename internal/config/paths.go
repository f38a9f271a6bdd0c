package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the pipeline.
type Paths struct {
	BaseDir      string
	RawDir       string
	ProcessedDir string
	ExternalDir  string
	InterimDir   string
	LogsDir      string
	ReportsDir   string

	// Well-known pipeline files
	RawCoverageCSV     string
	CleanedCoverageCSV string
	HealthCasesCSV     string
	PanelCSV           string
	RegressionCSV      string
}

// GetPaths returns the application paths resolved against the base directory
// from cfg. An empty base directory means the current working directory, so
// the pipeline can be run from a project checkout the way the data layout
// expects (data/raw, data/processed, logs, output/reports).
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		base = wd
	}

	abs := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	rawDir := abs(cfg.RawDir, DefaultRawDir)
	processedDir := abs(cfg.ProcessedDir, DefaultProcessedDir)
	externalDir := abs(cfg.ExternalDir, DefaultExternalDir)
	interimDir := abs(cfg.InterimDir, DefaultInterimDir)
	logsDir := abs(cfg.LogsDir, DefaultLogsDir)
	reportsDir := abs(cfg.ReportsDir, DefaultReportsDir)

	paths := &Paths{
		BaseDir:      base,
		RawDir:       rawDir,
		ProcessedDir: processedDir,
		ExternalDir:  externalDir,
		InterimDir:   interimDir,
		LogsDir:      logsDir,
		ReportsDir:   reportsDir,

		RawCoverageCSV:     filepath.Join(rawDir, RawCoverageFileName),
		CleanedCoverageCSV: filepath.Join(processedDir, CleanedCoverageFileName),
		HealthCasesCSV:     filepath.Join(processedDir, HealthCasesFileName),
		PanelCSV:           filepath.Join(processedDir, PanelFileName),
		RegressionCSV:      filepath.Join(reportsDir, RegressionFileName),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.RawDir,
		p.ProcessedDir,
		p.ExternalDir,
		p.InterimDir,
		p.LogsDir,
		p.ReportsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRawPath returns the path for a raw data file
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetProcessedPath returns the path for a processed data file
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// GetExternalPath returns the path for an external data file
func (p *Paths) GetExternalPath(filename string) string {
	return filepath.Join(p.ExternalDir, filename)
}

// GetInterimPath returns the path for an intermediate data file
func (p *Paths) GetInterimPath(filename string) string {
	return filepath.Join(p.InterimDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetRawSnapshotCSV returns the raw coverage file path for a financial year
// (e.g. jjm_raw_2019.csv for FY 2019-2020).
func (p *Paths) GetRawSnapshotCSV(startYear int) string {
	return filepath.Join(p.RawDir, fmt.Sprintf("jjm_raw_%d.csv", startYear))
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("raw", p.RawDir),
			slog.String("processed", p.ProcessedDir),
			slog.String("external", p.ExternalDir),
			slog.String("interim", p.InterimDir),
			slog.String("logs", p.LogsDir),
			slog.String("reports", p.ReportsDir),
		),
		slog.Group("pipeline_files",
			slog.String("raw_coverage_csv", p.RawCoverageCSV),
			slog.String("cleaned_coverage_csv", p.CleanedCoverageCSV),
			slog.String("health_cases_csv", p.HealthCasesCSV),
			slog.String("panel_csv", p.PanelCSV),
			slog.String("regression_csv", p.RegressionCSV),
		))
}
