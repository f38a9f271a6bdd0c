package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"jjmcli/internal/analyze"
	"jjmcli/internal/config"
	"jjmcli/internal/exporter"
	"jjmcli/internal/infrastructure"
	"jjmcli/internal/validation"
)

func main() {
	coveragePath := flag.String("coverage", "", "cleaned coverage CSV (defaults to data/processed/jjm_cleaned.csv)")
	healthPath := flag.String("health", "", "health case CSV (defaults to data/processed/health_cases.csv)")
	panelFile := flag.String("panel-out", "final_panel.csv", "panel output (relative names land in data/processed)")
	resultsFile := flag.String("results-out", "reports/state_regressions.csv", "regression results output")
	states := flag.String("states", "", "comma-separated target states (defaults to the standard comparison set)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.GetLogPath(filepath.Base(cfg.Logging.FilePath))
	}

	logger := infrastructure.WithComponent(
		infrastructure.MustInitializeLogger(cfg.Logging), "analyzer")
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	if *coveragePath == "" {
		*coveragePath = paths.CleanedCoverageCSV
	}
	if *healthPath == "" {
		*healthPath = paths.HealthCasesCSV
	}

	var targetStates []string
	if *states != "" {
		for _, s := range strings.Split(*states, ",") {
			if s = strings.TrimSpace(s); s != "" {
				targetStates = append(targetStates, s)
			}
		}
	}

	logger.InfoContext(ctx, "starting coverage-health analyzer",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("coverage", *coveragePath),
		slog.String("health", *healthPath))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(*coveragePath); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "coverage input validation failed")
		os.Exit(1)
	}
	if err := validator.ValidateCSVFile(*healthPath); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "health input validation failed")
		os.Exit(1)
	}

	analyzer := analyze.NewAnalyzer(exporter.NewCSVWriter(paths), logger)
	results, err := analyzer.Run(ctx, analyze.Request{
		CoveragePath: *coveragePath,
		HealthPath:   *healthPath,
		PanelFile:    *panelFile,
		ResultsFile:  *resultsFile,
		TargetStates: targetStates,
	})
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "analysis run failed")
		os.Exit(1)
	}

	fmt.Print(analyze.RenderResults(results))
	logger.InfoContext(ctx, "analysis run complete",
		slog.Int("states", len(results)))
}
