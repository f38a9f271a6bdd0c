package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"jjmcli/internal/cleaning"
	"jjmcli/internal/config"
	"jjmcli/internal/infrastructure"
	"jjmcli/internal/validation"
)

func main() {
	inPath := flag.String("in", "", "input raw coverage CSV (defaults to data/raw/jjm_raw.csv)")
	outPath := flag.String("out", "", "output cleaned CSV (defaults to data/processed/jjm_cleaned.csv)")
	coverageCol := flag.String("coverage-col", "", "explicit coverage column name (skips auto-detection)")
	dateCol := flag.String("date-col", "", "explicit reporting-period column name")
	districtCol := flag.String("district-col", "", "explicit district column name")
	flag.Parse()

	// .env is optional; real environment variables win either way
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
		infrastructure.MustInitializeLogger(cfg.Logging), "cleaner")
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()

	if *inPath == "" {
		*inPath = paths.RawCoverageCSV
	}
	if *outPath == "" {
		*outPath = paths.CleanedCoverageCSV
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	logger.InfoContext(ctx, "starting jjm coverage cleaner",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("input", *inPath),
		slog.String("output", *outPath))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(*inPath); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "input validation failed")
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(filepath.Dir(*outPath)); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "output validation failed")
		os.Exit(1)
	}

	cleaner := cleaning.NewCleaner(logger)
	_, summary, err := cleaner.Clean(ctx, cleaning.Request{
		InputPath:  *inPath,
		OutputPath: *outPath,
		Overrides: cleaning.Overrides{
			Coverage: *coverageCol,
			Date:     *dateCol,
			District: *districtCol,
		},
	})
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "cleaning run failed")
		os.Exit(1)
	}

	fmt.Print(summary.String())
	logger.InfoContext(ctx, "cleaning run complete",
		slog.Int("cleaned_rows", summary.CleanedRows),
		slog.Int("suspicious_spikes", summary.SuspiciousSpikesTotal),
		slog.Int("reporting_errors", summary.ReportingErrorsTotal))
}
