package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"jjmcli/internal/config"
	"jjmcli/internal/exporter"
	"jjmcli/internal/files"
	"jjmcli/internal/health"
	"jjmcli/internal/infrastructure"
	"jjmcli/internal/validation"
)

func main() {
	inDir := flag.String("in", "", "directory of per-state HMIS workbooks (defaults to data/raw/health_<year>)")
	outFile := flag.String("out", config.HealthCasesFileName, "output case table (relative names land in data/processed)")
	startYear := flag.Int("start-year", config.DefaultStartYear, "opening calendar year of the financial year")
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
		infrastructure.MustInitializeLogger(cfg.Logging), "healthproc")
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	if *inDir == "" {
		*inDir = paths.GetRawPath(health.DefaultWorkbookDir(*startYear))
	}

	logger.InfoContext(ctx, "starting hmis health processor",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("input_dir", *inDir),
		slog.Int("start_year", *startYear),
		slog.String("output", *outFile))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(*inDir, config.HealthWorkbookPattern); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "input validation failed")
		os.Exit(1)
	}

	processor := health.NewProcessor(
		files.NewDiscovery(paths.BaseDir),
		exporter.NewCSVWriter(paths),
		logger)

	total, err := processor.ProcessDirectory(ctx, *inDir, *startYear, *outFile)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "health processing failed")
		os.Exit(1)
	}

	logger.InfoContext(ctx, "health processing complete",
		slog.Int("records", total),
		slog.String("output", *outFile))
}
