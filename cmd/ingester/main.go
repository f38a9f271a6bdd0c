package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"jjmcli/internal/config"
	"jjmcli/internal/dataset"
	"jjmcli/internal/infrastructure"
	"jjmcli/internal/ingest"
	"jjmcli/internal/validation"
)

func main() {
	districtsPath := flag.String("districts", "", "CSV listing districts to fetch (defaults to data/external/districts.csv)")
	financialYear := flag.String("year", config.DefaultFinancialYear, "financial year to fetch, e.g. 2019-2020")
	yearID := flag.String("year-id", "", "portal year id override (derived from -year when empty)")
	outPath := flag.String("out", "", "output raw CSV (defaults to data/raw/jjm_raw_<year>.csv)")
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
		infrastructure.MustInitializeLogger(cfg.Logging), "ingester")
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	// The district reference list is third-party data, so it lives under
	// data/external by convention.
	if *districtsPath == "" {
		*districtsPath = paths.GetExternalPath("districts.csv")
	}
	if *outPath == "" {
		*outPath = paths.GetRawSnapshotCSV(startYearOf(*financialYear))
	}

	logger.InfoContext(ctx, "starting jjm coverage ingester",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("districts", *districtsPath),
		slog.String("financial_year", *financialYear),
		slog.String("output", *outPath))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(*districtsPath); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "district list validation failed")
		os.Exit(1)
	}

	districts, err := loadDistricts(*districtsPath)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "failed to load district list")
		os.Exit(1)
	}

	client := ingest.NewClient(cfg.Ingestion, logger)
	ingester := ingest.NewIngester(client, cfg.Ingestion.FetchConcurrency, logger)

	table, err := ingester.Run(ctx, districts, *financialYear, *yearID, *outPath)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "ingestion run failed")
		os.Exit(1)
	}

	logger.InfoContext(ctx, "ingestion run complete",
		slog.Int("rows", table.Len()),
		slog.String("output", *outPath))
}

// loadDistricts reads the district list CSV. Either the district_code or
// code column names the code; district_name and name are both accepted
// for the display name.
func loadDistricts(path string) ([]ingest.District, error) {
	table, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, err
	}

	var districts []ingest.District
	for _, row := range table.Rows {
		code := row.Get("district_code").String()
		if code == "" {
			code = row.Get("code").String()
		}
		name := row.Get("district_name").String()
		if name == "" {
			name = row.Get("name").String()
		}
		districts = append(districts, ingest.District{Code: code, Name: name})
	}
	return districts, nil
}

func startYearOf(financialYear string) int {
	if len(financialYear) >= 4 {
		if year, err := strconv.Atoi(financialYear[:4]); err == nil {
			return year
		}
	}
	return config.DefaultStartYear
}
