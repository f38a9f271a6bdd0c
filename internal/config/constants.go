package config

import "time"

// Application constants for the JJM analysis pipeline
const (
	// Application Info
	AppName    = "JJM Pipeline"
	AppVersion = "1.2.0"

	// Financial year covered by the default ingestion run.
	// JJM reports on April-to-March financial years.
	DefaultFinancialYear = "2019-2020"
	DefaultStartYear     = 2019

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// Ingestion retry policy
	DefaultRetryAttempts = 3

	// File Paths (relative to the base directory)
	DefaultRawDir       = "data/raw"
	DefaultProcessedDir = "data/processed"
	DefaultExternalDir  = "data/external"
	DefaultInterimDir   = "data/interim"
	DefaultLogsDir      = "logs"
	DefaultReportsDir   = "output/reports"

	// Well-known file names
	RawCoverageFileName     = "jjm_raw.csv"
	CleanedCoverageFileName = "jjm_cleaned.csv"
	HealthCasesFileName     = "health_cases.csv"
	PanelFileName           = "final_panel.csv"
	RegressionFileName      = "state_regressions.csv"

	// HMIS health workbook discovery
	HealthWorkbookPattern = "*.xls*"

	// Log Settings
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogFilePath = "logs/pipeline.log"
)
