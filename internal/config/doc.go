// Package config provides configuration management for the JJM analysis
// pipeline.
//
// Configuration is loaded from environment variables (prefix JJM) merged
// with an optional config.yaml, with environment taking precedence. The
// Paths type is the single source of truth for the on-disk data layout:
//
//	data/
//	  raw/        raw coverage snapshots from ingestion
//	  processed/  cleaned coverage data and assembled panels
//	  external/   HMIS health workbooks and extracted case counts
//	  interim/    scratch files between stages
//	logs/         structured JSON logs, one file per binary
//	output/
//	  reports/    summary and regression result CSVs
//
// All binaries resolve paths through GetPaths so that the layout can be
// relocated with a single JJM_PATHS_BASE_DIR override.
package config
