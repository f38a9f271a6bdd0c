// Package files discovers pipeline input files on disk: per-state HMIS
// workbooks and CSV snapshots under the data directories.
package files
