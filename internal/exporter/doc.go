// Package exporter writes pipeline outputs as CSV files, resolving
// relative file names onto the data directory layout. A streaming writer
// is available for outputs assembled row by row.
package exporter
