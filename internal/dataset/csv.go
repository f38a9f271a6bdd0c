package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"jjmcli/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV loads a table from a CSV file. The first record is the header;
// a UTF-8 BOM is stripped if present. Ragged rows are tolerated: short
// rows leave trailing cells absent, long rows drop the excess. A file
// that cannot be opened, or whose header yields no columns, is a source
// error carrying the attempted path.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewSourceError("failed to read input file", err).
			WithContext("path", path)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	if peeked, err := br.Peek(len(utf8BOM)); err == nil && string(peeked) == string(utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewSourceError("input file has no header row", err).
			WithContext("path", path)
	}

	columns := make([]string, 0, len(header))
	for _, col := range header {
		if col != "" {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil, errors.NewSourceError("input file has no columns", nil).
			WithContext("path", path)
	}

	table := &Table{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewSourceError("failed to parse input file", err).
				WithContext("path", path)
		}

		row := make(Row, len(columns))
		for i, col := range header {
			if col == "" || i >= len(record) {
				continue
			}
			row[col] = NewValue(record[i])
		}
		table.Append(row)
	}

	return table, nil
}

// WriteCSV persists the table to path, creating parent directories as
// needed. A UTF-8 BOM is written first so spreadsheet tools pick up the
// encoding. Absent cells become empty fields. Failures are storage errors
// carrying the attempted path.
func (t *Table) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).
			WithContext("path", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create output file", err).
			WithContext("path", path)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return errors.NewStorageError("failed to write output file", err).
			WithContext("path", path)
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(t.Columns); err != nil {
		return errors.NewStorageError("failed to write header row", err).
			WithContext("path", path)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = row.Get(col).String()
		}
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write data row", err).
				WithContext("path", path)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush output file", err).
			WithContext("path", path)
	}

	return nil
}
