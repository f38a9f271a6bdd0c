package health

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"jjmcli/internal/dataset"
	apperrors "jjmcli/internal/errors"
	"jjmcli/internal/exporter"
	"jjmcli/internal/files"
)

// financialYearMonths is the HMIS reporting order: the financial year
// opens in April and closes in March.
var financialYearMonths = []string{
	"April", "May", "June", "July", "August", "September",
	"October", "November", "December", "January", "February", "March",
}

var monthNumbers = map[string]int{
	"January": 1, "February": 2, "March": 3, "April": 4,
	"May": 5, "June": 6, "July": 7, "August": 8,
	"September": 9, "October": 10, "November": 11, "December": 12,
}

// DefaultWorkbookDir returns the conventional raw-data subdirectory for a
// financial year's HMIS workbooks, e.g. "health_2019_20".
func DefaultWorkbookDir(startYear int) string {
	return fmt.Sprintf("health_%d_%02d", startYear, (startYear+1)%100)
}

// CaseRecord is one district-month observation of diarrhoea inpatient
// cases, extracted from a state HMIS workbook.
type CaseRecord struct {
	State    string
	District string
	Month    string
	Year     int
	Cases    float64
}

// PeriodKey returns the observation's calendar month as "YYYY-MM", the
// join key shared with the coverage data.
func (r CaseRecord) PeriodKey() string {
	return fmt.Sprintf("%04d-%02d", r.Year, monthNumbers[r.Month])
}

// Processor extracts diarrhoea inpatient case counts from per-state HMIS
// workbooks and assembles them into one long-format table.
type Processor struct {
	discovery *files.Discovery
	csvWriter *exporter.CSVWriter
	logger    *slog.Logger
}

// NewProcessor creates a health data processor.
func NewProcessor(discovery *files.Discovery, csvWriter *exporter.CSVWriter, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{discovery: discovery, csvWriter: csvWriter, logger: logger}
}

// ProcessWorkbook extracts the diarrhoea inpatient series from one state
// workbook. startYear is the financial year's opening calendar year:
// April through December fall in startYear, January through March in
// startYear+1. The state name is the workbook's file stem.
func (p *Processor) ProcessWorkbook(ctx context.Context, path string, startYear int) ([]CaseRecord, error) {
	state := stateFromFilename(path)
	p.logger.InfoContext(ctx, "processing state workbook",
		slog.String("state", state),
		slog.String("path", path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	rows, err := dataSheet(f)
	if err != nil {
		return nil, err
	}

	// The HMIS layout carries a two-level header: month groups on the
	// first row (merged across their subcolumns) and subheaders like
	// "Total [(A+B)]" on the second.
	columns := flattenHeader(rows[0], rows[1])

	monthColumns := make(map[string]int)
	for _, month := range financialYearMonths {
		idx, ok := findMonthColumn(columns, month)
		if !ok {
			p.logger.WarnContext(ctx, "month column not found in workbook",
				slog.String("state", state),
				slog.String("month", month))
			continue
		}
		monthColumns[month] = idx
	}
	if len(monthColumns) == 0 {
		return nil, apperrors.NewParsingError("no monthly total columns found", nil).
			WithContext("path", path)
	}

	var records []CaseRecord
	matchedRows := 0
	for _, row := range rows[2:] {
		if len(row) < 2 {
			continue
		}
		district := strings.TrimSpace(row[0])
		indicator := strings.ToLower(row[1])

		if district == "" || strings.EqualFold(district, "total") {
			continue
		}
		if !strings.Contains(indicator, "diarrhoea") || !strings.Contains(indicator, "inpatient") {
			continue
		}
		matchedRows++

		for _, month := range financialYearMonths {
			idx, ok := monthColumns[month]
			if !ok {
				continue
			}
			year := startYear
			if monthNumbers[month] <= 3 {
				year = startYear + 1
			}
			records = append(records, CaseRecord{
				State:    state,
				District: district,
				Month:    month,
				Year:     year,
				Cases:    cellToCases(row, idx),
			})
		}
	}

	if matchedRows == 0 {
		p.logger.WarnContext(ctx, "no diarrhoea inpatient rows in workbook",
			slog.String("state", state))
		return nil, nil
	}

	p.logger.InfoContext(ctx, "extracted case records",
		slog.String("state", state),
		slog.Int("districts", matchedRows),
		slog.Int("records", len(records)))
	return records, nil
}

// ProcessDirectory processes every state workbook in dir and streams the
// combined long-format table to outputFile (resolved by the CSV writer).
// Workbooks that fail to parse are skipped; the run fails only when no
// workbook yields data.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string, startYear int, outputFile string) (int, error) {
	workbooks, err := p.discovery.ListStateWorkbooks(dir)
	if err != nil {
		return 0, apperrors.NewSourceError("failed to list state workbooks", err).
			WithContext("dir", dir)
	}
	if len(workbooks) == 0 {
		return 0, apperrors.NewSourceError("no state workbooks found", nil).
			WithContext("dir", dir)
	}
	p.logger.InfoContext(ctx, "processing health workbooks",
		slog.Int("workbooks", len(workbooks)),
		slog.Int("start_year", startYear))

	stream, err := p.csvWriter.CreateStreamWriter(outputFile,
		[]string{"state", "district", "month", "year", "period", "cases"})
	if err != nil {
		return 0, apperrors.NewStorageError("failed to create output stream", err).
			WithContext("output", outputFile)
	}

	total := 0
	processed := 0
	for _, wb := range workbooks {
		records, err := p.ProcessWorkbook(ctx, wb.Path, startYear)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping workbook",
				slog.String("workbook", wb.Name),
				slog.String("error", err.Error()))
			continue
		}
		if len(records) == 0 {
			continue
		}
		processed++

		for _, r := range records {
			record := []string{
				r.State,
				r.District,
				r.Month,
				strconv.Itoa(r.Year),
				r.PeriodKey(),
				strconv.FormatFloat(r.Cases, 'f', -1, 64),
			}
			if err := stream.WriteRecord(record); err != nil {
				stream.Close()
				return 0, apperrors.NewStorageError("failed to write case record", err).
					WithContext("output", outputFile)
			}
		}
		total += len(records)
	}

	if err := stream.Close(); err != nil {
		return 0, apperrors.NewStorageError("failed to finalize output", err).
			WithContext("output", outputFile)
	}

	if total == 0 {
		return 0, apperrors.NewSourceError("no case records extracted from any workbook", nil).
			WithContext("dir", dir)
	}

	p.logger.InfoContext(ctx, "saved combined case table",
		slog.String("output", outputFile),
		slog.Int("workbooks_processed", processed),
		slog.Int("workbooks_failed", len(workbooks)-processed),
		slog.Int("records", total))
	return total, nil
}

// dataSheet returns the rows of the first sheet that looks like an HMIS
// data table (two header rows plus data).
func dataSheet(f *excelize.File) ([][]string, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(rows) >= 3 {
			return rows, nil
		}
	}
	return nil, apperrors.NewParsingError("no sheet with a data table found", nil)
}

// flattenHeader joins the two header rows into flat column names. Month
// group cells are merged in the source, so the first level is carried
// forward across blank cells.
func flattenHeader(level0, level1 []string) []string {
	width := len(level0)
	if len(level1) > width {
		width = len(level1)
	}

	columns := make([]string, width)
	carried := ""
	for i := 0; i < width; i++ {
		top := ""
		if i < len(level0) {
			top = strings.TrimSpace(level0[i])
		}
		if top != "" {
			carried = top
		} else {
			top = carried
		}

		sub := ""
		if i < len(level1) {
			sub = strings.TrimSpace(level1[i])
		}

		switch {
		case top != "" && sub != "":
			columns[i] = top + "_" + sub
		case top != "":
			columns[i] = top
		default:
			columns[i] = sub
		}
	}
	return columns
}

// findMonthColumn locates the monthly grand-total column. The preferred
// match is the "Total [(A+B)]" / "Total [(C+D)]" subcolumn; failing that,
// any total column under the month group is accepted.
func findMonthColumn(columns []string, month string) (int, bool) {
	monthLower := strings.ToLower(month)

	for i, col := range columns {
		lower := strings.ToLower(col)
		if !strings.Contains(lower, monthLower) || !strings.Contains(lower, "total") {
			continue
		}
		if strings.Contains(lower, "a+b") || strings.Contains(lower, "c+d") {
			return i, true
		}
	}
	for i, col := range columns {
		lower := strings.ToLower(col)
		if strings.Contains(lower, monthLower) && strings.Contains(lower, "total") {
			return i, true
		}
	}
	return 0, false
}

// cellToCases parses a case count, coercing blanks and non-numeric cells
// to 0 so a single dirty cell doesn't drop a district-month.
func cellToCases(row []string, idx int) float64 {
	if idx >= len(row) {
		return 0
	}
	cases, ok := dataset.NewValue(row[idx]).Float()
	if !ok {
		return 0
	}
	return cases
}

func stateFromFilename(path string) string {
	name := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(name, filepath.Ext(name)))
}
