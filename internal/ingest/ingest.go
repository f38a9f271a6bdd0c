package ingest

import (
	"context"
	"log/slog"
	"sort"

	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"jjmcli/internal/dataset"
	apperrors "jjmcli/internal/errors"
)

// District identifies one district to fetch.
type District struct {
	Code string
	Name string
}

// Ingester pulls district coverage snapshots from the IMIS API and
// assembles them into one raw table.
type Ingester struct {
	client      *Client
	concurrency int
	logger      *slog.Logger
}

// NewIngester creates an ingester running at most concurrency fetches in
// parallel.
func NewIngester(client *Client, concurrency int, logger *slog.Logger) *Ingester {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{client: client, concurrency: concurrency, logger: logger}
}

// Run fetches every district for the financial year, flattens the payloads
// into rows, and persists the combined table to outputPath. Districts that
// fail to fetch are skipped with a warning; the run fails only when no
// district yields data or the output cannot be written. Row order follows
// the input district order regardless of fetch completion order.
func (g *Ingester) Run(ctx context.Context, districts []District, financialYear, yearID, outputPath string) (*dataset.Table, error) {
	g.logger.InfoContext(ctx, "starting coverage ingestion",
		slog.Int("districts", len(districts)),
		slog.String("financial_year", financialYear))

	if len(districts) == 0 {
		return nil, apperrors.NewValidationError("no districts to ingest")
	}

	rows := make([]map[string]any, len(districts))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)
	for i, district := range districts {
		if district.Code == "" {
			g.logger.WarnContext(ctx, "skipping district with missing code",
				slog.String("district_name", district.Name))
			continue
		}

		i, district := i, district
		group.Go(func() error {
			payload, err := g.client.FetchDistrict(groupCtx, district.Code, financialYear, yearID)
			if err != nil {
				// Per-district failures degrade the snapshot, they don't
				// abort it.
				g.logger.WarnContext(groupCtx, "skipping district after fetch failure",
					slog.String("district_code", district.Code),
					slog.String("error", err.Error()))
				return nil
			}

			flat := FlattenJSON(payload)
			if _, ok := flat["district_code"]; !ok {
				flat["district_code"] = district.Code
			}
			if _, ok := flat["district_name"]; !ok && district.Name != "" {
				flat["district_name"] = district.Name
			}
			rows[i] = flat
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	table, fetched := assembleTable(rows)
	g.logger.InfoContext(ctx, "assembled raw coverage table",
		slog.Int("fetched", fetched),
		slog.Int("failed", len(districts)-fetched),
		slog.Int("columns", len(table.Columns)))

	if fetched == 0 {
		return nil, apperrors.NewSourceError("no district data could be fetched", nil)
	}

	if err := table.WriteCSV(outputPath); err != nil {
		return nil, err
	}
	g.logger.InfoContext(ctx, "saved raw coverage snapshot",
		slog.String("output", outputPath),
		slog.Int("rows", table.Len()))

	return table, nil
}

// assembleTable unions per-district flattened rows into one table. The
// identifier columns lead; the remainder of the union is sorted so the
// header is stable across runs.
func assembleTable(rows []map[string]any) (*dataset.Table, int) {
	leading := []string{"district_code", "district_name"}
	isLeading := map[string]bool{"district_code": true, "district_name": true}

	seen := make(map[string]bool)
	var rest []string
	for _, row := range rows {
		for key := range row {
			if !isLeading[key] && !seen[key] {
				seen[key] = true
				rest = append(rest, key)
			}
		}
	}
	sort.Strings(rest)

	table := dataset.NewTable(append(leading, rest...)...)
	fetched := 0
	for _, flat := range rows {
		if flat == nil {
			continue
		}
		fetched++
		row := dataset.Row{}
		for key, value := range flat {
			if value == nil {
				continue
			}
			row[key] = dataset.NewValue(cast.ToString(value))
		}
		table.Append(row)
	}
	return table, fetched
}
