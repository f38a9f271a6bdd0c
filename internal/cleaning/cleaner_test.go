package cleaning

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jjmcli/internal/dataset"
	apperrors "jjmcli/internal/errors"
	"jjmcli/internal/shared/testutil"
)

func writeInputCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleInput = `district,month,coverage
A,2019-04-01,50
A,2019-05-01,70
A,2019-06-01,65
B,2019-04-01,105
B,2019-05-01,60
`

func TestCleaner_CleanEndToEnd(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	input := writeInputCSV(t, sampleInput)
	output := filepath.Join(t.TempDir(), "cleaned.csv")

	cleaned, summary, err := NewCleaner(logger).Clean(context.Background(), Request{
		InputPath:  input,
		OutputPath: output,
	})
	require.NoError(t, err)

	// The 105% row is a reporting error and is removed.
	assert.Equal(t, 5, summary.OriginalRows)
	assert.Equal(t, 1, summary.ReportingErrorsTotal)
	assert.Equal(t, 1, summary.FilteredRows)
	assert.Equal(t, 4, summary.CleanedRows)
	assert.Equal(t, summary.OriginalRows, summary.FilteredRows+summary.CleanedRows)

	// A: 50→70 is +40%. B: 105→60 is -42.9%. Both exceed the spike
	// threshold; spike totals come from the pre-filter table.
	assert.Equal(t, 2, summary.SuspiciousSpikesTotal)
	assert.Equal(t, 2, summary.DistrictsWithSuspiciousSpikes)
	assert.Equal(t, []string{"A", "B"}, summary.DistrictsFlagged)

	require.Equal(t, 4, cleaned.Len())
	for _, row := range cleaned.Rows {
		cov, ok := row.Float("coverage")
		require.True(t, ok)
		assert.GreaterOrEqual(t, cov, 0.0)
		assert.LessOrEqual(t, cov, 100.0)
	}

	// Suspicious rows are retained, only flagged.
	spikes := 0
	for _, row := range cleaned.Rows {
		if IsFlagged(row, ColSuspiciousSpike) {
			spikes++
		}
	}
	assert.Equal(t, 2, spikes)

	// Round-trip the persisted output.
	persisted, err := dataset.ReadCSV(output)
	require.NoError(t, err)
	assert.Equal(t, cleaned.Len(), persisted.Len())
	assert.Contains(t, persisted.Columns, ColPreviousPeriod)
	assert.Contains(t, persisted.Columns, ColChangeAbsolute)
	assert.Contains(t, persisted.Columns, ColChangePercent)
	assert.Contains(t, persisted.Columns, ColSuspiciousSpike)
	assert.Contains(t, persisted.Columns, ColReportingError)
}

func TestCleaner_UnresolvableDateAbortsBeforeWrite(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	input := writeInputCSV(t, "district,coverage\nA,50\n")
	output := filepath.Join(t.TempDir(), "cleaned.csv")

	_, _, err := NewCleaner(logger).Clean(context.Background(), Request{
		InputPath:  input,
		OutputPath: output,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no output may be written on a fatal error")
}

func TestCleaner_MissingInput(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	_, _, err := NewCleaner(logger).Clean(context.Background(), Request{
		InputPath:  filepath.Join(t.TempDir(), "nope.csv"),
		OutputPath: filepath.Join(t.TempDir(), "out.csv"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSource))
}

func TestCleaner_OverridesRespected(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	input := writeInputCSV(t, "zone,period,pct\nA,2019-04-01,50\nA,2019-05-01,55\n")
	output := filepath.Join(t.TempDir(), "cleaned.csv")

	cleaned, summary, err := NewCleaner(logger).Clean(context.Background(), Request{
		InputPath:  input,
		OutputPath: output,
		Overrides:  Overrides{Coverage: "pct", Date: "period", District: "zone"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cleaned.Len())
	assert.Equal(t, 0, summary.SuspiciousSpikesTotal)
}

func TestCleaner_NoDistrictColumnFallback(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	input := writeInputCSV(t, "month,coverage\n2019-04-01,50\n2019-05-01,70\n")
	output := filepath.Join(t.TempDir(), "cleaned.csv")

	_, summary, err := NewCleaner(logger).Clean(context.Background(), Request{
		InputPath:  input,
		OutputPath: output,
	})
	require.NoError(t, err)

	// Without a district column the district figure degrades to the raw
	// flagged-row count and the list stays empty.
	assert.Equal(t, 1, summary.SuspiciousSpikesTotal)
	assert.Equal(t, 1, summary.DistrictsWithSuspiciousSpikes)
	assert.Empty(t, summary.DistrictsFlagged)
}

func TestCleaner_Deterministic(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	input := writeInputCSV(t, sampleInput)
	dir := t.TempDir()

	runOnce := func(name string) []byte {
		output := filepath.Join(dir, name)
		_, _, err := NewCleaner(logger).Clean(context.Background(), Request{
			InputPath:  input,
			OutputPath: output,
		})
		require.NoError(t, err)
		data, err := os.ReadFile(output)
		require.NoError(t, err)
		return data
	}

	first := runOnce("a.csv")
	second := runOnce("b.csv")
	assert.Equal(t, first, second, "repeated runs over the same input must be byte-identical")
}
