package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jjmcli/internal/errors"
	"jjmcli/internal/shared/testutil"
)

func newValidator(t *testing.T) *FileValidator {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger)
}

func TestValidateInputDirectory(t *testing.T) {
	v := newValidator(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Assam.xls"), []byte("x"), 0o644))

	assert.NoError(t, v.ValidateInputDirectory(dir, "*.xls*"))
	// An empty match set is a warning, not an error.
	assert.NoError(t, v.ValidateInputDirectory(dir, "*.csv"))

	err := v.ValidateInputDirectory(filepath.Join(dir, "missing"), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSource))

	err = v.ValidateInputDirectory(filepath.Join(dir, "Assam.xls"), "")
	require.Error(t, err)
}

func TestValidateOutputDirectory(t *testing.T) {
	v := newValidator(t)
	dir := filepath.Join(t.TempDir(), "output", "reports")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The writability probe must not leave the test file behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidateFile(t *testing.T) {
	v := newValidator(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	assert.NoError(t, v.ValidateFile(path))

	err := v.ValidateFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSource))

	err = v.ValidateFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestValidateCSVFile(t *testing.T) {
	v := newValidator(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("a,b\n"), 0o644))
	assert.NoError(t, v.ValidateCSVFile(csvPath))

	txtPath := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	err := v.ValidateCSVFile(txtPath)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestValidateWorkbookFile(t *testing.T) {
	v := newValidator(t)
	dir := t.TempDir()

	wbPath := filepath.Join(dir, "Assam.xlsx")
	require.NoError(t, os.WriteFile(wbPath, []byte("x"), 0o644))
	assert.NoError(t, v.ValidateWorkbookFile(wbPath))

	lockPath := filepath.Join(dir, "~$Assam.xlsx")
	require.NoError(t, os.WriteFile(lockPath, []byte("x"), 0o644))
	err := v.ValidateWorkbookFile(lockPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock file")

	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("x"), 0o644))
	require.Error(t, v.ValidateWorkbookFile(csvPath))
}
