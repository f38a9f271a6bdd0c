package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jjmcli/internal/errors"
)

func TestValue_Float(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected float64
		ok       bool
	}{
		{"plain number", NewValue("85.5"), 85.5, true},
		{"integer", NewValue("70"), 70, true},
		{"thousands separator", NewValue("1,234.5"), 1234.5, true},
		{"whitespace", NewValue("  42 "), 42, true},
		{"negative", NewValue("-3"), -3, true},
		{"non-numeric", NewValue("n/a"), 0, false},
		{"empty string", NewValue(""), 0, false},
		{"absent", Absent(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Float()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.expected, got, 1e-9)
			}
		})
	}
}

func TestTable_Columns(t *testing.T) {
	table := NewTable("district", "coverage")

	assert.True(t, table.HasColumn("district"))
	assert.False(t, table.HasColumn("District")) // exact match only

	table.AddColumn("coverage") // no duplicate
	table.AddColumn("suspicious_spike")
	assert.Equal(t, []string{"district", "coverage", "suspicious_spike"}, table.Columns)
}

func TestTable_CloneIsDeep(t *testing.T) {
	table := NewTable("a")
	table.Append(Row{"a": NewValue("1")})

	clone := table.Clone()
	clone.Rows[0]["a"] = NewValue("changed")
	clone.AddColumn("b")

	assert.Equal(t, "1", table.Rows[0].Get("a").String())
	assert.Equal(t, []string{"a"}, table.Columns)
}

func TestTable_Filter(t *testing.T) {
	table := NewTable("v")
	for _, s := range []string{"1", "2", "3", "4"} {
		table.Append(Row{"v": NewValue(s)})
	}

	even := table.Filter(func(r Row) bool {
		f, _ := r.Float("v")
		return int(f)%2 == 0
	})

	require.Equal(t, 2, even.Len())
	assert.Equal(t, "2", even.Rows[0].Get("v").String())
	assert.Equal(t, "4", even.Rows[1].Get("v").String())
	assert.Equal(t, 4, table.Len()) // original untouched
}

func TestTable_CoerceNumeric(t *testing.T) {
	table := NewTable("coverage")
	table.Append(Row{"coverage": NewValue("85.5")})
	table.Append(Row{"coverage": NewValue("not reported")})
	table.Append(Row{"coverage": NewValue("")})

	table.CoerceNumeric("coverage")

	assert.True(t, table.Rows[0].Get("coverage").Present())
	assert.False(t, table.Rows[1].Get("coverage").Present())
	assert.False(t, table.Rows[2].Get("coverage").Present())
}

func TestReadCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "data.csv")

	table := NewTable("district", "coverage", "note")
	table.Append(Row{"district": NewValue("Pune"), "coverage": NewValue("55.2"), "note": Absent()})
	table.Append(Row{"district": NewValue("Nashik"), "coverage": NewValue("61.0"), "note": NewValue("ok")})

	require.NoError(t, table.WriteCSV(path))

	loaded, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, table.Columns, loaded.Columns)
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, "Pune", loaded.Rows[0].Get("district").String())
	assert.Equal(t, "55.2", loaded.Rows[0].Get("coverage").String())
	// absent cells come back as empty strings after a round trip
	assert.Equal(t, "", loaded.Rows[0].Get("note").String())
}

func TestReadCSV_StripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("district,coverage\nPune,55\n")...)
	require.NoError(t, os.WriteFile(path, content, 0644))

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"district", "coverage"}, table.Columns)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2\n1,2,3,4\n"), 0644))

	table, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.False(t, table.Rows[0].Get("c").Present())
	assert.Equal(t, "3", table.Rows[1].Get("c").String())
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSource))
}

func TestReadCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := ReadCSV(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSource))
}
