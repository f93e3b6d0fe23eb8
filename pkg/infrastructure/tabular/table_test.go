package tabular

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectHeader []string
		expectRows   [][]string
	}{
		{
			name:         "comma separated",
			input:        "sucursal,participacion\nA, 60\nB,40\n",
			expectHeader: []string{"sucursal", "participacion"},
			expectRows:   [][]string{{"A", "60"}, {"B", "40"}},
		},
		{
			name:         "semicolon separated with decimal commas",
			input:        "sucursal;participacion\nA;59,5\nB;40,5\n",
			expectHeader: []string{"sucursal", "participacion"},
			expectRows:   [][]string{{"A", "59,5"}, {"B", "40,5"}},
		},
		{
			name:         "byte order mark and blank rows",
			input:        "\xef\xbb\xbfprioridad,tipologia\n,\n1,JEANS\n\n",
			expectHeader: []string{"prioridad", "tipologia"},
			expectRows:   [][]string{{"1", "JEANS"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tc.input), "input.csv")
			require.NoError(t, err)
			assert.Equal(t, tc.expectHeader, table.Header)
			assert.Equal(t, tc.expectRows, table.Rows)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "stock.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
		_, err := ReadFile(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "missing.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("xlsx first sheet", func(t *testing.T) {
		workbook := excelize.NewFile()
		sheet := workbook.GetSheetName(0)
		require.NoError(t, workbook.SetSheetRow(sheet, "A1", &[]any{"sucursal", "participacion"}))
		require.NoError(t, workbook.SetSheetRow(sheet, "A2", &[]any{"A", 0.6}))
		require.NoError(t, workbook.SetSheetRow(sheet, "A3", &[]any{"B", 0.4}))

		var buf bytes.Buffer
		require.NoError(t, workbook.Write(&buf))
		path := filepath.Join(dir, "participation.xlsx")
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		table, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "participation.xlsx", table.Name)
		assert.Equal(t, []string{"sucursal", "participacion"}, table.Header)
		assert.Equal(t, [][]string{{"A", "0.6"}, {"B", "0.4"}}, table.Rows)
	})
}
