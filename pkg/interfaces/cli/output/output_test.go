package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/storealloc/pkg/application/dto"
	"github.com/vsinha/storealloc/pkg/application/services/distribution"
	testhelpers "github.com/vsinha/storealloc/pkg/infrastructure/testing"
)

func simpleResult(t *testing.T) *dto.DistributionResult {
	t.Helper()
	scenario := testhelpers.BuildSimpleTestData()
	result, err := distribution.NewService(distribution.DefaultConfig()).Distribute(context.Background(),
		distribution.Input{
			Stock:         scenario.Stock,
			Participation: scenario.Participation,
			Priorities:    scenario.Priorities,
		})
	require.NoError(t, err)
	return result
}

func TestGenerate_Text(t *testing.T) {
	result := simpleResult(t)
	var out bytes.Buffer

	require.NoError(t, Generate(result, Config{Format: "text", Writer: &out}))
	text := out.String()
	assert.Contains(t, text, "Distribution Summary")
	assert.Contains(t, text, "CheckSum: original 25, distributed 25, difference 0 ✅ OK")
	assert.Contains(t, text, "Stores: 3 (top: A, second: B)")
	assert.Contains(t, text, "R12_TOP_STORE_EXCESS")

	dir := t.TempDir()
	out.Reset()
	require.NoError(t, Generate(result, Config{Format: "text", OutputDir: dir, Writer: &out}))
	saved, err := os.ReadFile(filepath.Join(dir, TextFile))
	require.NoError(t, err)
	assert.Equal(t, out.String(), string(saved))
}

func TestGenerate_JSONAndYAML(t *testing.T) {
	result := simpleResult(t)

	var out bytes.Buffer
	require.NoError(t, Generate(result, Config{Format: "json", Writer: &out}))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "A", decoded["topStore"])

	dir := t.TempDir()
	require.NoError(t, Generate(result, Config{Format: "yaml", OutputDir: dir}))
	data, err := os.ReadFile(filepath.Join(dir, YAMLFile))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "A", doc["topStore"])
	assert.Contains(t, doc, "allocationDetail")
}

func TestGenerate_CSV(t *testing.T) {
	result := simpleResult(t)

	require.Error(t, Generate(result, Config{Format: "csv"}))

	dir := t.TempDir()
	require.NoError(t, Generate(result, Config{Format: "csv", OutputDir: dir}))

	for _, tbl := range resultTables(result) {
		file, err := os.Open(filepath.Join(dir, tbl.file))
		require.NoError(t, err)
		records, err := csv.NewReader(file).ReadAll()
		file.Close()
		require.NoError(t, err)
		assert.Equal(t, tbl.header, records[0], tbl.file)
		assert.Len(t, records, len(tbl.rows)+1, tbl.file)
	}
}

func TestGenerate_XLSX(t *testing.T) {
	result := simpleResult(t)
	dir := t.TempDir()
	require.NoError(t, Generate(result, Config{Format: "xlsx", OutputDir: dir}))

	f, err := excelize.OpenFile(filepath.Join(dir, XLSXFile))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Allocation", "Transfers", "Stores", "Store Analysis", "Trace"}, f.GetSheetList())

	rows, err := f.GetRows("Allocation")
	require.NoError(t, err)
	require.Len(t, rows, len(result.AllocationDetail)+1)
	assert.Equal(t, "SKU", rows[0][0])
	assert.Equal(t, result.AllocationDetail[0].SKU, rows[1][0])

	rows, err = f.GetRows("Trace")
	require.NoError(t, err)
	assert.Len(t, rows, len(result.TraceLog)+1)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	assert.Error(t, Generate(simpleResult(t), Config{Format: "pdf"}))
}
