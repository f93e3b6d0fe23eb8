package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/storealloc/pkg/infrastructure/parser"
	testhelpers "github.com/vsinha/storealloc/pkg/infrastructure/testing"
)

func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, testhelpers.WriteScenarioFiles(dir))
	return dir
}

func TestInputs_Sources(t *testing.T) {
	_, err := Inputs{}.Sources()
	assert.ErrorIs(t, err, ErrNoInputs)

	_, err = Inputs{StockFile: "stock.csv"}.Sources()
	assert.ErrorIs(t, err, ErrNoInputs)

	dir := scenarioDir(t)
	sources, err := Inputs{ScenarioDir: dir, PriorityFile: "other.csv"}.Sources()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stock.csv"), sources.Stock)
	assert.Equal(t, "other.csv", sources.Priority)
}

func TestRunCommand_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	metricsFile := filepath.Join(t.TempDir(), "storealloc.prom")

	cmd := NewRunCommand(Config{
		Inputs:      Inputs{ScenarioDir: scenarioDir(t)},
		Format:      "json",
		MetricsFile: metricsFile,
		Strict:      true,
		Stdout:      &stdout,
		Stderr:      &stderr,
	})
	require.NoError(t, cmd.Execute(context.Background()))

	var result map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, "A", result["topStore"])

	assert.Contains(t, stderr.String(), "checksum OK: original 25, distributed 25")
	assert.Contains(t, stderr.String(), "fingerprint ")

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "storealloc_runs_total")
}

func TestRunCommand_IsDeterministic(t *testing.T) {
	dir := scenarioDir(t)
	run := func() string {
		var stdout, stderr bytes.Buffer
		cmd := NewRunCommand(Config{
			Inputs: Inputs{ScenarioDir: dir},
			Format: "yaml",
			Stdout: &stdout,
			Stderr: &stderr,
		})
		require.NoError(t, cmd.Execute(context.Background()))
		return stdout.String() + stderr.String()
	}
	assert.Equal(t, run(), run())
}

func TestRunCommand_Errors(t *testing.T) {
	var out bytes.Buffer
	err := NewRunCommand(Config{Stdout: &out, Stderr: &out}).Execute(context.Background())
	assert.ErrorIs(t, err, ErrNoInputs)

	dir := scenarioDir(t)
	err = NewRunCommand(Config{
		Inputs: Inputs{
			StockFile:         filepath.Join(dir, "priority.csv"),
			ParticipationFile: filepath.Join(dir, "participation.csv"),
		},
		Stdout: &out,
		Stderr: &out,
	}).Execute(context.Background())
	assert.ErrorIs(t, err, parser.ErrWrongTableKind)

	err = NewRunCommand(Config{
		Inputs: Inputs{ScenarioDir: dir},
		Format: "pdf",
		Stdout: &out,
		Stderr: &out,
	}).Execute(context.Background())
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	var stdout bytes.Buffer
	cmd := NewValidateCommand(Config{Inputs: Inputs{ScenarioDir: scenarioDir(t)}, Stdout: &stdout})
	require.NoError(t, cmd.Execute(context.Background()))

	text := stdout.String()
	assert.Contains(t, text, "Inputs are valid")
	assert.Contains(t, text, "(5 rows, 4 valid)")
	assert.Contains(t, text, "discarded non_positive_quantity: 1")
	assert.Contains(t, text, "3 stores, sum 100.00%")
	assert.Contains(t, text, "(2 categories)")
}

func TestConfigCommand(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, NewConfigCommand(Config{Stdout: &stdout}).Execute())
	assert.Contains(t, stdout.String(), "minimum_units: 3")
	assert.Contains(t, stdout.String(), "format: text")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: pdf\n"), 0o644))
	assert.Error(t, NewConfigCommand(Config{ConfigFile: path, Stdout: &stdout}).Execute())
}
