package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/storealloc/pkg/application/services/distribution"
	"github.com/vsinha/storealloc/pkg/infrastructure/parser"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storealloc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	d := cfg.Distribution()
	want := distribution.DefaultConfig()
	assert.Equal(t, want.Rules.CurveCompleteness, d.Rules.CurveCompleteness)
	assert.Equal(t, want.Rules.BrokenCurve, d.Rules.BrokenCurve)
	assert.True(t, want.Rules.LargeStore.Equal(d.Rules.LargeStore))
	assert.Equal(t, want.Rules.MinimumUnits, d.Rules.MinimumUnits)
	assert.Equal(t, want.OversupplyCurves, d.OversupplyCurves)
	assert.False(t, d.EnforceLargeStoreLock)

	p := cfg.Parser()
	defaults := parser.DefaultOptions()
	assert.True(t, defaults.Tolerance.Equal(p.Tolerance))
	assert.True(t, defaults.FractionCutoff.Equal(p.FractionCutoff))
	assert.Equal(t, defaults.DefaultPriority, p.DefaultPriority)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
rules:
  curve_completeness_threshold: 0.8
  large_store_threshold: 12.5
  enforce_large_store_lock: true
output:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Rules.CurveCompletenessThreshold)
	assert.Equal(t, 0.5, cfg.Rules.BrokenCurveThreshold)
	assert.True(t, cfg.Rules.EnforceLargeStoreLock)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, decimal.RequireFromString("12.5").Equal(cfg.Distribution().Rules.LargeStore))
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "rules:\n  minimum_units: 5\n")
	t.Setenv("STOREALLOC_RULES_MINIMUM_UNITS", "2")
	t.Setenv("STOREALLOC_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cfg.Rules.MinimumUnits)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "rules:\n  broken_curve_threshold: 1.5\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero completeness", func(c *Config) { c.Rules.CurveCompletenessThreshold = 0 }},
		{"broken curve above one", func(c *Config) { c.Rules.BrokenCurveThreshold = 1.1 }},
		{"large store above 100", func(c *Config) { c.Rules.LargeStoreThreshold = 101 }},
		{"negative minimum", func(c *Config) { c.Rules.MinimumUnits = -1 }},
		{"negative oversupply", func(c *Config) { c.Rules.OversupplyCurves = -1 }},
		{"negative tolerance", func(c *Config) { c.Participation.Tolerance = -0.1 }},
		{"zero fraction cutoff", func(c *Config) { c.Participation.FractionCutoff = 0 }},
		{"zero default priority", func(c *Config) { c.DefaultPriority = 0 }},
		{"unknown format", func(c *Config) { c.Output.Format = "pdf" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	out, err := Default().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "curve_completeness_threshold: 0.7")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, Default(), decoded)
}
