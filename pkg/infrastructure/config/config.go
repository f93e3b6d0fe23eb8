package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/storealloc/pkg/application/services/distribution"
	"github.com/vsinha/storealloc/pkg/application/services/rules"
	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/infrastructure/parser"
)

// EnvPrefix prefixes environment overrides, e.g. STOREALLOC_RULES_MINIMUM_UNITS
const EnvPrefix = "STOREALLOC"

// ErrInvalidConfig is returned when a configuration value is out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// Output formats accepted by the run command
var Formats = []string{"text", "json", "yaml", "csv", "xlsx"}

// Config is the complete tool configuration
type Config struct {
	Rules           RulesConfig         `mapstructure:"rules" yaml:"rules"`
	Participation   ParticipationConfig `mapstructure:"participation" yaml:"participation"`
	DefaultPriority int                 `mapstructure:"default_priority" yaml:"default_priority"`
	Output          OutputConfig        `mapstructure:"output" yaml:"output"`
	Log             LogConfig           `mapstructure:"log" yaml:"log"`
}

// RulesConfig holds the rule engine thresholds
type RulesConfig struct {
	// CurveCompletenessThreshold is the fraction of sizes a store must hold to keep a curve (0-1]
	CurveCompletenessThreshold float64 `mapstructure:"curve_completeness_threshold" yaml:"curve_completeness_threshold"`
	// BrokenCurveThreshold is the second cleanup threshold (0-1]
	BrokenCurveThreshold float64 `mapstructure:"broken_curve_threshold" yaml:"broken_curve_threshold"`
	// LargeStoreThreshold is the participation percentage above which a store is large
	LargeStoreThreshold float64 `mapstructure:"large_store_threshold" yaml:"large_store_threshold"`
	MinimumUnits        int64   `mapstructure:"minimum_units" yaml:"minimum_units"`
	OversupplyCurves    int64   `mapstructure:"oversupply_curves" yaml:"oversupply_curves"`
	// EnforceLargeStoreLock keeps large stores from donating excess in transfer planning
	EnforceLargeStoreLock bool `mapstructure:"enforce_large_store_lock" yaml:"enforce_large_store_lock"`
}

// ParticipationConfig controls weight normalisation
type ParticipationConfig struct {
	Tolerance      float64 `mapstructure:"tolerance" yaml:"tolerance"`
	FractionCutoff float64 `mapstructure:"fraction_cutoff" yaml:"fraction_cutoff"`
}

// OutputConfig selects the export format and directory
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Dir    string `mapstructure:"dir" yaml:"dir"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Rules: RulesConfig{
			CurveCompletenessThreshold: 0.70,
			BrokenCurveThreshold:       0.50,
			LargeStoreThreshold:        8,
			MinimumUnits:               3,
			OversupplyCurves:           3,
		},
		Participation: ParticipationConfig{
			Tolerance:      0.5,
			FractionCutoff: 10,
		},
		DefaultPriority: entities.DefaultPriority,
		Output:          OutputConfig{Format: "text"},
		Log:             LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path and
// STOREALLOC_* environment variables, in increasing precedence.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("rules.curve_completeness_threshold", d.Rules.CurveCompletenessThreshold)
	v.SetDefault("rules.broken_curve_threshold", d.Rules.BrokenCurveThreshold)
	v.SetDefault("rules.large_store_threshold", d.Rules.LargeStoreThreshold)
	v.SetDefault("rules.minimum_units", d.Rules.MinimumUnits)
	v.SetDefault("rules.oversupply_curves", d.Rules.OversupplyCurves)
	v.SetDefault("rules.enforce_large_store_lock", d.Rules.EnforceLargeStoreLock)
	v.SetDefault("participation.tolerance", d.Participation.Tolerance)
	v.SetDefault("participation.fraction_cutoff", d.Participation.FractionCutoff)
	v.SetDefault("default_priority", d.DefaultPriority)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

// Validate checks for out-of-range values
func (c Config) Validate() error {
	r := c.Rules
	if r.CurveCompletenessThreshold <= 0 || r.CurveCompletenessThreshold > 1 {
		return fmt.Errorf("%w: curve_completeness_threshold must be in (0,1], got %.2f",
			ErrInvalidConfig, r.CurveCompletenessThreshold)
	}
	if r.BrokenCurveThreshold <= 0 || r.BrokenCurveThreshold > 1 {
		return fmt.Errorf("%w: broken_curve_threshold must be in (0,1], got %.2f",
			ErrInvalidConfig, r.BrokenCurveThreshold)
	}
	if r.LargeStoreThreshold < 0 || r.LargeStoreThreshold > 100 {
		return fmt.Errorf("%w: large_store_threshold must be in [0,100], got %.2f",
			ErrInvalidConfig, r.LargeStoreThreshold)
	}
	if r.MinimumUnits < 0 {
		return fmt.Errorf("%w: minimum_units must be >= 0, got %d", ErrInvalidConfig, r.MinimumUnits)
	}
	if r.OversupplyCurves < 0 {
		return fmt.Errorf("%w: oversupply_curves must be >= 0, got %d", ErrInvalidConfig, r.OversupplyCurves)
	}
	if c.Participation.Tolerance < 0 {
		return fmt.Errorf("%w: participation tolerance must be >= 0, got %.2f",
			ErrInvalidConfig, c.Participation.Tolerance)
	}
	if c.Participation.FractionCutoff <= 0 {
		return fmt.Errorf("%w: fraction_cutoff must be > 0, got %.2f",
			ErrInvalidConfig, c.Participation.FractionCutoff)
	}
	if c.DefaultPriority <= 0 {
		return fmt.Errorf("%w: default_priority must be > 0, got %d", ErrInvalidConfig, c.DefaultPriority)
	}
	if !validFormat(c.Output.Format) {
		return fmt.Errorf("%w: output format %q not one of %s",
			ErrInvalidConfig, c.Output.Format, strings.Join(Formats, ", "))
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Distribution converts the configuration for the distribution service
func (c Config) Distribution() distribution.Config {
	return distribution.Config{
		Rules: rules.Config{
			CurveCompleteness: c.Rules.CurveCompletenessThreshold,
			BrokenCurve:       c.Rules.BrokenCurveThreshold,
			LargeStore:        decimal.NewFromFloat(c.Rules.LargeStoreThreshold),
			MinimumUnits:      entities.Quantity(c.Rules.MinimumUnits),
		},
		OversupplyCurves:      entities.Quantity(c.Rules.OversupplyCurves),
		EnforceLargeStoreLock: c.Rules.EnforceLargeStoreLock,
	}
}

// Parser converts the configuration into parser options
func (c Config) Parser() parser.Options {
	return parser.Options{
		Tolerance:       decimal.NewFromFloat(c.Participation.Tolerance),
		FractionCutoff:  decimal.NewFromFloat(c.Participation.FractionCutoff),
		DefaultPriority: c.DefaultPriority,
	}
}

// YAML renders the effective configuration
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}
