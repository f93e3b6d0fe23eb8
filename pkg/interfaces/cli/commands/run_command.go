package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/storealloc/pkg/application/services/distribution"
	"github.com/vsinha/storealloc/pkg/infrastructure/config"
	"github.com/vsinha/storealloc/pkg/infrastructure/loader"
	"github.com/vsinha/storealloc/pkg/infrastructure/metrics"
	"github.com/vsinha/storealloc/pkg/infrastructure/parser"
	"github.com/vsinha/storealloc/pkg/interfaces/cli/output"
)

// ErrChecksumMismatch is returned in strict mode when units were not conserved
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Config holds configuration for the run command
type Config struct {
	Inputs
	ConfigFile  string
	OutputDir   string
	Format      string
	MetricsFile string
	Verbose     bool
	Strict      bool

	Logger *zap.Logger
	// Stdout receives the formatted result, Stderr the status lines
	Stdout io.Writer
	Stderr io.Writer
}

func (c Config) streams() (io.Writer, io.Writer) {
	stdout, stderr := c.Stdout, c.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// RunCommand loads the inputs, distributes the stock and writes the result
type RunCommand struct {
	config Config
}

// NewRunCommand creates a new run command with the given configuration
func NewRunCommand(config Config) *RunCommand {
	return &RunCommand{config: config}
}

// Execute runs the distribution
func (c *RunCommand) Execute(ctx context.Context) error {
	settings, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	format := settings.Output.Format
	if c.config.Format != "" {
		format = c.config.Format
	}
	outputDir := settings.Output.Dir
	if c.config.OutputDir != "" {
		outputDir = c.config.OutputDir
	}

	sources, err := c.config.Sources()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	logger := c.config.logger()
	stdout, stderr := c.config.streams()

	loaded, err := loader.NewLoader(parser.NewParser(settings.Parser()), logger).LoadAll(ctx, sources)
	if err != nil {
		return fmt.Errorf("error loading inputs: %w", err)
	}

	var recorder distribution.MetricsRecorder = metrics.NewNop()
	var prom *metrics.Prometheus
	if c.config.MetricsFile != "" {
		prom = metrics.NewPrometheus("")
		recorder = prom
	}

	service := distribution.NewService(settings.Distribution(),
		distribution.WithLogger(logger),
		distribution.WithMetrics(recorder),
	)

	startTime := time.Now()
	result, err := service.Distribute(ctx, distribution.Input{
		Stock:         loaded.Stock,
		Participation: loaded.Participation,
		Priorities:    loaded.Priorities,
		Notes:         loaded.Notes,
	})
	elapsed := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error running distribution: %w", err)
	}

	err = output.Generate(result, output.Config{
		Format:    format,
		OutputDir: outputDir,
		Verbose:   c.config.Verbose,
		Elapsed:   elapsed,
		Writer:    stdout,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if prom != nil {
		if err := prom.WriteTextfile(c.config.MetricsFile); err != nil {
			return err
		}
	}

	fingerprint, err := result.Fingerprint()
	if err != nil {
		return err
	}
	status := "OK"
	if !result.CheckSum.Valid {
		status = "MISMATCH"
	}
	fmt.Fprintf(stderr, "checksum %s: original %d, distributed %d\n",
		status, result.CheckSum.Original, result.CheckSum.Distributed)
	fmt.Fprintf(stderr, "fingerprint %s\n", fingerprint)

	if c.config.Strict && !result.CheckSum.Valid {
		return fmt.Errorf("%w: difference %d", ErrChecksumMismatch, result.CheckSum.Difference)
	}
	return nil
}
