package commands

import (
	"errors"
	"fmt"

	"github.com/vsinha/storealloc/pkg/infrastructure/loader"
)

// ErrNoInputs is returned when neither a scenario directory nor the input files are given
var ErrNoInputs = errors.New("must specify either --scenario directory or --stock and --participation files")

// Inputs names the input files shared by run and validate
type Inputs struct {
	ScenarioDir       string
	StockFile         string
	ParticipationFile string
	PriorityFile      string
}

// Sources resolves the input files. Explicit files override the scenario directory.
func (in Inputs) Sources() (loader.Sources, error) {
	if in.ScenarioDir == "" && (in.StockFile == "" || in.ParticipationFile == "") {
		return loader.Sources{}, ErrNoInputs
	}

	var sources loader.Sources
	if in.ScenarioDir != "" {
		resolved, err := loader.ResolveScenario(in.ScenarioDir)
		if err != nil {
			return loader.Sources{}, fmt.Errorf("failed to resolve scenario: %w", err)
		}
		sources = resolved
	}
	if in.StockFile != "" {
		sources.Stock = in.StockFile
	}
	if in.ParticipationFile != "" {
		sources.Participation = in.ParticipationFile
	}
	if in.PriorityFile != "" {
		sources.Priority = in.PriorityFile
	}
	return sources, nil
}
