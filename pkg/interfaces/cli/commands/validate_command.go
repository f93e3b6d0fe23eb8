package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/vsinha/storealloc/pkg/infrastructure/config"
	"github.com/vsinha/storealloc/pkg/infrastructure/loader"
	"github.com/vsinha/storealloc/pkg/infrastructure/parser"
)

// ValidateCommand parses the inputs and reports what was read, without distributing
type ValidateCommand struct {
	config Config
}

// NewValidateCommand creates a new validate command
func NewValidateCommand(config Config) *ValidateCommand {
	return &ValidateCommand{config: config}
}

// Execute loads and reports the inputs
func (c *ValidateCommand) Execute(ctx context.Context) error {
	settings, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	sources, err := c.config.Sources()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	loaded, err := loader.NewLoader(parser.NewParser(settings.Parser()), c.config.logger()).LoadAll(ctx, sources)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	w, _ := c.config.streams()
	fmt.Fprintf(w, "✅ Inputs are valid\n")
	fmt.Fprintf(w, "  Stock: %s (%d rows, %d valid)\n", sources.Stock, loaded.StockReport.Rows, loaded.StockReport.Valid)

	reasons := make([]string, 0, len(loaded.StockReport.Discarded))
	for reason := range loaded.StockReport.Discarded {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "    discarded %s: %d\n", reason, loaded.StockReport.Discarded[reason])
	}

	report := loaded.ParticipationReport
	fmt.Fprintf(w, "  Participation: %s (%d stores, sum %s%%", sources.Participation, report.Stores, report.Sum.StringFixed(2))
	if report.Scaled {
		fmt.Fprintf(w, ", scaled from fractions")
	}
	fmt.Fprintf(w, ")\n")
	for _, sw := range loaded.Participation.Weights() {
		fmt.Fprintf(w, "    %-15s %s%%\n", sw.Store, sw.Weight.StringFixed(2))
	}

	if sources.Priority != "" {
		fmt.Fprintf(w, "  Priority: %s (%d categories)\n", sources.Priority, loaded.Priorities.Len())
	} else {
		fmt.Fprintf(w, "  Priority: none, default %d for every category\n", settings.DefaultPriority)
	}
	return nil
}
