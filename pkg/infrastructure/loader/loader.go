package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/infrastructure/parser"
	"github.com/vsinha/storealloc/pkg/infrastructure/tabular"
)

// ErrMissingInput is returned when a required input file is not given or not found
var ErrMissingInput = errors.New("missing input file")

// Sources names the input files; Priority is optional
type Sources struct {
	Stock         string
	Participation string
	Priority      string
}

var extensions = []string{".csv", ".xlsx", ".xlsm", ".txt"}

// ResolveScenario finds stock, participation and the optional priority file in dir
func ResolveScenario(dir string) (Sources, error) {
	find := func(base string) string {
		for _, ext := range extensions {
			path := filepath.Join(dir, base+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		return ""
	}

	sources := Sources{
		Stock:         find("stock"),
		Participation: find("participation"),
		Priority:      find("priority"),
	}
	if sources.Stock == "" {
		return sources, fmt.Errorf("%w: no stock file in %s", ErrMissingInput, dir)
	}
	if sources.Participation == "" {
		return sources, fmt.Errorf("%w: no participation file in %s", ErrMissingInput, dir)
	}
	return sources, nil
}

// Loaded is the typed content of one set of input files
type Loaded struct {
	Stock               []entities.StockRecord
	StockReport         parser.StockReport
	Participation       *entities.Participation
	ParticipationReport parser.ParticipationReport
	Priorities          *entities.Priorities
	// Notes are the parser trace entries, in stock, participation, priority order
	Notes []entities.TraceEntry
}

// Loader reads and parses input files
type Loader struct {
	parser *parser.Parser
	logger *zap.Logger
}

// NewLoader creates a loader
func NewLoader(p *parser.Parser, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{parser: p, logger: logger}
}

// LoadAll reads the three inputs concurrently. The first failure cancels the others.
func (l *Loader) LoadAll(ctx context.Context, sources Sources) (*Loaded, error) {
	if sources.Stock == "" || sources.Participation == "" {
		return nil, fmt.Errorf("%w: stock and participation files are required", ErrMissingInput)
	}

	loaded := &Loaded{}
	var priorityNote *entities.TraceEntry

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		table, err := l.read(egCtx, sources.Stock, parser.KindStock)
		if err != nil {
			return err
		}
		loaded.Stock, loaded.StockReport, err = l.parser.ParseStock(table)
		return err
	})

	eg.Go(func() error {
		table, err := l.read(egCtx, sources.Participation, parser.KindParticipation)
		if err != nil {
			return err
		}
		loaded.Participation, loaded.ParticipationReport, err = l.parser.ParseParticipation(table)
		return err
	})

	if sources.Priority != "" {
		eg.Go(func() error {
			table, err := l.read(egCtx, sources.Priority, parser.KindPriority)
			if err != nil {
				return err
			}
			loaded.Priorities, err = l.parser.ParsePriorities(table)
			if err == nil {
				note := entities.NewTrace(parser.Stage,
					fmt.Sprintf("priorities parsed: %d categories", loaded.Priorities.Len()),
					map[string]any{"categories": loaded.Priorities.Len()})
				priorityNote = &note
			}
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if loaded.Priorities == nil {
		loaded.Priorities = l.parser.DefaultPriorities()
		note := entities.NewTrace(parser.Stage, "no priority file: every category defaults to the fallback priority",
			map[string]any{"default_priority": loaded.Priorities.Of("")})
		priorityNote = &note
	}

	loaded.Notes = []entities.TraceEntry{
		loaded.StockReport.TraceEntry(),
		loaded.ParticipationReport.TraceEntry(),
		*priorityNote,
	}

	l.logger.Info("inputs loaded",
		zap.Int("stock_rows", loaded.StockReport.Valid),
		zap.Int("stores", loaded.Participation.Len()),
		zap.Int("priorities", loaded.Priorities.Len()),
	)
	return loaded, nil
}

// read loads a table and rejects it when its header identifies a different input
func (l *Loader) read(ctx context.Context, path string, expected parser.Kind) (*tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := tabular.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if kind := parser.DetectKind(table.Header); kind != parser.KindUnknown && kind != expected {
		return nil, &parser.ParseError{
			Table: table.Name,
			Err:   fmt.Errorf("%w: expected %s, got %s", parser.ErrWrongTableKind, expected, kind),
		}
	}
	l.logger.Debug("table read", zap.String("path", path), zap.Int("rows", len(table.Rows)))
	return table, nil
}
