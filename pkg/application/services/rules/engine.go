package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/domain/services"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the diagnostics logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRules replaces the standard pass list
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// Engine runs the ordered rule passes and checks conservation after every pass
type Engine struct {
	config Config
	rules  []Rule
	logger *zap.Logger
}

// NewEngine creates an engine running the standard twelve passes
func NewEngine(config Config, opts ...Option) *Engine {
	e := &Engine{
		config: config,
		rules:  StandardRules(config, services.NewApportioner()),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StandardRules returns passes 1 through 12 in their required order
func StandardRules(config Config, apportioner *services.Apportioner) []Rule {
	return []Rule{
		NewBaseApportionmentRule(apportioner),
		NewCurveCompletenessRule(config.CurveCompleteness),
		NewSurplusToTopStoreRule(),
		NewLargeStoreFlagRule(config.LargeStore),
		NewPriorityOrderRule(),
		NewMovementEfficiencyRule(),
		NewBrokenCurveCleanupRule(config.BrokenCurve, config.CurveCompleteness),
		NewCategoryPriorityRule(),
		NewParticipationSnapshotRule(),
		NewMinimumCompleteCurveRule(),
		NewMicroAllocationRule(config.MinimumUnits),
		NewTopStoreExcessRule(),
	}
}

// Rules returns the configured passes
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Run applies every pass in order, appending their entries to the trace log.
// A pass that breaks conservation is reported, not fatal: the run continues and
// the violation is recorded as an error-level trace entry.
func (e *Engine) Run(state State, trace *entities.TraceLog) (State, []PassReport) {
	reports := make([]PassReport, 0, len(e.rules))

	for _, rule := range e.rules {
		next, entries := rule.Apply(state)
		trace.AppendAll(entries)

		violations := next.Matrix.CheckConservation(next.Stock)
		report := PassReport{
			Rule:         rule.ID(),
			Description:  rule.Description(),
			MovedUnits:   state.Matrix.MovedUnits(next.Matrix),
			Conserved:    len(violations) == 0,
			Violations:   len(violations),
			TraceEntries: len(entries),
		}

		for _, v := range violations {
			sku := v.SKU
			trace.Append(entities.TraceEntry{
				Rule:    rule.ID(),
				Level:   entities.TraceError,
				Message: fmt.Sprintf("conservation violated for %s: expected %d units, allocated %d", v.SKU, v.Expected, v.Allocated),
				SKU:     &sku,
				Context: map[string]any{"expected": int64(v.Expected), "allocated": int64(v.Allocated)},
			})
		}

		e.logger.Debug("rule pass applied",
			zap.String("rule", report.Rule),
			zap.Int64("moved_units", int64(report.MovedUnits)),
			zap.Bool("conserved", report.Conserved),
			zap.Int("trace_entries", report.TraceEntries),
		)
		if !report.Conserved {
			e.logger.Error("conservation violated", zap.String("rule", report.Rule), zap.Int("skus", report.Violations))
		}

		reports = append(reports, report)
		state = next
	}

	return state, reports
}
