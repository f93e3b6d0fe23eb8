package distribution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/storealloc/pkg/application/dto"
	"github.com/vsinha/storealloc/pkg/application/services/rules"
	"github.com/vsinha/storealloc/pkg/application/services/transfer"
	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/domain/services"
)

// Trace stage ids written by the service
const (
	StageConsolidation = "CONSOLIDATION"
	StageCurves        = "CURVES"
	StageChecksum      = "CHECKSUM"
)

var (
	// ErrNoStock is returned when no stock records are supplied
	ErrNoStock = errors.New("no stock records")
	// ErrNoStores is returned when no store participates
	ErrNoStores = errors.New("no participating stores")
)

// Config holds the tunables of a distribution run
type Config struct {
	Rules rules.Config
	// OversupplyCurves is the number of complete curves a store may hold before it is oversupplied
	OversupplyCurves entities.Quantity
	// EnforceLargeStoreLock stops large stores from donating excess during transfer planning
	EnforceLargeStoreLock bool
}

// DefaultConfig returns the standard configuration
func DefaultConfig() Config {
	return Config{
		Rules:            rules.DefaultConfig(),
		OversupplyCurves: 3,
	}
}

// MetricsRecorder receives run metrics
type MetricsRecorder interface {
	ObserveRun(duration time.Duration, valid bool)
	ObservePass(rule string, movedUnits int64, conserved bool)
	ObserveTransfers(count int, units int64)
	ObserveUnits(original, distributed int64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(time.Duration, bool)  {}
func (nopRecorder) ObservePass(string, int64, bool) {}
func (nopRecorder) ObserveTransfers(int, int64)     {}
func (nopRecorder) ObserveUnits(int64, int64)       {}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the diagnostics logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// Input is one invocation's parsed data
type Input struct {
	Stock         []entities.StockRecord
	Participation *entities.Participation
	Priorities    *entities.Priorities
	// Notes are trace entries produced before the run, such as parser reports
	Notes []entities.TraceEntry
}

// Service runs the full distribution pipeline
type Service struct {
	config       Config
	consolidator *services.Consolidator
	detector     *services.CurveDetector
	engine       *rules.Engine
	planner      *transfer.Planner
	validator    *services.Validator
	analyzer     *services.StoreAnalyzer
	logger       *zap.Logger
	metrics      MetricsRecorder
}

// NewService creates a distribution service
func NewService(config Config, opts ...Option) *Service {
	s := &Service{
		config:  config,
		logger:  zap.NewNop(),
		metrics: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.consolidator = services.NewConsolidator()
	s.detector = services.NewCurveDetector()
	s.engine = rules.NewEngine(config.Rules, rules.WithLogger(s.logger.Named("rules")))
	s.planner = transfer.NewPlanner(
		transfer.WithLargeStoreLock(config.EnforceLargeStoreLock),
		transfer.WithLogger(s.logger.Named("transfer")),
	)
	s.validator = services.NewValidator(config.Rules.LargeStore)
	s.analyzer = services.NewStoreAnalyzer(config.OversupplyCurves)
	return s
}

// Distribute runs consolidation, curve detection, the rule passes, transfer planning and
// validation. Conservation failures do not produce an error: they surface as an invalid
// checksum and error-level trace entries.
func (s *Service) Distribute(ctx context.Context, in Input) (*dto.DistributionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(in.Stock) == 0 {
		return nil, ErrNoStock
	}
	if in.Participation == nil || in.Participation.Len() == 0 {
		return nil, ErrNoStores
	}
	priorities := in.Priorities
	if priorities == nil {
		priorities = entities.NewPriorities(nil, entities.DefaultPriority)
	}

	start := time.Now()
	trace := entities.NewTraceLog()
	trace.AppendAll(in.Notes)

	stock := s.consolidator.Consolidate(in.Stock)
	multiWarehouse := 0
	for _, c := range stock {
		if len(c.Warehouses) > 1 {
			multiWarehouse++
		}
	}
	trace.Record(StageConsolidation,
		fmt.Sprintf("consolidated %d records into %d SKUs (%d held in several warehouses)", len(in.Stock), len(stock), multiWarehouse),
		map[string]any{"records": len(in.Stock), "skus": len(stock), "multi_warehouse": multiWarehouse, "units": int64(stock.TotalQuantity())})

	curves := s.detector.Detect(stock)
	eligible := 0
	for _, c := range curves {
		if c.Eligible() {
			eligible++
		}
	}
	trace.Record(StageCurves,
		fmt.Sprintf("detected %d curves (%d with more than one size)", len(curves), eligible),
		map[string]any{"curves": len(curves), "eligible": eligible})

	final, passes := s.engine.Run(rules.NewState(stock, curves, in.Participation, priorities), trace)
	for _, p := range passes {
		s.metrics.ObservePass(p.Rule, int64(p.MovedUnits), p.Conserved)
	}

	transfers := s.planner.Plan(transfer.Input{
		Matrix:        final.Matrix,
		Stock:         stock,
		Order:         final.Order,
		Participation: in.Participation,
		Priorities:    priorities,
		LargeStores:   final.LargeStores,
		Trace:         trace,
	})

	report := s.validator.Validate(stock, final.Matrix, in.Participation)
	checksumContext := map[string]any{
		"original":    int64(report.CheckSum.Original),
		"distributed": int64(report.CheckSum.Distributed),
		"difference":  int64(report.CheckSum.Difference),
	}
	if report.CheckSum.Valid {
		trace.Record(StageChecksum,
			fmt.Sprintf("OK: original %d, distributed %d", report.CheckSum.Original, report.CheckSum.Distributed),
			checksumContext)
	} else {
		trace.Append(entities.NewError(StageChecksum,
			fmt.Sprintf("MISMATCH: original %d, distributed %d", report.CheckSum.Original, report.CheckSum.Distributed),
			checksumContext))
	}

	analyses := s.analyzer.Analyze(final.Matrix, curves, in.Participation)
	result := assemble(final, stock, priorities, transfers, report, analyses, passes, trace)

	s.metrics.ObserveUnits(int64(report.CheckSum.Original), int64(report.CheckSum.Distributed))
	s.metrics.ObserveTransfers(len(result.Transfers), result.TransfersTotal())
	s.metrics.ObserveRun(time.Since(start), report.CheckSum.Valid)

	s.logger.Info("distribution completed",
		zap.Int("skus", len(stock)),
		zap.Int("stores", in.Participation.Len()),
		zap.Int("transfers", len(result.Transfers)),
		zap.Bool("checksum_valid", report.CheckSum.Valid),
		zap.Int("trace_entries", trace.Len()),
	)
	if !report.CheckSum.Valid {
		s.logger.Error("distribution checksum mismatch",
			zap.Int64("original", int64(report.CheckSum.Original)),
			zap.Int64("distributed", int64(report.CheckSum.Distributed)))
	}

	return result, nil
}

func assemble(
	final rules.State,
	stock entities.ConsolidatedStock,
	priorities *entities.Priorities,
	transfers []entities.Transfer,
	report *services.ValidationReport,
	analyses []services.StoreAnalysis,
	passes []rules.PassReport,
	trace *entities.TraceLog,
) *dto.DistributionResult {
	result := &dto.DistributionResult{
		AllocationDetail: make([]dto.AllocationDetail, 0),
		StoreSummary:     make([]dto.StoreSummary, 0, len(report.Shares)),
		PerStoreAnalysis: make([]dto.StoreAnalysis, 0, len(analyses)),
		Transfers:        make([]dto.Transfer, 0, len(transfers)),
		TraceLog:         make([]dto.TraceEntry, 0, trace.Len()),
		Passes:           make([]dto.PassReport, 0, len(passes)),
		Curves:           make([]dto.Curve, 0, len(final.Curves)),
		TopStore:         final.Top,
		SecondStore:      final.Second,
		LargeStores:      append(make([]string, 0, len(final.LargeStores)), final.LargeStores...),
		CheckSum: dto.CheckSum{
			Original:    int64(report.CheckSum.Original),
			Distributed: int64(report.CheckSum.Distributed),
			Difference:  int64(report.CheckSum.Difference),
			Valid:       report.CheckSum.Valid,
		},
	}

	for _, sku := range final.Order {
		consolidated := stock[sku]
		base := final.Base[sku]
		for _, share := range base.Shares {
			units := final.Matrix.Get(sku, share.Store)
			if units <= 0 {
				continue
			}
			result.AllocationDetail = append(result.AllocationDetail, dto.AllocationDetail{
				SKU:        sku.String(),
				Category:   sku.Category,
				Color:      sku.Color,
				ColorName:  consolidated.ColorName,
				Size:       sku.Size,
				Store:      share.Store,
				Units:      int64(units),
				BaseUnits:  int64(share.Units),
				ExactShare: share.Exact,
				Residue:    share.Remainder,
				Adjusted:   units != share.Units,
				Warehouses: strings.Join(consolidated.WarehouseNames(), ", "),
				Origin:     consolidated.Origin,
				Season:     consolidated.Season,
				Priority:   priorities.Of(sku.Category),
			})
		}
	}

	for _, share := range report.Shares {
		result.StoreSummary = append(result.StoreSummary, dto.StoreSummary{
			Store:         share.Store,
			TotalUnits:    int64(share.Units),
			ExpectedShare: share.Expected,
			RealShare:     share.Observed,
			Deviation:     share.Deviation,
			Large:         final.IsLarge(share.Store),
		})
	}

	for _, a := range analyses {
		result.PerStoreAnalysis = append(result.PerStoreAnalysis, dto.StoreAnalysis{
			Store:            a.Store,
			ShareWeight:      a.ShareWeight,
			Stock:            int64(a.Stock),
			CompleteCurves:   a.CompleteCurves,
			IncompleteCurves: a.IncompleteCurves,
			IsOversupplied:   a.Oversupplied,
			SuggestedAction:  a.SuggestedAction,
		})
	}

	for _, t := range transfers {
		result.Transfers = append(result.Transfers, dto.Transfer{
			SKU:         t.SKU.String(),
			Category:    t.SKU.Category,
			Size:        t.Size,
			Color:       t.Color,
			Origin:      t.Origin,
			Source:      t.Source.String(),
			Destination: t.Destination,
			Units:       int64(t.Units),
			Reason:      t.Reason,
			Priority:    t.Priority,
			Season:      t.Season,
		})
	}

	for _, e := range trace.Entries() {
		entry := dto.TraceEntry{
			Seq:     e.Seq,
			Rule:    e.Rule,
			Level:   e.Level.String(),
			Message: e.Message,
			Store:   e.Store,
			Reason:  e.Reason,
			Context: e.Context,
		}
		if e.SKU != nil {
			entry.SKU = e.SKU.String()
		}
		result.TraceLog = append(result.TraceLog, entry)
	}

	for _, p := range passes {
		result.Passes = append(result.Passes, dto.PassReport{
			Rule:         p.Rule,
			Description:  p.Description,
			MovedUnits:   int64(p.MovedUnits),
			Conserved:    p.Conserved,
			Violations:   p.Violations,
			TraceEntries: p.TraceEntries,
		})
	}

	for _, c := range final.Curves {
		result.Curves = append(result.Curves, dto.Curve{
			Category:      c.Key.Category,
			Color:         c.Key.Color,
			ColorName:     c.ColorName,
			Sizes:         append([]string(nil), c.Sizes...),
			TotalQuantity: int64(c.TotalQuantity),
			Eligible:      c.Eligible(),
		})
	}

	return result
}
