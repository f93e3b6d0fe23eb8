package rules

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/domain/services"
)

// Rule ids, in pipeline order
const (
	RuleBaseApportionment    = "R1_BASE_APPORTIONMENT"
	RuleCurveCompleteness    = "R2_CURVE_COMPLETENESS"
	RuleSurplusToTopStore    = "R3_SURPLUS_TO_TOP_STORE"
	RuleLargeStoreFlag       = "R4_LARGE_STORE_FLAG"
	RulePriorityOrder        = "R5_PRIORITY_ORDER"
	RuleMovementEfficiency   = "R6_MOVEMENT_EFFICIENCY"
	RuleBrokenCurveCleanup   = "R7_BROKEN_CURVE_CLEANUP"
	RuleCategoryPriority     = "R8_CATEGORY_PRIORITY"
	RuleParticipationReport  = "R9_PARTICIPATION_SNAPSHOT"
	RuleMinimumCompleteCurve = "R10_MINIMUM_COMPLETE_CURVE"
	RuleMicroAllocation      = "R11_MICRO_ALLOCATION"
	RuleTopStoreExcess       = "R12_TOP_STORE_EXCESS"
)

// Reason codes recorded on grants; they become transfer reasons downstream
const (
	ReasonBaseApportionment    = "base apportionment"
	ReasonIncompleteCurve      = "surplus from incomplete curve"
	ReasonBrokenCurve          = "surplus from broken curve cleanup"
	ReasonMinimumCompleteCurve = "minimum complete curve"
	ReasonMicroAllocation      = "surplus from micro-allocation"
	ReasonTopStoreExcess       = "top store excess"
)

// Config holds the thresholds used by the rule passes
type Config struct {
	// CurveCompleteness withdraws a store's curve when fewer than this fraction of sizes are present
	CurveCompleteness float64
	// BrokenCurve is the second, independent cleanup threshold
	BrokenCurve float64
	// LargeStore is the participation percentage above which a store is large
	LargeStore decimal.Decimal
	// MinimumUnits is the smallest per-store, per-SKU allocation kept outside the top store
	MinimumUnits entities.Quantity
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		CurveCompleteness: 0.70,
		BrokenCurve:       0.50,
		LargeStore:        decimal.NewFromInt(8),
		MinimumUnits:      3,
	}
}

// Surplus records units withdrawn from one store and granted to the top store
type Surplus struct {
	Rule  string
	SKU   entities.SKU
	From  string
	Units entities.Quantity
}

// State is the snapshot threaded through the rule passes. Passes never mutate the
// snapshot they receive; a pass that moves units works on a cloned matrix.
type State struct {
	Stock         entities.ConsolidatedStock
	Curves        []*entities.Curve
	Participation *entities.Participation
	Priorities    *entities.Priorities

	Matrix *entities.AllocationMatrix
	Base   map[entities.SKU]services.Apportionment

	// Order is the SKU processing order; CurveOrder follows it at curve level
	Order      []entities.SKU
	CurveOrder []*entities.Curve

	Top         string
	Second      string
	LargeStores []string
	Surplus     []Surplus
}

// NewState creates the initial snapshot with an empty allocation matrix
func NewState(
	stock entities.ConsolidatedStock,
	curves []*entities.Curve,
	participation *entities.Participation,
	priorities *entities.Priorities,
) State {
	top, _ := participation.Top()
	second, _ := participation.Second()
	return State{
		Stock:         stock,
		Curves:        curves,
		Participation: participation,
		Priorities:    priorities,
		Matrix:        entities.NewAllocationMatrix(),
		Base:          make(map[entities.SKU]services.Apportionment),
		Order:         stock.SortedSKUs(),
		CurveOrder:    curves,
		Top:           top,
		Second:        second,
	}
}

// IsLarge reports whether the store was flagged large
func (s State) IsLarge(store string) bool {
	for _, large := range s.LargeStores {
		if large == store {
			return true
		}
	}
	return false
}

// withSurplus returns a copy of the state with extra surplus records appended
func (s State) withSurplus(extra []Surplus) State {
	if len(extra) == 0 {
		return s
	}
	merged := make([]Surplus, 0, len(s.Surplus)+len(extra))
	merged = append(merged, s.Surplus...)
	s.Surplus = append(merged, extra...)
	return s
}

// Rule is one pass of the engine
type Rule interface {
	ID() string
	Description() string
	Apply(state State) (State, []entities.TraceEntry)
}

// PassReport summarises one executed pass
type PassReport struct {
	Rule         string
	Description  string
	MovedUnits   entities.Quantity
	Conserved    bool
	Violations   int
	TraceEntries int
}

// prioritySort orders SKUs by category priority, then category name, then the SKU itself
func prioritySort(skus []entities.SKU, priorities *entities.Priorities) {
	sort.SliceStable(skus, func(i, j int) bool {
		pi, pj := priorities.Of(skus[i].Category), priorities.Of(skus[j].Category)
		if pi != pj {
			return pi < pj
		}
		return skus[i].Compare(skus[j]) < 0
	})
}
