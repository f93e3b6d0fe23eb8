package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// LargeStoreFlagRule is rule 4: stores above the threshold are marked large
type LargeStoreFlagRule struct {
	threshold decimal.Decimal
}

// NewLargeStoreFlagRule creates rule 4
func NewLargeStoreFlagRule(threshold decimal.Decimal) *LargeStoreFlagRule {
	return &LargeStoreFlagRule{threshold: threshold}
}

func (r *LargeStoreFlagRule) ID() string { return RuleLargeStoreFlag }

func (r *LargeStoreFlagRule) Description() string {
	return "mark stores whose participation exceeds the large-store threshold"
}

// Apply records the large stores on the state
func (r *LargeStoreFlagRule) Apply(state State) (State, []entities.TraceEntry) {
	next := state
	next.LargeStores = state.Participation.LargeStores(r.threshold)

	entries := []entities.TraceEntry{
		entities.NewTrace(RuleLargeStoreFlag,
			fmt.Sprintf("large stores identified: %s", joinOrNone(next.LargeStores)),
			map[string]any{"threshold": r.threshold.String(), "stores": len(next.LargeStores)}),
	}
	for _, store := range next.LargeStores {
		entries = append(entries, entities.NewTrace(RuleLargeStoreFlag,
			fmt.Sprintf("%s marked as large store", store),
			map[string]any{"store": store, "weight": state.Participation.Weight(store).String()}))
	}
	return next, entries
}

// PriorityOrderRule is rule 5: later passes process SKUs by ascending category priority
type PriorityOrderRule struct{}

// NewPriorityOrderRule creates rule 5
func NewPriorityOrderRule() *PriorityOrderRule {
	return &PriorityOrderRule{}
}

func (r *PriorityOrderRule) ID() string { return RulePriorityOrder }

func (r *PriorityOrderRule) Description() string {
	return "process SKUs in ascending category priority for the remaining passes"
}

// Apply reorders SKUs and curves by priority, then category name
func (r *PriorityOrderRule) Apply(state State) (State, []entities.TraceEntry) {
	order := make([]entities.SKU, len(state.Order))
	copy(order, state.Order)
	prioritySort(order, state.Priorities)

	curves := make([]*entities.Curve, len(state.Curves))
	copy(curves, state.Curves)
	sort.SliceStable(curves, func(i, j int) bool {
		pi, pj := state.Priorities.Of(curves[i].Key.Category), state.Priorities.Of(curves[j].Key.Category)
		if pi != pj {
			return pi < pj
		}
		return curves[i].Key.Compare(curves[j].Key) < 0
	})

	next := state
	next.Order = order
	next.CurveOrder = curves

	message := "no SKUs to order"
	context := map[string]any{"skus": len(order)}
	if len(order) > 0 {
		first := order[0].Category
		message = fmt.Sprintf("SKUs ordered by priority: first %s (%d)", first, state.Priorities.Of(first))
		context["first_category"] = first
	}
	return next, []entities.TraceEntry{entities.NewTrace(RulePriorityOrder, message, context)}
}

// MovementEfficiencyRule is rule 6. Fewer, larger movements are preferred when the
// transfer plan is built; the allocation itself is unchanged.
type MovementEfficiencyRule struct{}

// NewMovementEfficiencyRule creates rule 6
func NewMovementEfficiencyRule() *MovementEfficiencyRule {
	return &MovementEfficiencyRule{}
}

func (r *MovementEfficiencyRule) ID() string { return RuleMovementEfficiency }

func (r *MovementEfficiencyRule) Description() string {
	return "prefer fewer, larger movements during transfer planning"
}

// Apply records the movement policy
func (r *MovementEfficiencyRule) Apply(state State) (State, []entities.TraceEntry) {
	return state, []entities.TraceEntry{
		entities.NewTrace(RuleMovementEfficiency,
			"transfer planning fills shortfalls from store excess before warehouse stock", nil),
	}
}

// CategoryPriorityRule is rule 8: an audit of the priority assigned to every SKU
type CategoryPriorityRule struct{}

// NewCategoryPriorityRule creates rule 8
func NewCategoryPriorityRule() *CategoryPriorityRule {
	return &CategoryPriorityRule{}
}

func (r *CategoryPriorityRule) ID() string { return RuleCategoryPriority }

func (r *CategoryPriorityRule) Description() string {
	return "record the priority assigned to every SKU"
}

// Apply traces one entry per priority level, listing its SKUs in processing order
func (r *CategoryPriorityRule) Apply(state State) (State, []entities.TraceEntry) {
	var levels []int
	byLevel := make(map[int][]string)
	for _, sku := range state.Order {
		priority := state.Priorities.Of(sku.Category)
		if _, seen := byLevel[priority]; !seen {
			levels = append(levels, priority)
		}
		byLevel[priority] = append(byLevel[priority], sku.String())
	}
	sort.Ints(levels)

	entries := make([]entities.TraceEntry, 0, len(levels))
	for _, priority := range levels {
		skus := byLevel[priority]
		entries = append(entries, entities.NewTrace(RuleCategoryPriority,
			fmt.Sprintf("priority %d: %d SKUs", priority, len(skus)),
			map[string]any{"priority": priority, "skus": skus}))
	}
	return state, entries
}

// ParticipationSnapshotRule is rule 9: a diagnostic of units per store against weight
type ParticipationSnapshotRule struct{}

// NewParticipationSnapshotRule creates rule 9
func NewParticipationSnapshotRule() *ParticipationSnapshotRule {
	return &ParticipationSnapshotRule{}
}

func (r *ParticipationSnapshotRule) ID() string { return RuleParticipationReport }

func (r *ParticipationSnapshotRule) Description() string {
	return "snapshot units per store against participation weight"
}

// Apply traces one entry per store in participation order
func (r *ParticipationSnapshotRule) Apply(state State) (State, []entities.TraceEntry) {
	total := state.Matrix.GrandTotal()
	entries := make([]entities.TraceEntry, 0, state.Participation.Len())

	for _, w := range state.Participation.Weights() {
		units := state.Matrix.StoreTotal(w.Store)
		share := decimal.Zero
		if total > 0 {
			share = decimal.NewFromInt(int64(units)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(total)))
		}
		entries = append(entries, entities.NewTrace(RuleParticipationReport,
			fmt.Sprintf("%s holds %d units (%s%% of distributed, weight %s%%)", w.Store, units, share.StringFixed(2), w.Weight.StringFixed(2)),
			map[string]any{"store": w.Store, "units": int64(units), "share": share.StringFixed(2), "weight": w.Weight.String()}))
	}
	return state, entries
}

// MicroAllocationRule is rule 11: allocations below the minimum are withdrawn from
// every store except the top store and granted to it
type MicroAllocationRule struct {
	minimum entities.Quantity
}

// NewMicroAllocationRule creates rule 11
func NewMicroAllocationRule(minimum entities.Quantity) *MicroAllocationRule {
	return &MicroAllocationRule{minimum: minimum}
}

func (r *MicroAllocationRule) ID() string { return RuleMicroAllocation }

func (r *MicroAllocationRule) Description() string {
	return "withdraw allocations below the minimum units and grant them to the top store"
}

// Apply removes micro allocations in priority order
func (r *MicroAllocationRule) Apply(state State) (State, []entities.TraceEntry) {
	matrix := state.Matrix.Clone()
	var entries []entities.TraceEntry
	var surplus []Surplus

	for _, sku := range state.Order {
		for _, store := range state.Participation.Stores() {
			if store == state.Top {
				continue
			}
			units := matrix.Get(sku, store)
			if units <= 0 || units >= r.minimum {
				continue
			}
			entry, moved := moveToStore(matrix, RuleMicroAllocation, sku, store, state.Top, units, ReasonMicroAllocation)
			entries = append(entries, entry)
			if moved {
				surplus = append(surplus, Surplus{Rule: RuleMicroAllocation, SKU: sku, From: store, Units: units})
			}
		}
	}

	if len(surplus) > 0 {
		var total entities.Quantity
		for _, s := range surplus {
			total += s.Units
		}
		entries = append(entries, entities.NewTrace(RuleMicroAllocation,
			fmt.Sprintf("eliminated %d micro allocations below %d units (%d units to %s)", len(surplus), r.minimum, total, state.Top),
			map[string]any{"allocations": len(surplus), "units": int64(total), "destination": state.Top}))
	}

	next := state.withSurplus(surplus)
	next.Matrix = matrix
	return next, entries
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
