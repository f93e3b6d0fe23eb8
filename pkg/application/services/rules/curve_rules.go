package rules

import (
	"fmt"
	"strconv"

	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// curveCleanup withdraws curves that are present below a threshold and grants the
// freed units to the top store. Rules 2 and 7 share this shape.
type curveCleanup struct {
	id          string
	description string
	threshold   float64
	reason      string
	flagPartial bool
}

func (c *curveCleanup) apply(state State) (State, []entities.TraceEntry) {
	matrix := state.Matrix.Clone()
	var entries []entities.TraceEntry
	var surplus []Surplus

	for _, curve := range state.CurveOrder {
		if !curve.Eligible() {
			continue
		}
		for _, store := range state.Participation.Stores() {
			present := curve.PresentSizes(matrix, store)
			fraction := float64(len(present)) / float64(len(curve.Sizes))
			if fraction <= 0 || fraction >= 1 {
				continue
			}

			context := map[string]any{
				"store":         store,
				"curve":         curve.Key.String(),
				"present_sizes": len(present),
				"total_sizes":   len(curve.Sizes),
			}
			if c.flagPartial {
				entries = append(entries, entities.NewTrace(c.id,
					fmt.Sprintf("incomplete curve %s at %s (%s%%)", curve.Key, store, strconv.FormatFloat(fraction*100, 'f', 0, 64)),
					context))
			}
			if fraction >= c.threshold {
				continue
			}
			if store == state.Top {
				entries = append(entries, entities.NewTrace(c.id,
					fmt.Sprintf("top store %s keeps incomplete curve %s", store, curve.Key), context))
				continue
			}

			for _, size := range present {
				sku := curve.SKUFor(size)
				units := matrix.Get(sku, store)
				entry, moved := moveToStore(matrix, c.id, sku, store, state.Top, units, c.reason)
				entries = append(entries, entry)
				if moved {
					surplus = append(surplus, Surplus{Rule: c.id, SKU: sku, From: store, Units: units})
				}
			}
		}
	}

	if len(surplus) > 0 {
		var total entities.Quantity
		for _, s := range surplus {
			total += s.Units
		}
		entries = append(entries, entities.NewTrace(c.id,
			fmt.Sprintf("redistributed %d units in %d adjustments to %s", total, len(surplus), state.Top),
			map[string]any{"units": int64(total), "adjustments": len(surplus), "destination": state.Top}))
	}

	next := state.withSurplus(surplus)
	next.Matrix = matrix
	return next, entries
}

// moveToStore moves units and returns the grant entry, or an error entry when the move is impossible
func moveToStore(matrix *entities.AllocationMatrix, rule string, sku entities.SKU, from, to string, units entities.Quantity, reason string) (entities.TraceEntry, bool) {
	if err := matrix.Move(sku, from, to, units); err != nil {
		return entities.NewError(rule, err.Error(), map[string]any{"sku": sku.String(), "from": from, "to": to}), false
	}
	return entities.NewGrant(rule, sku, to, reason,
		fmt.Sprintf("moved %d units of %s from %s to %s", units, sku, from, to),
		map[string]any{"from": from, "units": int64(units)}), true
}

// CurveCompletenessRule is rule 2
type CurveCompletenessRule struct {
	cleanup curveCleanup
}

// NewCurveCompletenessRule creates rule 2 with its present-fraction threshold
func NewCurveCompletenessRule(threshold float64) *CurveCompletenessRule {
	return &CurveCompletenessRule{cleanup: curveCleanup{
		id:          RuleCurveCompleteness,
		description: "flag incomplete curves and withdraw those below the completeness threshold",
		threshold:   threshold,
		reason:      ReasonIncompleteCurve,
		flagPartial: true,
	}}
}

func (r *CurveCompletenessRule) ID() string          { return r.cleanup.id }
func (r *CurveCompletenessRule) Description() string { return r.cleanup.description }

// Apply flags and withdraws incomplete curves
func (r *CurveCompletenessRule) Apply(state State) (State, []entities.TraceEntry) {
	return r.cleanup.apply(state)
}

// BrokenCurveCleanupRule is rule 7. Its threshold is independent of rule 2's; when it
// does not exceed rule 2's threshold the pass can only act on curves rule 2 left at
// the top store, and the overlap is noted in the trace.
type BrokenCurveCleanupRule struct {
	cleanup               curveCleanup
	completenessThreshold float64
}

// NewBrokenCurveCleanupRule creates rule 7
func NewBrokenCurveCleanupRule(threshold, completenessThreshold float64) *BrokenCurveCleanupRule {
	return &BrokenCurveCleanupRule{
		cleanup: curveCleanup{
			id:          RuleBrokenCurveCleanup,
			description: "withdraw broken curves below the cleanup threshold",
			threshold:   threshold,
			reason:      ReasonBrokenCurve,
		},
		completenessThreshold: completenessThreshold,
	}
}

func (r *BrokenCurveCleanupRule) ID() string          { return r.cleanup.id }
func (r *BrokenCurveCleanupRule) Description() string { return r.cleanup.description }

// Apply withdraws broken curves
func (r *BrokenCurveCleanupRule) Apply(state State) (State, []entities.TraceEntry) {
	var entries []entities.TraceEntry
	if r.cleanup.threshold <= r.completenessThreshold {
		entries = append(entries, entities.NewWarning(RuleBrokenCurveCleanup,
			fmt.Sprintf("cleanup threshold %.2f overlaps completeness threshold %.2f", r.cleanup.threshold, r.completenessThreshold),
			map[string]any{"threshold": r.cleanup.threshold, "completeness_threshold": r.completenessThreshold}))
	}

	next, cleanupEntries := r.cleanup.apply(state)
	entries = append(entries, cleanupEntries...)
	if len(cleanupEntries) == 0 {
		entries = append(entries, entities.NewTrace(RuleBrokenCurveCleanup, "cleanup completed: 0 adjustments", nil))
	}
	return next, entries
}

// SurplusToTopStoreRule is rule 3. Surplus is granted to the top store by the passes
// that free it, so this pass reports the destination and the totals.
type SurplusToTopStoreRule struct{}

// NewSurplusToTopStoreRule creates rule 3
func NewSurplusToTopStoreRule() *SurplusToTopStoreRule {
	return &SurplusToTopStoreRule{}
}

func (r *SurplusToTopStoreRule) ID() string { return RuleSurplusToTopStore }

func (r *SurplusToTopStoreRule) Description() string {
	return "grant freed units to the store with the highest participation"
}

// Apply records the top store and the surplus granted to it so far
func (r *SurplusToTopStoreRule) Apply(state State) (State, []entities.TraceEntry) {
	var total entities.Quantity
	for _, s := range state.Surplus {
		total += s.Units
	}
	weight := state.Participation.Weight(state.Top)
	return state, []entities.TraceEntry{
		entities.NewTrace(RuleSurplusToTopStore,
			fmt.Sprintf("top store %s (%s%%) received %d surplus units", state.Top, weight.StringFixed(2), total),
			map[string]any{"store": state.Top, "weight": weight.String(), "units": int64(total)}),
	}
}

// MinimumCompleteCurveRule is rule 10: when no store holds a complete curve of a
// product, one unit of each size is gathered at the top store.
type MinimumCompleteCurveRule struct{}

// NewMinimumCompleteCurveRule creates rule 10
func NewMinimumCompleteCurveRule() *MinimumCompleteCurveRule {
	return &MinimumCompleteCurveRule{}
}

func (r *MinimumCompleteCurveRule) ID() string { return RuleMinimumCompleteCurve }

func (r *MinimumCompleteCurveRule) Description() string {
	return "guarantee at least one complete curve per product at the top store"
}

// Apply completes curves at the top store, taking each missing unit from the store
// that holds the most units of that size
func (r *MinimumCompleteCurveRule) Apply(state State) (State, []entities.TraceEntry) {
	matrix := state.Matrix.Clone()
	var entries []entities.TraceEntry

	for _, curve := range state.CurveOrder {
		if !curve.Eligible() || hasCompleteStore(curve, matrix, state.Participation) {
			continue
		}

		entries = append(entries, entities.NewTrace(RuleMinimumCompleteCurve,
			fmt.Sprintf("no store holds a complete curve of %s; completing it at %s", curve.Key, state.Top),
			map[string]any{"curve": curve.Key.String(), "store": state.Top}))

		for _, size := range curve.Sizes {
			sku := curve.SKUFor(size)
			if matrix.Get(sku, state.Top) > 0 {
				continue
			}
			donor, ok := largestHolder(matrix, sku, state)
			if !ok {
				entries = append(entries, entities.NewWarning(RuleMinimumCompleteCurve,
					fmt.Sprintf("no units of %s available to complete the curve", sku),
					map[string]any{"sku": sku.String()}))
				continue
			}
			entry, _ := moveToStore(matrix, RuleMinimumCompleteCurve, sku, donor, state.Top, 1, ReasonMinimumCompleteCurve)
			entries = append(entries, entry)
		}
	}

	next := state
	next.Matrix = matrix
	return next, entries
}

func hasCompleteStore(curve *entities.Curve, matrix *entities.AllocationMatrix, participation *entities.Participation) bool {
	for _, store := range participation.Stores() {
		if curve.IsCompleteAt(matrix, store) {
			return true
		}
	}
	return false
}

// largestHolder picks the store other than the top store holding the most units of an SKU.
// Ties go to the lower weight, then the alphabetically first name.
func largestHolder(matrix *entities.AllocationMatrix, sku entities.SKU, state State) (string, bool) {
	best := ""
	var bestUnits entities.Quantity
	for _, store := range matrix.Stores(sku) {
		if store == state.Top {
			continue
		}
		units := matrix.Get(sku, store)
		switch {
		case best == "" || units > bestUnits:
		case units < bestUnits:
			continue
		default:
			if c := state.Participation.Weight(store).Cmp(state.Participation.Weight(best)); c > 0 || (c == 0 && store > best) {
				continue
			}
		}
		best, bestUnits = store, units
	}
	return best, best != ""
}

// TopStoreExcessRule is rule 12: a top store holding a complete curve keeps one unit
// per size and passes the excess to the second store.
type TopStoreExcessRule struct{}

// NewTopStoreExcessRule creates rule 12
func NewTopStoreExcessRule() *TopStoreExcessRule {
	return &TopStoreExcessRule{}
}

func (r *TopStoreExcessRule) ID() string { return RuleTopStoreExcess }

func (r *TopStoreExcessRule) Description() string {
	return "move top store units above one per size of a complete curve to the second store"
}

// Apply redistributes top store excess
func (r *TopStoreExcessRule) Apply(state State) (State, []entities.TraceEntry) {
	if state.Second == "" {
		return state, []entities.TraceEntry{
			entities.NewTrace(RuleTopStoreExcess, "skipped: fewer than two stores participate", nil),
		}
	}

	matrix := state.Matrix.Clone()
	var entries []entities.TraceEntry

	for _, curve := range state.CurveOrder {
		if !curve.Eligible() || !curve.IsCompleteAt(matrix, state.Top) {
			continue
		}
		for _, size := range curve.Sizes {
			sku := curve.SKUFor(size)
			if excess := matrix.Get(sku, state.Top) - 1; excess > 0 {
				entry, _ := moveToStore(matrix, RuleTopStoreExcess, sku, state.Top, state.Second, excess, ReasonTopStoreExcess)
				entries = append(entries, entry)
			}
		}
	}

	next := state
	next.Matrix = matrix
	return next, entries
}
