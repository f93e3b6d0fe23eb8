package rules

import (
	"fmt"

	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/domain/services"
)

// BaseApportionmentRule builds the initial matrix with the largest-remainder method
type BaseApportionmentRule struct {
	apportioner *services.Apportioner
}

// NewBaseApportionmentRule creates rule 1
func NewBaseApportionmentRule(apportioner *services.Apportioner) *BaseApportionmentRule {
	return &BaseApportionmentRule{apportioner: apportioner}
}

func (r *BaseApportionmentRule) ID() string { return RuleBaseApportionment }

func (r *BaseApportionmentRule) Description() string {
	return "split every SKU across stores by participation weight (largest remainder)"
}

// Apply apportions every SKU in processing order
func (r *BaseApportionmentRule) Apply(state State) (State, []entities.TraceEntry) {
	matrix := entities.NewAllocationMatrix()
	base := make(map[entities.SKU]services.Apportionment, len(state.Order))

	allocations := 0
	for _, sku := range state.Order {
		apportionment := r.apportioner.Apportion(state.Stock[sku].TotalQuantity, state.Participation)
		base[sku] = apportionment
		for _, share := range apportionment.Shares {
			if share.Units > 0 {
				matrix.Set(sku, share.Store, share.Units)
				allocations++
			}
		}
	}

	next := state
	next.Matrix = matrix
	next.Base = base

	return next, []entities.TraceEntry{
		entities.NewTrace(RuleBaseApportionment,
			fmt.Sprintf("base distribution computed: %d allocations across %d SKUs and %d stores",
				allocations, len(state.Order), state.Participation.Len()),
			map[string]any{"allocations": allocations, "skus": len(state.Order), "stores": state.Participation.Len()}),
	}
}
