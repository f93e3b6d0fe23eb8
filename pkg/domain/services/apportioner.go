package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/storealloc/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// Share is one store's part of an apportionment
type Share struct {
	Store     string
	Weight    decimal.Decimal
	Exact     decimal.Decimal
	Floor     entities.Quantity
	Remainder decimal.Decimal
	Units     entities.Quantity
}

// Apportionment is the integer split of one quantity across all stores
type Apportionment struct {
	Quantity entities.Quantity
	Shares   []Share // participation input order
}

// Units returns the units apportioned to a store
func (a Apportionment) Units(store string) entities.Quantity {
	for _, s := range a.Shares {
		if s.Store == store {
			return s.Units
		}
	}
	return 0
}

// Total returns the sum of apportioned units
func (a Apportionment) Total() entities.Quantity {
	var total entities.Quantity
	for _, s := range a.Shares {
		total += s.Units
	}
	return total
}

// Apportioner splits integer quantities with the largest-remainder (Hamilton) method
type Apportioner struct{}

// NewApportioner creates a new apportioner
func NewApportioner() *Apportioner {
	return &Apportioner{}
}

// Apportion splits q across the participating stores. Each store receives the floor
// of its exact share; the leftover units go one each to the stores with the largest
// remainder, then the largest weight, then the alphabetically first name.
// Weights are taken relative to their sum, so the units always add up to q.
func (a *Apportioner) Apportion(q entities.Quantity, participation *entities.Participation) Apportionment {
	weights := participation.Weights()
	result := Apportionment{Quantity: q, Shares: make([]Share, len(weights))}
	if len(weights) == 0 {
		return result
	}

	sum := participation.Sum()
	quantity := decimal.NewFromInt(int64(q))

	var floored entities.Quantity
	for i, w := range weights {
		var exact decimal.Decimal
		if sum.Equal(hundred) {
			exact = quantity.Mul(w.Weight).Shift(-2)
		} else {
			exact = quantity.Mul(w.Weight).Div(sum)
		}
		floor := exact.Floor()
		result.Shares[i] = Share{
			Store:     w.Store,
			Weight:    w.Weight,
			Exact:     exact,
			Floor:     entities.Quantity(floor.IntPart()),
			Remainder: exact.Sub(floor),
		}
		result.Shares[i].Units = result.Shares[i].Floor
		floored += result.Shares[i].Floor
	}

	order := make([]int, len(result.Shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		sx, sy := result.Shares[order[x]], result.Shares[order[y]]
		if c := sx.Remainder.Cmp(sy.Remainder); c != 0 {
			return c > 0
		}
		if c := sx.Weight.Cmp(sy.Weight); c != 0 {
			return c > 0
		}
		return sx.Store < sy.Store
	})

	for deficit, i := q-floored, 0; deficit > 0; deficit, i = deficit-1, i+1 {
		result.Shares[order[i%len(order)]].Units++
	}

	return result
}
