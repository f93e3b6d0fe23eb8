package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// StoreWeight is a store's target share of inventory, as a percentage
type StoreWeight struct {
	Store  string
	Weight decimal.Decimal
}

// Participation holds the normalised store weights in input order.
// Input order is significant: it breaks ties when picking the top stores.
type Participation struct {
	weights []StoreWeight
	index   map[string]int
}

// NewParticipation creates a Participation from weights already expressed as percentages
func NewParticipation(weights []StoreWeight) (*Participation, error) {
	p := &Participation{
		weights: make([]StoreWeight, 0, len(weights)),
		index:   make(map[string]int, len(weights)),
	}
	for _, w := range weights {
		if w.Store == "" {
			return nil, fmt.Errorf("store name cannot be empty")
		}
		if !w.Weight.IsPositive() {
			return nil, fmt.Errorf("weight for store %s must be positive, got %s", w.Store, w.Weight)
		}
		if _, exists := p.index[w.Store]; exists {
			return nil, fmt.Errorf("duplicate store %s", w.Store)
		}
		p.index[w.Store] = len(p.weights)
		p.weights = append(p.weights, w)
	}
	return p, nil
}

// MustParticipation builds a Participation from store/percentage pairs and panics on error.
// Intended for tests and examples.
func MustParticipation(pairs ...any) *Participation {
	if len(pairs)%2 != 0 {
		panic("MustParticipation requires store/weight pairs")
	}
	weights := make([]StoreWeight, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		store := pairs[i].(string)
		var weight decimal.Decimal
		switch v := pairs[i+1].(type) {
		case int:
			weight = decimal.NewFromInt(int64(v))
		case float64:
			weight = decimal.NewFromFloat(v)
		case string:
			weight = decimal.RequireFromString(v)
		case decimal.Decimal:
			weight = v
		default:
			panic(fmt.Sprintf("unsupported weight type %T", v))
		}
		weights = append(weights, StoreWeight{Store: store, Weight: weight})
	}
	p, err := NewParticipation(weights)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of stores
func (p *Participation) Len() int {
	return len(p.weights)
}

// Weights returns the store weights in input order
func (p *Participation) Weights() []StoreWeight {
	out := make([]StoreWeight, len(p.weights))
	copy(out, p.weights)
	return out
}

// Stores returns the store names in input order
func (p *Participation) Stores() []string {
	stores := make([]string, len(p.weights))
	for i, w := range p.weights {
		stores[i] = w.Store
	}
	return stores
}

// SortedStores returns the store names in alphabetical order
func (p *Participation) SortedStores() []string {
	stores := p.Stores()
	sort.Strings(stores)
	return stores
}

// Has reports whether the store participates
func (p *Participation) Has(store string) bool {
	_, ok := p.index[store]
	return ok
}

// Weight returns the store's weight, or zero for unknown stores
func (p *Participation) Weight(store string) decimal.Decimal {
	i, ok := p.index[store]
	if !ok {
		return decimal.Zero
	}
	return p.weights[i].Weight
}

// Sum returns the total of all weights
func (p *Participation) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, w := range p.weights {
		sum = sum.Add(w.Weight)
	}
	return sum
}

// Top returns the store with the highest weight; the first in input order wins ties
func (p *Participation) Top() (string, bool) {
	return p.topExcluding("")
}

// Second returns the store with the highest weight after Top
func (p *Participation) Second() (string, bool) {
	top, ok := p.Top()
	if !ok {
		return "", false
	}
	return p.topExcluding(top)
}

func (p *Participation) topExcluding(excluded string) (string, bool) {
	best := -1
	for i, w := range p.weights {
		if w.Store == excluded {
			continue
		}
		if best < 0 || w.Weight.GreaterThan(p.weights[best].Weight) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return p.weights[best].Store, true
}

// LargeStores returns, in input order, the stores whose weight exceeds the threshold
func (p *Participation) LargeStores(threshold decimal.Decimal) []string {
	var large []string
	for _, w := range p.weights {
		if w.Weight.GreaterThan(threshold) {
			large = append(large, w.Store)
		}
	}
	return large
}
