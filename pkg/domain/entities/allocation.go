package entities

import (
	"fmt"
	"sort"
)

// AllocationMatrix maps SKU -> store -> allocated units.
// Entries are never negative.
type AllocationMatrix struct {
	cells map[SKU]map[string]Quantity
}

// NewAllocationMatrix creates an empty allocation matrix
func NewAllocationMatrix() *AllocationMatrix {
	return &AllocationMatrix{cells: make(map[SKU]map[string]Quantity)}
}

// Get returns the units allocated to a store for an SKU
func (m *AllocationMatrix) Get(sku SKU, store string) Quantity {
	return m.cells[sku][store]
}

// Set stores the units allocated to a store for an SKU
func (m *AllocationMatrix) Set(sku SKU, store string, units Quantity) {
	if units < 0 {
		panic(fmt.Sprintf("negative allocation %d for %s@%s", units, sku, store))
	}
	row, ok := m.cells[sku]
	if !ok {
		row = make(map[string]Quantity)
		m.cells[sku] = row
	}
	row[store] = units
}

// Add adds units to a store's allocation for an SKU
func (m *AllocationMatrix) Add(sku SKU, store string, units Quantity) {
	m.Set(sku, store, m.Get(sku, store)+units)
}

// Move transfers units of an SKU between two stores, keeping the SKU total unchanged
func (m *AllocationMatrix) Move(sku SKU, from, to string, units Quantity) error {
	if units <= 0 {
		return fmt.Errorf("move of %s requires positive units, got %d", sku, units)
	}
	available := m.Get(sku, from)
	if available < units {
		return fmt.Errorf("cannot move %d units of %s from %s: only %d allocated", units, sku, from, available)
	}
	m.Set(sku, from, available-units)
	m.Add(sku, to, units)
	return nil
}

// Total returns the units of an SKU across all stores
func (m *AllocationMatrix) Total(sku SKU) Quantity {
	var total Quantity
	for _, units := range m.cells[sku] {
		total += units
	}
	return total
}

// StoreTotal returns the units allocated to a store across all SKUs
func (m *AllocationMatrix) StoreTotal(store string) Quantity {
	var total Quantity
	for _, row := range m.cells {
		total += row[store]
	}
	return total
}

// GrandTotal returns all allocated units
func (m *AllocationMatrix) GrandTotal() Quantity {
	var total Quantity
	for sku := range m.cells {
		total += m.Total(sku)
	}
	return total
}

// SKUs returns the SKUs present in the matrix in lexicographic order
func (m *AllocationMatrix) SKUs() []SKU {
	skus := make([]SKU, 0, len(m.cells))
	for sku := range m.cells {
		skus = append(skus, sku)
	}
	SortSKUs(skus)
	return skus
}

// Stores returns, alphabetically, the stores holding units of an SKU
func (m *AllocationMatrix) Stores(sku SKU) []string {
	var stores []string
	for store, units := range m.cells[sku] {
		if units > 0 {
			stores = append(stores, store)
		}
	}
	sort.Strings(stores)
	return stores
}

// Clone returns a deep copy of the matrix
func (m *AllocationMatrix) Clone() *AllocationMatrix {
	cloned := &AllocationMatrix{cells: make(map[SKU]map[string]Quantity, len(m.cells))}
	for sku, row := range m.cells {
		r := make(map[string]Quantity, len(row))
		for store, units := range row {
			r[store] = units
		}
		cloned.cells[sku] = r
	}
	return cloned
}

// MovedUnits returns how many units changed store between m and next:
// the sum of all positive per-cell increases
func (m *AllocationMatrix) MovedUnits(next *AllocationMatrix) Quantity {
	var moved Quantity
	for sku, row := range next.cells {
		for store, units := range row {
			if delta := units - m.Get(sku, store); delta > 0 {
				moved += delta
			}
		}
	}
	return moved
}

// Equal reports whether two matrices hold the same non-zero allocations
func (m *AllocationMatrix) Equal(other *AllocationMatrix) bool {
	return m.MovedUnits(other) == 0 && other.MovedUnits(m) == 0
}

// ConservationViolation describes an SKU whose allocated total differs from its stock
type ConservationViolation struct {
	SKU       SKU
	Expected  Quantity
	Allocated Quantity
}

// CheckConservation compares every SKU total against the consolidated stock
func (m *AllocationMatrix) CheckConservation(stock ConsolidatedStock) []ConservationViolation {
	var violations []ConservationViolation
	for _, sku := range stock.SortedSKUs() {
		expected := stock[sku].TotalQuantity
		if allocated := m.Total(sku); allocated != expected {
			violations = append(violations, ConservationViolation{SKU: sku, Expected: expected, Allocated: allocated})
		}
	}
	for _, sku := range m.SKUs() {
		if _, known := stock[sku]; !known && m.Total(sku) != 0 {
			violations = append(violations, ConservationViolation{SKU: sku, Expected: 0, Allocated: m.Total(sku)})
		}
	}
	return violations
}
