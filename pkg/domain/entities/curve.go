package entities

// Curve is the ordered set of sizes that together form a sellable assortment
// of one category in one color
type Curve struct {
	Key           CurveKey
	ColorName     string
	Sizes         []string
	SKUs          []SKU
	TotalQuantity Quantity
}

// Eligible reports whether the curve takes part in completeness analysis.
// Single-size products are exempt from curve rules.
func (c *Curve) Eligible() bool {
	return len(c.Sizes) > 1
}

// SKUFor returns the member SKU for a size
func (c *Curve) SKUFor(size string) SKU {
	return SKU{Category: c.Key.Category, Color: c.Key.Color, Size: size}
}

// PresentSizes returns, in curve order, the sizes the store holds units of
func (c *Curve) PresentSizes(m *AllocationMatrix, store string) []string {
	var present []string
	for _, size := range c.Sizes {
		if m.Get(c.SKUFor(size), store) > 0 {
			present = append(present, size)
		}
	}
	return present
}

// PresentFraction returns sizesWithUnits / totalSizesInCurve for a store
func (c *Curve) PresentFraction(m *AllocationMatrix, store string) float64 {
	if len(c.Sizes) == 0 {
		return 0
	}
	return float64(len(c.PresentSizes(m, store))) / float64(len(c.Sizes))
}

// IsCompleteAt reports whether the store holds at least one unit of every size
func (c *Curve) IsCompleteAt(m *AllocationMatrix, store string) bool {
	return len(c.Sizes) > 0 && len(c.PresentSizes(m, store)) == len(c.Sizes)
}

// CompleteCount returns how many complete curves the store holds:
// the minimum units across the curve's sizes
func (c *Curve) CompleteCount(m *AllocationMatrix, store string) Quantity {
	if len(c.Sizes) == 0 {
		return 0
	}
	var count Quantity = -1
	for _, size := range c.Sizes {
		units := m.Get(c.SKUFor(size), store)
		if count < 0 || units < count {
			count = units
		}
	}
	return count
}
