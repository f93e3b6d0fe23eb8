package entities

import (
	"sort"
	"strings"
)

// Quantity represents an integer quantity value for discrete inventory units
type Quantity int64

// SKU identifies a stock-keeping unit by category, color and size
type SKU struct {
	Category string
	Color    string
	Size     string
}

// NewSKU creates an SKU with trimmed components
func NewSKU(category, color, size string) SKU {
	return SKU{
		Category: strings.TrimSpace(category),
		Color:    strings.TrimSpace(color),
		Size:     strings.TrimSpace(size),
	}
}

// CurveKey returns the (category, color) key of the curve this SKU belongs to
func (s SKU) CurveKey() CurveKey {
	return CurveKey{Category: s.Category, Color: s.Color}
}

// String renders the SKU for display only; it is never parsed back
func (s SKU) String() string {
	return s.Category + "_" + s.Color + "_" + s.Size
}

// Compare orders SKUs lexicographically by category, color and size
func (s SKU) Compare(other SKU) int {
	if c := strings.Compare(s.Category, other.Category); c != 0 {
		return c
	}
	if c := strings.Compare(s.Color, other.Color); c != 0 {
		return c
	}
	return strings.Compare(s.Size, other.Size)
}

// CurveKey identifies a product curve: every size of one category in one color
type CurveKey struct {
	Category string
	Color    string
}

// String renders the curve key for display only
func (k CurveKey) String() string {
	return k.Category + "_" + k.Color
}

// Compare orders curve keys by category and then color
func (k CurveKey) Compare(other CurveKey) int {
	if c := strings.Compare(k.Category, other.Category); c != 0 {
		return c
	}
	return strings.Compare(k.Color, other.Color)
}

// SortSKUs sorts SKUs in place using SKU.Compare
func SortSKUs(skus []SKU) {
	sort.Slice(skus, func(i, j int) bool {
		return skus[i].Compare(skus[j]) < 0
	})
}
