package services

import (
	"sort"

	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// CurveDetector groups consolidated SKUs into product curves
type CurveDetector struct{}

// NewCurveDetector creates a new curve detector
func NewCurveDetector() *CurveDetector {
	return &CurveDetector{}
}

// Detect returns one curve per (category, color), ordered by curve key.
// Sizes inside each curve follow entities.SortSizes.
func (d *CurveDetector) Detect(stock entities.ConsolidatedStock) []*entities.Curve {
	byKey := make(map[entities.CurveKey]*entities.Curve)

	for _, sku := range stock.SortedSKUs() {
		consolidated := stock[sku]
		key := sku.CurveKey()
		curve, exists := byKey[key]
		if !exists {
			curve = &entities.Curve{Key: key, ColorName: consolidated.ColorName}
			byKey[key] = curve
		}
		curve.Sizes = append(curve.Sizes, sku.Size)
		curve.TotalQuantity += consolidated.TotalQuantity
	}

	curves := make([]*entities.Curve, 0, len(byKey))
	for _, curve := range byKey {
		entities.SortSizes(curve.Sizes)
		curve.SKUs = make([]entities.SKU, len(curve.Sizes))
		for i, size := range curve.Sizes {
			curve.SKUs[i] = curve.SKUFor(size)
		}
		curves = append(curves, curve)
	}

	sort.Slice(curves, func(i, j int) bool {
		return curves[i].Key.Compare(curves[j].Key) < 0
	})

	return curves
}

// IndexCurves maps every curve by its key
func IndexCurves(curves []*entities.Curve) map[entities.CurveKey]*entities.Curve {
	index := make(map[entities.CurveKey]*entities.Curve, len(curves))
	for _, curve := range curves {
		index[curve.Key] = curve
	}
	return index
}
