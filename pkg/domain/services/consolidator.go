package services

import (
	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// Consolidator merges stock records that share an SKU across warehouses
type Consolidator struct{}

// NewConsolidator creates a new consolidator
func NewConsolidator() *Consolidator {
	return &Consolidator{}
}

// Consolidate groups records by SKU. Records sharing SKU and warehouse are summed
// into one warehouse entry; other warehouses become separate entries in the order
// they first appear. An empty input yields an empty result.
func (c *Consolidator) Consolidate(records []entities.StockRecord) entities.ConsolidatedStock {
	stock := make(entities.ConsolidatedStock)

	for _, record := range records {
		sku := record.SKU()
		consolidated, exists := stock[sku]
		if !exists {
			consolidated = &entities.ConsolidatedSKU{
				SKU:        sku,
				ColorName:  record.ColorName,
				Origin:     record.Origin,
				Season:     record.Season,
				Warehouses: make([]entities.WarehouseStock, 0, 1),
			}
			stock[sku] = consolidated
		}

		consolidated.TotalQuantity += record.Quantity
		warehouse := record.Warehouse()

		merged := false
		for i := range consolidated.Warehouses {
			if consolidated.Warehouses[i].Name == warehouse {
				consolidated.Warehouses[i].Quantity += record.Quantity
				merged = true
				break
			}
		}
		if !merged {
			consolidated.Warehouses = append(consolidated.Warehouses, entities.WarehouseStock{
				Code:     record.WarehouseCode,
				Name:     warehouse,
				Quantity: record.Quantity,
			})
		}
	}

	return stock
}
