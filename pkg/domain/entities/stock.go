package entities

import (
	"fmt"
	"strings"
)

// UnnamedWarehouse is used for stock rows that carry no warehouse name
const UnnamedWarehouse = "(unnamed)"

// StockRecord represents one parsed row of the stock table
type StockRecord struct {
	WarehouseCode string
	WarehouseName string
	ColorCode     string
	ColorName     string
	Size          string
	Quantity      Quantity
	Category      string
	Origin        string
	Season        string
}

// NewStockRecord creates a validated StockRecord
func NewStockRecord(warehouseCode, warehouseName, colorCode, colorName, size string, quantity Quantity, category, origin, season string) (*StockRecord, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("category cannot be empty")
	}
	if strings.TrimSpace(size) == "" {
		return nil, fmt.Errorf("size cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	return &StockRecord{
		WarehouseCode: strings.TrimSpace(warehouseCode),
		WarehouseName: strings.TrimSpace(warehouseName),
		ColorCode:     strings.TrimSpace(colorCode),
		ColorName:     strings.TrimSpace(colorName),
		Size:          strings.TrimSpace(size),
		Quantity:      quantity,
		Category:      strings.TrimSpace(category),
		Origin:        strings.TrimSpace(origin),
		Season:        strings.TrimSpace(season),
	}, nil
}

// SKU returns the identity key of the record
func (r StockRecord) SKU() SKU {
	return NewSKU(r.Category, r.ColorCode, r.Size)
}

// Warehouse returns the warehouse name, falling back to the code and then to UnnamedWarehouse
func (r StockRecord) Warehouse() string {
	if r.WarehouseName != "" {
		return r.WarehouseName
	}
	if r.WarehouseCode != "" {
		return r.WarehouseCode
	}
	return UnnamedWarehouse
}

// WarehouseStock is the quantity of one SKU held by one physical warehouse
type WarehouseStock struct {
	Code     string
	Name     string
	Quantity Quantity
}

// ConsolidatedSKU is one logical SKU with its stock summed across warehouses
type ConsolidatedSKU struct {
	SKU           SKU
	ColorName     string
	Origin        string
	Season        string
	TotalQuantity Quantity
	Warehouses    []WarehouseStock
}

// DisplayColor returns the color name when known, else the color code
func (c *ConsolidatedSKU) DisplayColor() string {
	if c.ColorName != "" {
		return c.ColorName
	}
	return c.SKU.Color
}

// WarehouseNames returns the warehouse names in recorded order
func (c *ConsolidatedSKU) WarehouseNames() []string {
	names := make([]string, len(c.Warehouses))
	for i, w := range c.Warehouses {
		names[i] = w.Name
	}
	return names
}

// CloneWarehouses returns a working copy of the warehouse entries
func (c *ConsolidatedSKU) CloneWarehouses() []WarehouseStock {
	cloned := make([]WarehouseStock, len(c.Warehouses))
	copy(cloned, c.Warehouses)
	return cloned
}

// ConsolidatedStock maps every SKU to its consolidated stock
type ConsolidatedStock map[SKU]*ConsolidatedSKU

// SortedSKUs returns the SKUs in lexicographic order
func (cs ConsolidatedStock) SortedSKUs() []SKU {
	skus := make([]SKU, 0, len(cs))
	for sku := range cs {
		skus = append(skus, sku)
	}
	SortSKUs(skus)
	return skus
}

// TotalQuantity returns the sum of all consolidated quantities
func (cs ConsolidatedStock) TotalQuantity() Quantity {
	var total Quantity
	for _, c := range cs {
		total += c.TotalQuantity
	}
	return total
}
