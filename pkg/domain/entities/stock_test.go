package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockRecord_Validation(t *testing.T) {
	valid, err := NewStockRecord(" 01 ", "CENTRAL", "BLK", "Black", " 38 ", 10, "JEANS", "IMP", "W25")
	require.NoError(t, err)
	assert.Equal(t, Quantity(10), valid.Quantity)
	assert.Equal(t, SKU{Category: "JEANS", Color: "BLK", Size: "38"}, valid.SKU())

	testCases := []struct {
		name        string
		category    string
		size        string
		quantity    Quantity
		expectError string
	}{
		{"empty category", "", "38", 10, "category cannot be empty"},
		{"blank size", "JEANS", "  ", 10, "size cannot be empty"},
		{"zero quantity", "JEANS", "38", 0, "quantity must be positive, got 0"},
		{"negative quantity", "JEANS", "38", -3, "quantity must be positive, got -3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewStockRecord("01", "CENTRAL", "BLK", "Black", tc.size, tc.quantity, tc.category, "", "")
			require.Error(t, err)
			assert.Equal(t, tc.expectError, err.Error())
		})
	}
}

func TestStockRecord_WarehouseFallback(t *testing.T) {
	assert.Equal(t, "CENTRAL", StockRecord{WarehouseCode: "01", WarehouseName: "CENTRAL"}.Warehouse())
	assert.Equal(t, "01", StockRecord{WarehouseCode: "01"}.Warehouse())
	assert.Equal(t, UnnamedWarehouse, StockRecord{}.Warehouse())
}

func TestSortSizes(t *testing.T) {
	testCases := []struct {
		name     string
		sizes    []string
		expected []string
	}{
		{"numeric", []string{"40", "38", "100", "42"}, []string{"38", "40", "42", "100"}},
		{"letters", []string{"S", "XL", "M", "L"}, []string{"L", "M", "S", "XL"}},
		{"mixed falls back to lexicographic", []string{"40", "U", "100"}, []string{"100", "40", "U"}},
		{"single", []string{"U"}, []string{"U"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sizes := append([]string(nil), tc.sizes...)
			SortSizes(sizes)
			assert.Equal(t, tc.expected, sizes)
		})
	}
}

func TestSKU_CompareIsTotal(t *testing.T) {
	skus := []SKU{
		{Category: "REMERA", Color: "W", Size: "M"},
		{Category: "JEANS", Color: "BLK", Size: "40"},
		{Category: "JEANS", Color: "BLK", Size: "38"},
		{Category: "JEANS", Color: "BLU", Size: "38"},
	}
	SortSKUs(skus)

	assert.Equal(t, []SKU{
		{Category: "JEANS", Color: "BLK", Size: "38"},
		{Category: "JEANS", Color: "BLK", Size: "40"},
		{Category: "JEANS", Color: "BLU", Size: "38"},
		{Category: "REMERA", Color: "W", Size: "M"},
	}, skus)
	assert.Equal(t, CurveKey{Category: "JEANS", Color: "BLK"}, skus[0].CurveKey())
}
