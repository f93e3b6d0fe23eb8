package main

import (
	"context"
	"fmt"

	"github.com/vsinha/storealloc/pkg/application/services/distribution"
	"github.com/vsinha/storealloc/pkg/domain/entities"
)

func main() {
	ctx := context.Background()

	stock := buildStock()
	participation := entities.MustParticipation(
		"PALERMO", 35,
		"BELGRANO", 25,
		"CABALLITO", 20,
		"FLORES", 12,
		"RECOLETA", 8,
	)
	priorities := entities.NewPriorities([]entities.PriorityEntry{
		{Category: "JEAN", Priority: 1},
		{Category: "CAMPERA", Priority: 2},
	}, entities.DefaultPriority)

	var total entities.Quantity
	for _, r := range stock {
		total += r.Quantity
	}
	fmt.Println("🏬 Distributing winter stock across 5 stores...")
	fmt.Printf("Stock records: %d (%d units)\n\n", len(stock), total)

	service := distribution.NewService(distribution.DefaultConfig())
	result, err := service.Distribute(ctx, distribution.Input{
		Stock:         stock,
		Participation: participation,
		Priorities:    priorities,
	})
	if err != nil {
		fmt.Printf("❌ Distribution failed: %v\n", err)
		return
	}

	fmt.Println("📊 Store totals:")
	for _, s := range result.StoreSummary {
		fmt.Printf("  %-10s %4d units  expected %6s%%  real %6s%%\n",
			s.Store, s.TotalUnits, s.ExpectedShare.StringFixed(2), s.RealShare.StringFixed(2))
	}
	fmt.Println()

	fmt.Println("🔁 Rule passes:")
	for _, p := range result.Passes {
		fmt.Printf("  %-32s moved %3d  conserved %t\n", p.Rule, p.MovedUnits, p.Conserved)
	}
	fmt.Println()

	fmt.Printf("🚚 Transfers: %d (%d units)\n", len(result.Transfers), result.TransfersTotal())
	for i, t := range result.Transfers {
		if i == 5 {
			fmt.Printf("  ... and %d more\n", len(result.Transfers)-5)
			break
		}
		fmt.Printf("  %s: %d from %s to %s (%s)\n", t.SKU, t.Units, t.Origin, t.Destination, t.Reason)
	}
	fmt.Println()

	for _, w := range result.Warnings() {
		fmt.Printf("⚠️  %s: %s\n", w.Rule, w.Message)
	}

	fingerprint, err := result.Fingerprint()
	if err != nil {
		fmt.Printf("❌ Fingerprint failed: %v\n", err)
		return
	}
	status := "✅"
	if !result.CheckSum.Valid {
		status = "❌"
	}
	fmt.Printf("%s CheckSum: original %d, distributed %d (fingerprint %s)\n",
		status, result.CheckSum.Original, result.CheckSum.Distributed, fingerprint)
}

// buildStock sets up a jeans curve held in two warehouses, a jacket curve with a
// thin size and a single-size accessory
func buildStock() []entities.StockRecord {
	var stock []entities.StockRecord
	add := func(code, warehouse, color, colorName, size string, qty entities.Quantity, category string) {
		record, err := entities.NewStockRecord(code, warehouse, color, colorName, size, qty, category, "NACIONAL", "INV25")
		if err != nil {
			panic(err)
		}
		stock = append(stock, *record)
	}

	for _, size := range []string{"38", "40", "42", "44"} {
		add("01", "CENTRAL", "AZ", "Azul", size, 24, "JEAN")
		add("07", "PALERMO", "AZ", "Azul", size, 6, "JEAN")
	}

	add("01", "CENTRAL", "NG", "Negro", "S", 9, "CAMPERA")
	add("01", "CENTRAL", "NG", "Negro", "M", 14, "CAMPERA")
	add("01", "CENTRAL", "NG", "Negro", "L", 11, "CAMPERA")
	add("01", "CENTRAL", "NG", "Negro", "XL", 2, "CAMPERA")

	add("02", "DEPOSITO NORTE", "RJ", "Rojo", "U", 40, "BUFANDA")
	return stock
}
