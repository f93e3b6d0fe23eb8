package testing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// Scenario is a parsed set of distribution inputs
type Scenario struct {
	Stock         []entities.StockRecord
	Participation *entities.Participation
	Priorities    *entities.Priorities
}

// Total returns the units held by the scenario stock
func (s Scenario) Total() entities.Quantity {
	var total entities.Quantity
	for _, r := range s.Stock {
		total += r.Quantity
	}
	return total
}

// mustCreateRecord is a helper for fixtures - panics on validation error
func mustCreateRecord(warehouse, color, colorName, size string, qty entities.Quantity, category string) entities.StockRecord {
	record, err := entities.NewStockRecord("", warehouse, color, colorName, size, qty, category, "NACIONAL", "INV25")
	if err != nil {
		panic(err)
	}
	return *record
}

// BuildSimpleTestData builds a three-store scenario with one curve and one single-size product
func BuildSimpleTestData() Scenario {
	return Scenario{
		Stock: []entities.StockRecord{
			mustCreateRecord("CENTRAL", "W", "Blanco", "S", 4, "REMERA"),
			mustCreateRecord("CENTRAL", "W", "Blanco", "M", 6, "REMERA"),
			mustCreateRecord("CENTRAL", "W", "Blanco", "L", 5, "REMERA"),
			mustCreateRecord("CENTRAL", "RED", "Rojo", "U", 10, "GORRA"),
		},
		Participation: entities.MustParticipation("A", 50, "B", 30, "C", 20),
		Priorities: entities.NewPriorities([]entities.PriorityEntry{
			{Category: "REMERA", Priority: 1},
		}, entities.DefaultPriority),
	}
}

// Stores of the retail scenario, in participation order
var retailStores = []string{"PALERMO", "BELGRANO", "CABALLITO", "FLORES", "RECOLETA"}

// BuildRetailTestData builds a 1000-unit scenario across five stores. Part of the stock
// sits in store back rooms so the transfer plan mixes warehouse and store-excess sources.
func BuildRetailTestData() Scenario {
	var stock []entities.StockRecord

	for _, color := range []struct{ code, name string }{{"BLK", "Negro"}, {"BLU", "Azul"}} {
		for _, size := range []string{"38", "40", "42", "44", "46"} {
			stock = append(stock,
				mustCreateRecord("CENTRAL", color.code, color.name, size, 30, "JEANS"),
				mustCreateRecord("FLORES", color.code, color.name, size, 10, "JEANS"),
			)
		}
	}
	for _, color := range []struct{ code, name string }{{"W", "Blanco"}, {"B", "Negro"}} {
		for _, size := range []string{"S", "M", "L", "XL"} {
			stock = append(stock, mustCreateRecord("DEPOSITO NORTE", color.code, color.name, size, 50, "REMERA"))
		}
	}
	stock = append(stock,
		mustCreateRecord("CENTRAL", "RED", "Rojo", "U", 120, "GORRA"),
		mustCreateRecord("Palermo", "RED", "Rojo", "U", 80, "GORRA"),
	)

	return Scenario{
		Stock:         stock,
		Participation: entities.MustParticipation(retailStores[0], 30, retailStores[1], 25, retailStores[2], 20, retailStores[3], 15, retailStores[4], 10),
		Priorities: entities.NewPriorities([]entities.PriorityEntry{
			{Category: "JEANS", Priority: 1},
			{Category: "REMERA", Priority: 2},
		}, entities.DefaultPriority),
	}
}

// Tabular fixtures in the input file layout
const (
	StockCSV = `Coddep,Deposito,Color,NombreColor,Medida,Cantidad,TIPOLOGIA,ORIGEN,TEMPORADA
01,CENTRAL,W,Blanco,S,4,REMERA,NACIONAL,INV25
01,CENTRAL,W,Blanco,M,6,REMERA,NACIONAL,INV25
01,CENTRAL,W,Blanco,L,5,REMERA,NACIONAL,INV25
01,CENTRAL,RED,Rojo,U,10,GORRA,IMPORTADO,INV25
02,B,RED,Rojo,U,0,GORRA,IMPORTADO,INV25
`
	ParticipationCSV = `sucursal,participacion
A,50%
B,30%
C,20%
`
	PriorityCSV = `prioridad,tipologia
1,REMERA
2,GORRA
`
)

// WriteScenarioFiles writes the tabular fixtures into dir as stock.csv,
// participation.csv and priority.csv
func WriteScenarioFiles(dir string) error {
	files := map[string]string{
		"stock.csv":         StockCSV,
		"participation.csv": ParticipationCSV,
		"priority.csv":      PriorityCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}
