package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/storealloc/pkg/application/services/rules"
	"github.com/vsinha/storealloc/pkg/domain/entities"
)

var jeans38 = entities.NewSKU("JEANS", "BLK", "38")

func plannerInput(warehouses []entities.WarehouseStock, allocation map[string]entities.Quantity, participation *entities.Participation) Input {
	consolidated := &entities.ConsolidatedSKU{SKU: jeans38, ColorName: "Black", Season: "W25", Warehouses: warehouses}
	for _, w := range warehouses {
		consolidated.TotalQuantity += w.Quantity
	}

	matrix := entities.NewAllocationMatrix()
	for store, units := range allocation {
		matrix.Set(jeans38, store, units)
	}

	return Input{
		Matrix:        matrix,
		Stock:         entities.ConsolidatedStock{jeans38: consolidated},
		Order:         []entities.SKU{jeans38},
		Participation: participation,
		Priorities:    entities.NewPriorities([]entities.PriorityEntry{{Category: "JEANS", Priority: 2}}, entities.DefaultPriority),
		Trace:         entities.NewTraceLog(),
	}
}

func TestPlanner_FillsFromPureWarehousesInRecordedOrder(t *testing.T) {
	in := plannerInput(
		[]entities.WarehouseStock{{Name: "DEPOSITO 2", Quantity: 3}, {Name: "DEPOSITO 1", Quantity: 7}},
		map[string]entities.Quantity{"A": 6, "B": 4},
		entities.MustParticipation("A", 60, "B", 40),
	)

	transfers := NewPlanner().Plan(in)
	require.Len(t, transfers, 3)

	assert.Equal(t, entities.Transfer{
		SKU: jeans38, Size: "38", Color: "Black", Origin: "DEPOSITO 2", Destination: "A",
		Units: 3, Reason: rules.ReasonBaseApportionment, Priority: 2, Season: "W25", Source: entities.FromWarehouse,
	}, transfers[0])
	assert.Equal(t, "DEPOSITO 1", transfers[1].Origin)
	assert.Equal(t, entities.Quantity(3), transfers[1].Units)
	assert.Equal(t, "B", transfers[2].Destination)
	assert.Equal(t, entities.Quantity(4), transfers[2].Units)
	assert.Empty(t, in.Trace.AtLeast(entities.TraceWarning))
}

func TestPlanner_PrefersStoreExcess(t *testing.T) {
	in := plannerInput(
		[]entities.WarehouseStock{{Name: "CENTRAL", Quantity: 5}, {Name: "b", Quantity: 6}},
		map[string]entities.Quantity{"A": 8, "B": 3},
		entities.MustParticipation("A", 70, "B", 30),
	)
	in.Trace.Append(entities.NewGrant(rules.RuleMicroAllocation, jeans38, "A", rules.ReasonMicroAllocation, "granted", nil))

	transfers := NewPlanner().Plan(in)
	require.Len(t, transfers, 2)

	assert.Equal(t, "B", transfers[0].Origin)
	assert.Equal(t, entities.FromStoreExcess, transfers[0].Source)
	assert.Equal(t, entities.Quantity(3), transfers[0].Units)
	assert.Equal(t, rules.ReasonMicroAllocation, transfers[0].Reason)

	assert.Equal(t, "CENTRAL", transfers[1].Origin)
	assert.Equal(t, entities.Quantity(5), transfers[1].Units)

	var balanced int
	for _, e := range in.Trace.ByRule(Stage) {
		if e.Message == "JEANS_BLK_38 at B already balanced (6 held, 3 allocated)" {
			balanced++
		}
	}
	assert.Equal(t, 1, balanced)
}

func TestPlanner_LargeStoreLockLeavesShortfall(t *testing.T) {
	participation := entities.MustParticipation("A", 70, "B", 30)
	in := plannerInput(
		[]entities.WarehouseStock{{Name: "A", Quantity: 10}},
		map[string]entities.Quantity{"A": 7, "B": 3},
		participation,
	)
	in.LargeStores = []string{"A", "B"}

	unlocked := NewPlanner().Plan(in)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "A", unlocked[0].Origin)

	in.Trace = entities.NewTraceLog()
	locked := NewPlanner(WithLargeStoreLock(true)).Plan(in)
	assert.Empty(t, locked)

	warnings := in.Trace.AtLeast(entities.TraceWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(3), warnings[0].Context["missing"])
}

func TestPlanner_CoversEveryAllocatedUnit(t *testing.T) {
	in := plannerInput(
		[]entities.WarehouseStock{{Name: "A", Quantity: 2}, {Name: "C", Quantity: 9}, {Name: "CENTRAL", Quantity: 4}},
		map[string]entities.Quantity{"A": 5, "B": 4, "C": 6},
		entities.MustParticipation("A", 40, "B", 30, "C", 30),
	)

	transfers := NewPlanner().Plan(in)
	received := map[string]entities.Quantity{"A": 2, "C": 6}
	for _, tr := range transfers {
		received[tr.Destination] += tr.Units
	}
	assert.Equal(t, map[string]entities.Quantity{"A": 5, "B": 4, "C": 6}, received)
	assert.Empty(t, in.Trace.AtLeast(entities.TraceWarning))
}
