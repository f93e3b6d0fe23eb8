package output

import (
	"github.com/vsinha/storealloc/pkg/application/dto"
)

// table is one exported sheet or file
type table struct {
	name   string
	file   string
	header []string
	rows   [][]any
}

func resultTables(result *dto.DistributionResult) []table {
	allocation := table{
		name: "Allocation",
		file: "allocation.csv",
		header: []string{"SKU", "Category", "Color", "ColorName", "Size", "Store", "Units",
			"BaseUnits", "ExactShare", "Residue", "Adjusted", "Warehouses", "Origin", "Season", "Priority"},
	}
	for _, a := range result.AllocationDetail {
		allocation.rows = append(allocation.rows, []any{a.SKU, a.Category, a.Color, a.ColorName, a.Size,
			a.Store, a.Units, a.BaseUnits, a.ExactShare, a.Residue, a.Adjusted, a.Warehouses,
			a.Origin, a.Season, a.Priority})
	}

	transfers := table{
		name: "Transfers",
		file: "transfers.csv",
		header: []string{"SKU", "Category", "Color", "Size", "Origin", "Source", "Destination",
			"Units", "Reason", "Priority", "Season"},
	}
	for _, t := range result.Transfers {
		transfers.rows = append(transfers.rows, []any{t.SKU, t.Category, t.Color, t.Size, t.Origin,
			t.Source, t.Destination, t.Units, t.Reason, t.Priority, t.Season})
	}

	stores := table{
		name:   "Stores",
		file:   "stores.csv",
		header: []string{"Store", "TotalUnits", "ExpectedShare", "RealShare", "Deviation", "Large"},
	}
	for _, s := range result.StoreSummary {
		stores.rows = append(stores.rows, []any{s.Store, s.TotalUnits, s.ExpectedShare, s.RealShare,
			s.Deviation, s.Large})
	}

	analysis := table{
		name: "Store Analysis",
		file: "store_analysis.csv",
		header: []string{"Store", "ShareWeight", "Stock", "CompleteCurves", "IncompleteCurves",
			"Oversupplied", "SuggestedAction"},
	}
	for _, a := range result.PerStoreAnalysis {
		analysis.rows = append(analysis.rows, []any{a.Store, a.ShareWeight, a.Stock, a.CompleteCurves,
			a.IncompleteCurves, a.IsOversupplied, a.SuggestedAction})
	}

	trace := table{
		name:   "Trace",
		file:   "trace.csv",
		header: []string{"Seq", "Rule", "Level", "SKU", "Store", "Reason", "Message"},
	}
	for _, e := range result.TraceLog {
		trace.rows = append(trace.rows, []any{e.Seq, e.Rule, e.Level, e.SKU, e.Store, e.Reason, e.Message})
	}

	return []table{allocation, transfers, stores, analysis, trace}
}
