package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vsinha/storealloc/pkg/application/dto"
)

// generateTextOutput prints a human-readable summary and, with an output
// directory, saves the same text to a file
func generateTextOutput(result *dto.DistributionResult, config Config) error {
	var buf bytes.Buffer
	writeText(&buf, result, config)

	if _, err := config.writer().Write(buf.Bytes()); err != nil {
		return err
	}
	if config.OutputDir == "" {
		return nil
	}
	return emit(buf.Bytes(), TextFile, config)
}

func writeText(w io.Writer, result *dto.DistributionResult, config Config) {
	fmt.Fprintf(w, "📊 Distribution Summary\n")
	fmt.Fprintf(w, "=======================\n\n")

	fmt.Fprintf(w, "Stores: %d (top: %s", len(result.StoreSummary), result.TopStore)
	if result.SecondStore != "" {
		fmt.Fprintf(w, ", second: %s", result.SecondStore)
	}
	fmt.Fprintf(w, ")\n")
	if len(result.LargeStores) > 0 {
		fmt.Fprintf(w, "Large stores: %s\n", strings.Join(result.LargeStores, ", "))
	}
	fmt.Fprintf(w, "Curves: %d\n", len(result.Curves))

	status := "✅ OK"
	if !result.CheckSum.Valid {
		status = "❌ MISMATCH"
	}
	fmt.Fprintf(w, "CheckSum: original %d, distributed %d, difference %d %s\n",
		result.CheckSum.Original, result.CheckSum.Distributed, result.CheckSum.Difference, status)
	fmt.Fprintf(w, "Transfers: %d (%d units)\n", len(result.Transfers), result.TransfersTotal())
	fmt.Fprintf(w, "Warnings: %d\n", len(result.Warnings()))
	if config.Elapsed > 0 {
		fmt.Fprintf(w, "Elapsed: %v\n", config.Elapsed)
	}
	fmt.Fprintln(w)

	if len(result.StoreSummary) > 0 {
		fmt.Fprintf(w, "🏬 Stores:\n")
		fmt.Fprintf(w, "%-15s %-8s %-10s %-10s %-10s %-6s\n",
			"Store", "Units", "Expected", "Real", "Deviation", "Large")
		fmt.Fprintf(w, "%-15s %-8s %-10s %-10s %-10s %-6s\n",
			"---------------", "--------", "----------", "----------", "----------", "------")
		for _, s := range result.StoreSummary {
			fmt.Fprintf(w, "%-15s %-8d %-10s %-10s %-10s %-6t\n",
				s.Store,
				s.TotalUnits,
				s.ExpectedShare.StringFixed(2),
				s.RealShare.StringFixed(2),
				s.Deviation.StringFixed(2),
				s.Large)
		}
		fmt.Fprintln(w)
	}

	if len(result.Passes) > 0 {
		fmt.Fprintf(w, "🔁 Rule Passes:\n")
		fmt.Fprintf(w, "%-32s %-8s %-10s\n", "Rule", "Moved", "Conserved")
		fmt.Fprintf(w, "%-32s %-8s %-10s\n",
			"--------------------------------", "--------", "----------")
		for _, p := range result.Passes {
			fmt.Fprintf(w, "%-32s %-8d %-10t\n", p.Rule, p.MovedUnits, p.Conserved)
		}
		fmt.Fprintln(w)
	}

	if len(result.Transfers) > 0 {
		fmt.Fprintf(w, "🚚 Transfers:\n")
		fmt.Fprintf(w, "%-24s %-15s %-15s %-6s %s\n", "SKU", "From", "To", "Units", "Reason")
		fmt.Fprintf(w, "%-24s %-15s %-15s %-6s %s\n",
			"------------------------", "---------------", "---------------", "------", "------")
		for _, t := range result.Transfers {
			fmt.Fprintf(w, "%-24s %-15s %-15s %-6d %s\n",
				t.SKU, t.Origin, t.Destination, t.Units, t.Reason)
		}
		fmt.Fprintln(w)
	}

	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(w, "⚠️  Warnings:\n")
		for _, e := range warnings {
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.Level, e.Rule, e.Message)
		}
		fmt.Fprintln(w)
	}
}
