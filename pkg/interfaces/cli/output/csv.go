package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/vsinha/storealloc/pkg/application/dto"
)

// generateCSVOutput writes one CSV file per table
func generateCSVOutput(result *dto.DistributionResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, t := range resultTables(result) {
		filename := filepath.Join(config.OutputDir, t.file)
		if err := writeCSV(t, filename); err != nil {
			return fmt.Errorf("failed to write %s CSV: %w", t.name, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.writer(), "💾 %s saved to: %s\n", t.name, filename)
		}
	}
	return nil
}

func writeCSV(t table, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.header); err != nil {
		return err
	}
	record := make([]string, len(t.header))
	for _, row := range t.rows {
		for i, v := range row {
			record[i] = csvCell(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

func csvCell(v any) string {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return fmt.Sprint(v)
}
