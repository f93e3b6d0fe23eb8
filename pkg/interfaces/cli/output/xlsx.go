package output

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/storealloc/pkg/application/dto"
)

const defaultSheet = "Sheet1"

// generateXLSXOutput writes every table as a sheet of one workbook
func generateXLSXOutput(result *dto.DistributionResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for XLSX format")
	}
	filename, err := prepare(config.OutputDir, XLSXFile)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, t := range resultTables(result) {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, t.name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", t.name, err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.name, err)
		}
		if err := writeSheet(f, t, bold); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", t.name, err)
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

func writeSheet(f *excelize.File, t table, headerStyle int) error {
	header := make([]any, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(t.name, 1, 1, headerStyle); err != nil {
		return err
	}

	for r, row := range t.rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = xlsxCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.name, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

func xlsxCell(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}
