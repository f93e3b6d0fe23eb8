package parser

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/infrastructure/tabular"
)

// Stage is the trace id used for parser reports
const Stage = "PARSER"

// minStockRowCells is the shortest stock row considered
const minStockRowCells = 6

// Discard reasons for stock rows
const (
	DiscardShortRow            = "short_row"
	DiscardEmptyCategory       = "empty_category"
	DiscardEmptySize           = "empty_size"
	DiscardInvalidQuantity     = "invalid_quantity"
	DiscardNonPositiveQuantity = "non_positive_quantity"
)

// Options holds parser tunables
type Options struct {
	// Tolerance is the accepted distance of the weight sum from 100
	Tolerance decimal.Decimal
	// FractionCutoff marks weights given as fractions: a raw sum below it is scaled by 100
	FractionCutoff decimal.Decimal
	// DefaultPriority applies to unlisted categories and unreadable priorities
	DefaultPriority int
}

// DefaultOptions returns the standard parser options
func DefaultOptions() Options {
	return Options{
		Tolerance:       decimal.RequireFromString("0.5"),
		FractionCutoff:  decimal.NewFromInt(10),
		DefaultPriority: entities.DefaultPriority,
	}
}

// Parser turns untyped tables into typed records
type Parser struct {
	options Options
}

// NewParser creates a parser
func NewParser(options Options) *Parser {
	return &Parser{options: options}
}

// StockReport counts parsed and discarded stock rows
type StockReport struct {
	Rows      int
	Valid     int
	Discarded map[string]int
}

// TraceEntry renders the report for the trace log
func (r StockReport) TraceEntry() entities.TraceEntry {
	reasons := make([]string, 0, len(r.Discarded))
	for reason := range r.Discarded {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	context := map[string]any{"rows": r.Rows, "valid": r.Valid}
	discarded := 0
	for _, reason := range reasons {
		context[reason] = r.Discarded[reason]
		discarded += r.Discarded[reason]
	}
	return entities.NewTrace(Stage,
		fmt.Sprintf("stock parsed: %d valid rows, %d discarded", r.Valid, discarded), context)
}

// ParseStock parses the stock table. Rows failing validation are discarded and counted;
// the table is rejected only when no valid row remains.
func (p *Parser) ParseStock(table *tabular.Table) ([]entities.StockRecord, StockReport, error) {
	report := StockReport{Discarded: make(map[string]int)}
	if len(table.Header) == 0 || len(table.Rows) == 0 {
		return nil, report, &ParseError{Table: table.Name, Err: ErrEmptyTable}
	}

	columns, missing := StockColumns().Resolve(table.Header)
	if len(missing) > 0 {
		return nil, report, &ParseError{Table: table.Name, Column: joinFields(missing), Err: ErrMissingColumn}
	}

	records := make([]entities.StockRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		report.Rows++
		if len(row) < minStockRowCells {
			report.Discarded[DiscardShortRow]++
			continue
		}

		cell := func(field Field) string {
			return tabular.Cell(row, columns.Index(field))
		}
		if cell(FieldCategory) == "" {
			report.Discarded[DiscardEmptyCategory]++
			continue
		}
		if cell(FieldSize) == "" {
			report.Discarded[DiscardEmptySize]++
			continue
		}
		quantity, err := parseQuantity(cell(FieldQuantity))
		if err != nil {
			report.Discarded[DiscardInvalidQuantity]++
			continue
		}
		if quantity <= 0 {
			report.Discarded[DiscardNonPositiveQuantity]++
			continue
		}

		record, err := entities.NewStockRecord(
			cell(FieldWarehouseCode), cell(FieldWarehouseName),
			cell(FieldColorCode), cell(FieldColorName),
			cell(FieldSize), quantity,
			cell(FieldCategory), cell(FieldOrigin), cell(FieldSeason),
		)
		if err != nil {
			report.Discarded[DiscardInvalidQuantity]++
			continue
		}
		records = append(records, *record)
	}

	report.Valid = len(records)
	if report.Valid == 0 {
		return nil, report, &ParseError{Table: table.Name, Err: ErrNoValidRows}
	}
	return records, report, nil
}

// parseQuantity accepts integers, including integral decimals such as "12.0"
func parseQuantity(raw string) (entities.Quantity, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return entities.Quantity(n), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not a number", raw)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("quantity %q is not an integer", raw)
	}
	return entities.Quantity(f), nil
}

// ParticipationReport describes how weights were normalised
type ParticipationReport struct {
	Stores  int
	Skipped int
	Scaled  bool
	Sum     decimal.Decimal
}

// TraceEntry renders the report for the trace log
func (r ParticipationReport) TraceEntry() entities.TraceEntry {
	return entities.NewTrace(Stage,
		fmt.Sprintf("participation parsed: %d stores, sum %s%%", r.Stores, r.Sum.StringFixed(2)),
		map[string]any{"stores": r.Stores, "skipped": r.Skipped, "scaled_from_fractions": r.Scaled, "sum": r.Sum.String()})
}

// ParseParticipation parses store weights. Weights may be percentages or fractions;
// a raw sum below the fraction cutoff is scaled by 100. The normalised sum must lie
// within the tolerance of 100.
func (p *Parser) ParseParticipation(table *tabular.Table) (*entities.Participation, ParticipationReport, error) {
	var report ParticipationReport
	if len(table.Header) == 0 || len(table.Rows) == 0 {
		return nil, report, &ParseError{Table: table.Name, Err: ErrEmptyTable}
	}

	columns, missing := ParticipationColumns().Resolve(table.Header)
	if len(missing) > 0 {
		if len(table.Header) != 2 {
			return nil, report, &ParseError{Table: table.Name, Column: joinFields(missing), Err: ErrMissingColumn}
		}
		columns = Columns{FieldStore: 0, FieldShare: 1}
	}

	var weights []entities.StoreWeight
	seen := make(map[string]int)
	rawSum := decimal.Zero
	for i, row := range table.Rows {
		store := tabular.Cell(row, columns.Index(FieldStore))
		share, err := parseShare(tabular.Cell(row, columns.Index(FieldShare)))
		if store == "" || err != nil || !share.IsPositive() {
			report.Skipped++
			continue
		}
		if first, dup := seen[store]; dup {
			return nil, report, &ParseError{
				Table: table.Name, Row: i + 2, Column: string(FieldStore),
				Err: fmt.Errorf("%w: %s already listed on row %d", ErrDuplicateStore, store, first),
			}
		}
		seen[store] = i + 2
		weights = append(weights, entities.StoreWeight{Store: store, Weight: share})
		rawSum = rawSum.Add(share)
	}

	if len(weights) == 0 {
		return nil, report, &ParseError{Table: table.Name, Err: ErrNoValidRows}
	}

	if rawSum.LessThan(p.options.FractionCutoff) {
		report.Scaled = true
		for i := range weights {
			weights[i].Weight = weights[i].Weight.Mul(hundred)
		}
		rawSum = rawSum.Mul(hundred)
	}
	report.Stores = len(weights)
	report.Sum = rawSum

	if rawSum.Sub(hundred).Abs().GreaterThan(p.options.Tolerance) {
		return nil, report, &ParseError{
			Table: table.Name,
			Err:   fmt.Errorf("%w: got %s%%", ErrParticipationSum, rawSum.StringFixed(2)),
		}
	}

	participation, err := entities.NewParticipation(weights)
	if err != nil {
		return nil, report, &ParseError{Table: table.Name, Err: err}
	}
	return participation, report, nil
}

var hundred = decimal.NewFromInt(100)

// parseShare reads "12.5", "12,5" or "12.5%"
func parseShare(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return decimal.NewFromString(raw)
}

// ParsePriorities parses the category priority table. Unreadable priorities fall back
// to the default priority; rows without a category are skipped.
func (p *Parser) ParsePriorities(table *tabular.Table) (*entities.Priorities, error) {
	if len(table.Header) == 0 || len(table.Rows) == 0 {
		return nil, &ParseError{Table: table.Name, Err: fmt.Errorf("%w: %w", ErrInvalidPriorityFile, ErrEmptyTable)}
	}

	columns, missing := PriorityColumns().Resolve(table.Header)
	if len(missing) > 0 {
		return nil, &ParseError{
			Table:  table.Name,
			Column: joinFields(missing),
			Err:    fmt.Errorf("%w: %w", ErrInvalidPriorityFile, ErrMissingColumn),
		}
	}

	var entries []entities.PriorityEntry
	for _, row := range table.Rows {
		category := tabular.Cell(row, columns.Index(FieldCategory))
		if category == "" {
			continue
		}
		priority, err := strconv.Atoi(tabular.Cell(row, columns.Index(FieldPriority)))
		if err != nil || priority <= 0 {
			priority = p.options.DefaultPriority
		}
		entries = append(entries, entities.PriorityEntry{Category: category, Priority: priority})
	}

	if len(entries) == 0 {
		return nil, &ParseError{Table: table.Name, Err: fmt.Errorf("%w: %w", ErrInvalidPriorityFile, ErrNoValidRows)}
	}
	return entities.NewPriorities(entries, p.options.DefaultPriority), nil
}

// DefaultPriorities is used when no priority table is supplied
func (p *Parser) DefaultPriorities() *entities.Priorities {
	return entities.NewPriorities(nil, p.options.DefaultPriority)
}

func joinFields(fields []Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
