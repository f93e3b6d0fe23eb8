package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// sharePrecision is the number of decimal places kept for observed shares
const sharePrecision = 4

// StoreShare compares a store's expected share with the share it actually received
type StoreShare struct {
	Store     string
	Units     entities.Quantity
	Expected  decimal.Decimal
	Observed  decimal.Decimal
	Deviation decimal.Decimal
	Large     bool
}

// ValidationReport contains the reconciliation of one distribution
type ValidationReport struct {
	CheckSum   entities.CheckSum
	Shares     []StoreShare
	Violations []entities.ConservationViolation
}

// Validator reconciles the final allocation against the original stock
type Validator struct {
	largeStoreThreshold decimal.Decimal
}

// NewValidator creates a validator that marks stores above the threshold as large
func NewValidator(largeStoreThreshold decimal.Decimal) *Validator {
	return &Validator{largeStoreThreshold: largeStoreThreshold}
}

// Validate computes the checksum and per-store share deviation
func (v *Validator) Validate(stock entities.ConsolidatedStock, matrix *entities.AllocationMatrix, participation *entities.Participation) *ValidationReport {
	report := &ValidationReport{
		CheckSum:   entities.NewCheckSum(stock.TotalQuantity(), matrix.GrandTotal()),
		Shares:     make([]StoreShare, 0, participation.Len()),
		Violations: matrix.CheckConservation(stock),
	}

	distributed := decimal.NewFromInt(int64(report.CheckSum.Distributed))
	for _, w := range participation.Weights() {
		units := matrix.StoreTotal(w.Store)
		observed := decimal.Zero
		if distributed.IsPositive() {
			observed = decimal.NewFromInt(int64(units)).Mul(hundred).Div(distributed).Round(sharePrecision)
		}
		report.Shares = append(report.Shares, StoreShare{
			Store:     w.Store,
			Units:     units,
			Expected:  w.Weight,
			Observed:  observed,
			Deviation: observed.Sub(w.Weight),
			Large:     w.Weight.GreaterThan(v.largeStoreThreshold),
		})
	}

	return report
}
