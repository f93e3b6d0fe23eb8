package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// Suggested actions for a store
const (
	ActionRedistribute   = "redistribute surplus"
	ActionCompleteCurves = "complete curves"
	ActionNone           = "none"
)

// StoreAnalysis summarises the curve health of one store's allocation
type StoreAnalysis struct {
	Store            string
	ShareWeight      decimal.Decimal
	Stock            entities.Quantity
	CompleteCurves   int
	IncompleteCurves int
	Oversupplied     bool
	SuggestedAction  string
}

// StoreAnalyzer evaluates each store's allocation against the product curves
type StoreAnalyzer struct {
	oversupplyCurves entities.Quantity
}

// NewStoreAnalyzer creates an analyzer. A store is oversupplied when it holds more than
// oversupplyCurves complete curves of any product.
func NewStoreAnalyzer(oversupplyCurves entities.Quantity) *StoreAnalyzer {
	return &StoreAnalyzer{oversupplyCurves: oversupplyCurves}
}

// Analyze returns one analysis per store in participation order.
// Only curves with more than one size are counted.
func (a *StoreAnalyzer) Analyze(matrix *entities.AllocationMatrix, curves []*entities.Curve, participation *entities.Participation) []StoreAnalysis {
	analyses := make([]StoreAnalysis, 0, participation.Len())

	for _, w := range participation.Weights() {
		analysis := StoreAnalysis{
			Store:       w.Store,
			ShareWeight: w.Weight,
			Stock:       matrix.StoreTotal(w.Store),
		}

		for _, curve := range curves {
			if !curve.Eligible() {
				continue
			}
			present := len(curve.PresentSizes(matrix, w.Store))
			switch {
			case present == len(curve.Sizes):
				analysis.CompleteCurves++
				if curve.CompleteCount(matrix, w.Store) > a.oversupplyCurves {
					analysis.Oversupplied = true
				}
			case present > 0:
				analysis.IncompleteCurves++
			}
		}

		switch {
		case analysis.Oversupplied:
			analysis.SuggestedAction = ActionRedistribute
		case analysis.IncompleteCurves > 0:
			analysis.SuggestedAction = ActionCompleteCurves
		default:
			analysis.SuggestedAction = ActionNone
		}

		analyses = append(analyses, analysis)
	}

	return analyses
}
