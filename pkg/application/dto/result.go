package dto

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"
)

// DistributionResult contains the complete output of a distribution run
type DistributionResult struct {
	AllocationDetail []AllocationDetail `json:"allocationDetail" yaml:"allocationDetail"`
	StoreSummary     []StoreSummary     `json:"storeSummary" yaml:"storeSummary"`
	PerStoreAnalysis []StoreAnalysis    `json:"perStoreAnalysis" yaml:"perStoreAnalysis"`
	Transfers        []Transfer         `json:"transfers" yaml:"transfers"`
	TraceLog         []TraceEntry       `json:"traceLog" yaml:"traceLog"`
	CheckSum         CheckSum           `json:"checkSum" yaml:"checkSum"`
	Passes           []PassReport       `json:"passes" yaml:"passes"`
	Curves           []Curve            `json:"curves" yaml:"curves"`
	TopStore         string             `json:"topStore" yaml:"topStore"`
	SecondStore      string             `json:"secondStore,omitempty" yaml:"secondStore,omitempty"`
	LargeStores      []string           `json:"largeStores" yaml:"largeStores"`
}

// AllocationDetail is one SKU's final allocation to one store, with its base apportionment
type AllocationDetail struct {
	SKU        string          `json:"sku" yaml:"sku"`
	Category   string          `json:"category" yaml:"category"`
	Color      string          `json:"color" yaml:"color"`
	ColorName  string          `json:"colorName,omitempty" yaml:"colorName,omitempty"`
	Size       string          `json:"size" yaml:"size"`
	Store      string          `json:"store" yaml:"store"`
	Units      int64           `json:"units" yaml:"units"`
	BaseUnits  int64           `json:"baseUnits" yaml:"baseUnits"`
	ExactShare decimal.Decimal `json:"exactShare" yaml:"exactShare"`
	Residue    decimal.Decimal `json:"residue" yaml:"residue"`
	Adjusted   bool            `json:"adjusted" yaml:"adjusted"`
	Warehouses string          `json:"warehouses" yaml:"warehouses"`
	Origin     string          `json:"origin,omitempty" yaml:"origin,omitempty"`
	Season     string          `json:"season,omitempty" yaml:"season,omitempty"`
	Priority   int             `json:"priority" yaml:"priority"`
}

// StoreSummary compares a store's expected and realised share
type StoreSummary struct {
	Store         string          `json:"store" yaml:"store"`
	TotalUnits    int64           `json:"totalUnits" yaml:"totalUnits"`
	ExpectedShare decimal.Decimal `json:"expectedShare" yaml:"expectedShare"`
	RealShare     decimal.Decimal `json:"realShare" yaml:"realShare"`
	Deviation     decimal.Decimal `json:"deviation" yaml:"deviation"`
	Large         bool            `json:"large" yaml:"large"`
}

// StoreAnalysis is the curve health of one store
type StoreAnalysis struct {
	Store            string          `json:"store" yaml:"store"`
	ShareWeight      decimal.Decimal `json:"shareWeight" yaml:"shareWeight"`
	Stock            int64           `json:"stock" yaml:"stock"`
	CompleteCurves   int             `json:"completeCurves" yaml:"completeCurves"`
	IncompleteCurves int             `json:"incompleteCurves" yaml:"incompleteCurves"`
	IsOversupplied   bool            `json:"isOversupplied" yaml:"isOversupplied"`
	SuggestedAction  string          `json:"suggestedAction" yaml:"suggestedAction"`
}

// Transfer is one planned movement
type Transfer struct {
	SKU         string `json:"sku" yaml:"sku"`
	Category    string `json:"category" yaml:"category"`
	Size        string `json:"size" yaml:"size"`
	Color       string `json:"color" yaml:"color"`
	Origin      string `json:"origin" yaml:"origin"`
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Units       int64  `json:"units" yaml:"units"`
	Reason      string `json:"reason" yaml:"reason"`
	Priority    int    `json:"priority" yaml:"priority"`
	Season      string `json:"season,omitempty" yaml:"season,omitempty"`
}

// TraceEntry is one audit record
type TraceEntry struct {
	Seq     int            `json:"seq" yaml:"seq"`
	Rule    string         `json:"rule" yaml:"rule"`
	Level   string         `json:"level" yaml:"level"`
	Message string         `json:"message" yaml:"message"`
	SKU     string         `json:"sku,omitempty" yaml:"sku,omitempty"`
	Store   string         `json:"store,omitempty" yaml:"store,omitempty"`
	Reason  string         `json:"reason,omitempty" yaml:"reason,omitempty"`
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}

// CheckSum reconciles original and distributed units
type CheckSum struct {
	Original    int64 `json:"original" yaml:"original"`
	Distributed int64 `json:"distributed" yaml:"distributed"`
	Difference  int64 `json:"difference" yaml:"difference"`
	Valid       bool  `json:"valid" yaml:"valid"`
}

// PassReport summarises one rule pass
type PassReport struct {
	Rule         string `json:"rule" yaml:"rule"`
	Description  string `json:"description" yaml:"description"`
	MovedUnits   int64  `json:"movedUnits" yaml:"movedUnits"`
	Conserved    bool   `json:"conserved" yaml:"conserved"`
	Violations   int    `json:"violations" yaml:"violations"`
	TraceEntries int    `json:"traceEntries" yaml:"traceEntries"`
}

// Curve describes one detected product curve
type Curve struct {
	Category      string   `json:"category" yaml:"category"`
	Color         string   `json:"color" yaml:"color"`
	ColorName     string   `json:"colorName,omitempty" yaml:"colorName,omitempty"`
	Sizes         []string `json:"sizes" yaml:"sizes"`
	TotalQuantity int64    `json:"totalQuantity" yaml:"totalQuantity"`
	Eligible      bool     `json:"eligible" yaml:"eligible"`
}

// Fingerprint hashes the canonical JSON encoding of the result. Equal inputs
// produce equal fingerprints.
func (r *DistributionResult) Fingerprint() (string, error) {
	encoded, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return fmt.Sprintf("%016x", xxh3.Hash(encoded)), nil
}

// TransfersTotal returns the units moved by all transfers
func (r *DistributionResult) TransfersTotal() int64 {
	var total int64
	for _, t := range r.Transfers {
		total += t.Units
	}
	return total
}

// Warnings returns the trace entries at warning level or above
func (r *DistributionResult) Warnings() []TraceEntry {
	var out []TraceEntry
	for _, e := range r.TraceLog {
		if e.Level != "info" {
			out = append(out, e)
		}
	}
	return out
}
