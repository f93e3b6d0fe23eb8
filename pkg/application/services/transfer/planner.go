package transfer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/storealloc/pkg/application/services/rules"
	"github.com/vsinha/storealloc/pkg/domain/entities"
)

// Stage is the trace id used by the planner
const Stage = "TRANSFERS"

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the diagnostics logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLargeStoreLock prevents large stores from donating their excess
func WithLargeStoreLock(enabled bool) Option {
	return func(p *Planner) {
		p.lockLargeStores = enabled
	}
}

// Input is everything the planner reads
type Input struct {
	Matrix        *entities.AllocationMatrix
	Stock         entities.ConsolidatedStock
	Order         []entities.SKU
	Participation *entities.Participation
	Priorities    *entities.Priorities
	LargeStores   []string
	Trace         *entities.TraceLog
}

// Planner turns the final allocation into movements from physical stock
type Planner struct {
	lockLargeStores bool
	logger          *zap.Logger
}

// NewPlanner creates a transfer planner
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan emits transfers SKU by SKU in the given order and destination by destination in
// participation order. A store that already holds enough of an SKU needs no transfer.
// Shortfalls are filled from other stores' excess, by store name, and then from
// warehouses that are not stores, in recorded order. Uncovered shortfalls are traced
// as warnings.
func (p *Planner) Plan(in Input) []entities.Transfer {
	transfers := make([]entities.Transfer, 0)
	stores := in.Participation.Stores()
	donors := in.Participation.SortedStores()
	locked := make(map[string]bool)
	if p.lockLargeStores {
		for _, store := range in.LargeStores {
			locked[store] = true
		}
	}

	var shortfalls int
	for _, sku := range in.Order {
		consolidated, ok := in.Stock[sku]
		if !ok {
			continue
		}
		sp := newSKUPlan(consolidated, in.Matrix, stores)

		for _, dest := range stores {
			allocated := in.Matrix.Get(sku, dest)
			if allocated <= 0 {
				continue
			}
			own := sp.existing[dest]
			if own >= allocated {
				in.Trace.Record(Stage,
					fmt.Sprintf("%s at %s already balanced (%d held, %d allocated)", sku, dest, own, allocated),
					map[string]any{"sku": sku.String(), "store": dest, "held": int64(own), "allocated": int64(allocated)})
				continue
			}

			reason, found := in.Trace.ReasonFor(sku, dest)
			if !found {
				reason = rules.ReasonBaseApportionment
			}
			base := entities.Transfer{
				SKU:         sku,
				Size:        sku.Size,
				Color:       consolidated.DisplayColor(),
				Destination: dest,
				Reason:      reason,
				Priority:    in.Priorities.Of(sku.Category),
				Season:      consolidated.Season,
			}

			shortfall := allocated - own
			for _, donor := range donors {
				if shortfall == 0 {
					break
				}
				if donor == dest || locked[donor] {
					continue
				}
				units := min(shortfall, sp.excess[donor])
				if units <= 0 {
					continue
				}
				t := base
				t.Origin, t.Units, t.Source = donor, units, entities.FromStoreExcess
				transfers = append(transfers, t)
				sp.excess[donor] -= units
				shortfall -= units
			}

			for i := range sp.pure {
				if shortfall == 0 {
					break
				}
				units := min(shortfall, sp.pure[i].Quantity)
				if units <= 0 {
					continue
				}
				t := base
				t.Origin, t.Units, t.Source = sp.pure[i].Name, units, entities.FromWarehouse
				transfers = append(transfers, t)
				sp.pure[i].Quantity -= units
				shortfall -= units
			}

			if shortfall > 0 {
				shortfalls++
				in.Trace.Warn(Stage,
					fmt.Sprintf("shortfall of %d units of %s for %s not covered by available stock", shortfall, sku, dest),
					map[string]any{"sku": sku.String(), "store": dest, "missing": int64(shortfall)})
				p.logger.Warn("uncovered transfer shortfall",
					zap.String("sku", sku.String()), zap.String("store", dest), zap.Int64("missing", int64(shortfall)))
			}
		}
	}

	in.Trace.Record(Stage, fmt.Sprintf("generated %d transfers", len(transfers)),
		map[string]any{"transfers": len(transfers), "shortfalls": shortfalls})
	p.logger.Debug("transfer plan built", zap.Int("transfers", len(transfers)), zap.Int("shortfalls", shortfalls))

	return transfers
}

// skuPlan is the working copy of one SKU's physical stock
type skuPlan struct {
	existing map[string]entities.Quantity
	excess   map[string]entities.Quantity
	pure     []entities.WarehouseStock
}

func newSKUPlan(consolidated *entities.ConsolidatedSKU, matrix *entities.AllocationMatrix, stores []string) *skuPlan {
	sp := &skuPlan{
		existing: make(map[string]entities.Quantity),
		excess:   make(map[string]entities.Quantity),
	}

	for _, w := range consolidated.CloneWarehouses() {
		if store, ok := matchStore(w.Name, stores); ok {
			sp.existing[store] += w.Quantity
			continue
		}
		sp.pure = append(sp.pure, w)
	}

	for store, held := range sp.existing {
		if extra := held - matrix.Get(consolidated.SKU, store); extra > 0 {
			sp.excess[store] = extra
		}
	}
	return sp
}

// matchStore finds the participating store a warehouse name refers to, ignoring case
func matchStore(warehouse string, stores []string) (string, bool) {
	for _, store := range stores {
		if strings.EqualFold(strings.TrimSpace(warehouse), store) {
			return store, true
		}
	}
	return "", false
}
