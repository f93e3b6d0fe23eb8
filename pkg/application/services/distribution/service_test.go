package distribution

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/storealloc/pkg/application/dto"
	"github.com/vsinha/storealloc/pkg/application/services/rules"
	"github.com/vsinha/storealloc/pkg/domain/entities"
	testhelpers "github.com/vsinha/storealloc/pkg/infrastructure/testing"
)

type recordingMetrics struct {
	mu        sync.Mutex
	runs      int
	valid     bool
	passes    []string
	transfers int
	original  int64
}

func (m *recordingMetrics) ObserveRun(_ time.Duration, valid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.valid = valid
}

func (m *recordingMetrics) ObservePass(rule string, _ int64, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passes = append(m.passes, rule)
}

func (m *recordingMetrics) ObserveTransfers(count int, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = count
}

func (m *recordingMetrics) ObserveUnits(original, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.original = original
}

func inputFor(s testhelpers.Scenario) Input {
	return Input{Stock: s.Stock, Participation: s.Participation, Priorities: s.Priorities}
}

func allocated(result *dto.DistributionResult, sku, store string) int64 {
	for _, row := range result.AllocationDetail {
		if row.SKU == sku && row.Store == store {
			return row.Units
		}
	}
	return 0
}

func TestService_ThousandUnitsAcrossFiveStores(t *testing.T) {
	scenario := testhelpers.BuildRetailTestData()
	require.Equal(t, entities.Quantity(1000), scenario.Total())

	result, err := NewService(DefaultConfig()).Distribute(context.Background(), inputFor(scenario))
	require.NoError(t, err)

	assert.True(t, result.CheckSum.Valid)
	assert.Equal(t, int64(1000), result.CheckSum.Original)
	assert.Equal(t, int64(1000), result.CheckSum.Distributed)
	assert.Equal(t, int64(0), result.CheckSum.Difference)

	var detailTotal int64
	for _, row := range result.AllocationDetail {
		require.Positive(t, row.Units)
		detailTotal += row.Units
	}
	assert.Equal(t, int64(1000), detailTotal)

	require.Len(t, result.Passes, 12)
	for _, p := range result.Passes {
		assert.True(t, p.Conserved, p.Rule)
	}

	require.Len(t, result.StoreSummary, 5)
	require.Len(t, result.PerStoreAnalysis, 5)
	assert.Equal(t, "PALERMO", result.TopStore)
	assert.Equal(t, "BELGRANO", result.SecondStore)
	assert.Len(t, result.Curves, 5)
	for _, w := range result.Warnings() {
		assert.NotEqual(t, "error", w.Level, w.Message)
		assert.NotEqual(t, "TRANSFERS", w.Rule, w.Message)
	}

	// every allocated unit is either already held by the store or arrives by transfer
	received := make(map[string]int64)
	for _, tr := range result.Transfers {
		received[tr.SKU+"@"+tr.Destination] += tr.Units
	}
	held := map[string]int64{"GORRA_RED_U@PALERMO": 80}
	for _, color := range []string{"BLK", "BLU"} {
		for _, size := range []string{"38", "40", "42", "44", "46"} {
			held["JEANS_"+color+"_"+size+"@FLORES"] = 10
		}
	}
	for _, row := range result.AllocationDetail {
		key := row.SKU + "@" + row.Store
		assert.Equal(t, row.Units, min(row.Units, held[key])+received[key], key)
	}
}

func TestService_SimpleScenario(t *testing.T) {
	metrics := &recordingMetrics{}
	service := NewService(DefaultConfig(), WithMetrics(metrics))

	result, err := service.Distribute(context.Background(), inputFor(testhelpers.BuildSimpleTestData()))
	require.NoError(t, err)
	require.True(t, result.CheckSum.Valid)

	assert.Equal(t, int64(1), allocated(result, "REMERA_W_S", "A"))
	assert.Equal(t, int64(3), allocated(result, "REMERA_W_S", "B"))
	assert.Equal(t, int64(5), allocated(result, "REMERA_W_M", "B"))
	assert.Equal(t, int64(4), allocated(result, "REMERA_W_L", "B"))
	assert.Equal(t, int64(7), allocated(result, "GORRA_RED_U", "A"))
	assert.Equal(t, int64(3), allocated(result, "GORRA_RED_U", "B"))
	assert.Equal(t, int64(0), allocated(result, "GORRA_RED_U", "C"))

	assert.Equal(t, "REMERA_W_L", result.AllocationDetail[0].SKU, "higher priority categories come first")

	for _, tr := range result.Transfers {
		assert.Equal(t, "CENTRAL", tr.Origin)
		if tr.Destination == "B" && tr.Category == "REMERA" {
			assert.Equal(t, rules.ReasonTopStoreExcess, tr.Reason)
		}
		if tr.Destination == "B" && tr.Category == "GORRA" {
			assert.Equal(t, rules.ReasonBaseApportionment, tr.Reason)
		}
	}
	assert.Equal(t, int64(25), result.TransfersTotal())

	assert.Equal(t, 1, metrics.runs)
	assert.True(t, metrics.valid)
	assert.Len(t, metrics.passes, 12)
	assert.Equal(t, len(result.Transfers), metrics.transfers)
	assert.Equal(t, int64(25), metrics.original)
}

func TestService_IsDeterministic(t *testing.T) {
	service := NewService(DefaultConfig())

	first, err := service.Distribute(context.Background(), inputFor(testhelpers.BuildRetailTestData()))
	require.NoError(t, err)
	second, err := service.Distribute(context.Background(), inputFor(testhelpers.BuildRetailTestData()))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}

	firstPrint, err := first.Fingerprint()
	require.NoError(t, err)
	secondPrint, err := second.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, firstPrint, secondPrint)
	assert.Len(t, firstPrint, 16)
}

func TestService_RejectsEmptyInputs(t *testing.T) {
	service := NewService(DefaultConfig())
	scenario := testhelpers.BuildSimpleTestData()

	_, err := service.Distribute(context.Background(), Input{Participation: scenario.Participation})
	assert.ErrorIs(t, err, ErrNoStock)

	_, err = service.Distribute(context.Background(), Input{Stock: scenario.Stock})
	assert.ErrorIs(t, err, ErrNoStores)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = service.Distribute(ctx, inputFor(scenario))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_NotesLeadTheTrace(t *testing.T) {
	in := inputFor(testhelpers.BuildSimpleTestData())
	in.Notes = []entities.TraceEntry{entities.NewTrace("PARSER", "parsed 4 stock rows", nil)}

	result, err := NewService(DefaultConfig()).Distribute(context.Background(), in)
	require.NoError(t, err)

	require.NotEmpty(t, result.TraceLog)
	assert.Equal(t, 1, result.TraceLog[0].Seq)
	assert.Equal(t, "PARSER", result.TraceLog[0].Rule)
	assert.Equal(t, StageChecksum, result.TraceLog[len(result.TraceLog)-1].Rule)
}

func TestService_LargeStoreLockIsReportedAsShortfall(t *testing.T) {
	scenario := testhelpers.BuildRetailTestData()
	config := DefaultConfig()
	config.EnforceLargeStoreLock = true

	result, err := NewService(config).Distribute(context.Background(), inputFor(scenario))
	require.NoError(t, err)
	assert.True(t, result.CheckSum.Valid)

	for _, tr := range result.Transfers {
		assert.NotEqual(t, "StoreExcess", tr.Source, "all five stores are large, none may donate")
	}

	var shortfalls int
	for _, w := range result.Warnings() {
		if w.Rule == "TRANSFERS" {
			shortfalls++
		}
	}
	assert.Positive(t, shortfalls)
}
