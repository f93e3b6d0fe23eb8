package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/storealloc/pkg/application/services/distribution"
	testhelpers "github.com/vsinha/storealloc/pkg/infrastructure/testing"
)

func TestNop(t *testing.T) {
	n := NewNop()
	assert.NotPanics(t, func() {
		n.ObserveRun(time.Second, true)
		n.ObservePass("R1", 10, true)
		n.ObserveTransfers(1, 2)
		n.ObserveUnits(3, 3)
	})
}

func TestPrometheus_Observations(t *testing.T) {
	p := NewPrometheus("")

	p.ObserveRun(5*time.Millisecond, true)
	p.ObserveRun(5*time.Millisecond, false)
	p.ObservePass("R1_BASE_APPORTIONMENT", 40, true)
	p.ObservePass("R2_CURVE_COMPLETENESS", 3, false)
	p.ObservePass("R2_CURVE_COMPLETENESS", 2, true)
	p.ObserveTransfers(4, 25)
	p.ObserveUnits(25, 25)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("false")))
	assert.Equal(t, 40.0, testutil.ToFloat64(p.passMovedUnits.WithLabelValues("R1_BASE_APPORTIONMENT")))
	assert.Equal(t, 5.0, testutil.ToFloat64(p.passMovedUnits.WithLabelValues("R2_CURVE_COMPLETENESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.passViolations.WithLabelValues("R2_CURVE_COMPLETENESS")))
	assert.Equal(t, 4.0, testutil.ToFloat64(p.transfers))
	assert.Equal(t, 25.0, testutil.ToFloat64(p.transferUnits))
	assert.Equal(t, 25.0, testutil.ToFloat64(p.units.WithLabelValues("distributed")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.runDuration))
}

func TestPrometheus_WithDistributionService(t *testing.T) {
	p := NewPrometheus("test")
	scenario := testhelpers.BuildSimpleTestData()

	service := distribution.NewService(distribution.DefaultConfig(), distribution.WithMetrics(p))
	result, err := service.Distribute(context.Background(), distribution.Input{
		Stock:         scenario.Stock,
		Participation: scenario.Participation,
		Priorities:    scenario.Priorities,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("true")))
	assert.Equal(t, float64(result.CheckSum.Original), testutil.ToFloat64(p.units.WithLabelValues("original")))
	assert.Equal(t, float64(len(result.Transfers)), testutil.ToFloat64(p.transfers))
	assert.Equal(t, 12, testutil.CollectAndCount(p.passMovedUnits))

	path := filepath.Join(t.TempDir(), "storealloc.prom")
	require.NoError(t, p.WriteTextfile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "test_runs_total{valid=\"true\"} 1")
	assert.Contains(t, string(content), "test_transfers_units_total")
}
