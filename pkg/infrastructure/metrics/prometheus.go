package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/storealloc/pkg/application/services/distribution"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "storealloc"

// Prometheus records run metrics in a private registry that can be dumped in the
// node-exporter textfile format after a batch run.
type Prometheus struct {
	registry *prometheus.Registry

	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	passMovedUnits *prometheus.CounterVec
	passViolations *prometheus.CounterVec
	transfers      prometheus.Counter
	transferUnits  prometheus.Counter
	units          *prometheus.GaugeVec
}

var _ distribution.MetricsRecorder = (*Prometheus)(nil)

// NewPrometheus creates a recorder. An empty namespace uses DefaultNamespace.
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total distribution runs by checksum validity.",
		}, []string{"valid"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of distribution runs in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}),
		passMovedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rules",
			Name:      "moved_units_total",
			Help:      "Units placed or moved by each rule pass.",
		}, []string{"rule"}),
		passViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rules",
			Name:      "conservation_violations_total",
			Help:      "Rule passes after which units were not conserved.",
		}, []string{"rule"}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfers",
			Name:      "planned_total",
			Help:      "Planned transfer instructions.",
		}),
		transferUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfers",
			Name:      "units_total",
			Help:      "Units covered by planned transfers.",
		}),
		units: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "units",
			Help:      "Units in the last run by kind (original, distributed).",
		}, []string{"kind"}),
	}

	p.registry.MustRegister(p.runs, p.runDuration, p.passMovedUnits, p.passViolations,
		p.transfers, p.transferUnits, p.units)
	return p
}

// Registry exposes the private registry
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveRun records a completed run
func (p *Prometheus) ObserveRun(duration time.Duration, valid bool) {
	p.runs.WithLabelValues(strconv.FormatBool(valid)).Inc()
	p.runDuration.Observe(duration.Seconds())
}

// ObservePass records one rule pass
func (p *Prometheus) ObservePass(rule string, movedUnits int64, conserved bool) {
	p.passMovedUnits.WithLabelValues(rule).Add(float64(movedUnits))
	if !conserved {
		p.passViolations.WithLabelValues(rule).Inc()
	}
}

// ObserveTransfers records the planned transfers
func (p *Prometheus) ObserveTransfers(count int, units int64) {
	p.transfers.Add(float64(count))
	p.transferUnits.Add(float64(units))
}

// ObserveUnits records the checksum totals
func (p *Prometheus) ObserveUnits(original, distributed int64) {
	p.units.WithLabelValues("original").Set(float64(original))
	p.units.WithLabelValues("distributed").Set(float64(distributed))
}

// WriteTextfile writes all metrics to path in the text exposition format
func (p *Prometheus) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
