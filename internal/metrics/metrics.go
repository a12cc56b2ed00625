package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels recomputes that produced a result.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels recomputes rejected for bad filter input.
	OutcomeInvalid = "invalid"
	// OutcomeError labels recomputes that failed for any other reason.
	OutcomeError = "error"

	TransportHTTP = "http"
	TransportGRPC = "grpc"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	recomputesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sales_insights",
			Name:      "recomputes_total",
			Help:      "Total number of dashboard recomputes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	recomputeDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sales_insights",
			Name:      "recompute_seconds",
			Help:      "Dashboard recompute latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sales_insights",
			Name:      "exports_total",
			Help:      "Total number of CSV exports, partitioned by transport.",
		},
		[]string{"transport"},
	)

	datasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sales_insights",
			Name:      "dataset_rows",
			Help:      "Number of rows in the generated sales table.",
		},
	)

	resultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sales_insights",
			Name:      "result_cache_total",
			Help:      "Result cache lookups, partitioned by hit or miss.",
		},
		[]string{"result"},
	)
)

// Register attaches sales-insights collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		recomputesTotal,
		recomputeDurationSeconds,
		exportsTotal,
		datasetRows,
		resultCacheTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRecompute records a recompute duration and outcome label.
func ObserveRecompute(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeInvalid:
	default:
		outcome = OutcomeError
	}
	recomputesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	recomputeDurationSeconds.Observe(duration.Seconds())
}

// IncExport counts a CSV export served over transport.
func IncExport(transport string) {
	exportsTotal.WithLabelValues(transport).Inc()
}

// SetDatasetRows publishes the size of the generated table.
func SetDatasetRows(n int) {
	datasetRows.Set(float64(n))
}

// IncResultCache counts a result cache lookup.
func IncResultCache(hit bool) {
	label := CacheMiss
	if hit {
		label = CacheHit
	}
	resultCacheTotal.WithLabelValues(label).Inc()
}
