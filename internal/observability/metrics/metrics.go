// Package metrics registers the prometheus instruments for the
// reconciliation pipeline. Init is safe to call more than once; every
// observe helper is a no-op until Init has run.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "miningledger_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	reconcileRuns    *prometheus.CounterVec
	reconcileLatency *prometheus.HistogramVec

	siteFailures *prometheus.CounterVec
	partialFarms prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the pipeline metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		reconcileRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_runs_total",
				Help: "Total farm reconciliation runs by result",
			},
			[]string{"result"},
		)
		reconcileLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_latency_seconds",
				Help:    "Farm reconciliation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		siteFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "site_failures_total",
				Help: "Total failed site computations by farm",
			},
			[]string{"farm"},
		)
		partialFarms = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "partial_farm_results_total",
				Help: "Total farm computations that returned partial results",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total balance sheet exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Balance sheet export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			reconcileRuns,
			reconcileLatency,
			siteFailures,
			partialFarms,
			exportTotal,
			exportLatency,
		)
	})
}

// ObserveReconcile records one farm reconciliation run.
func ObserveReconcile(result string, seconds float64) {
	if reconcileRuns == nil {
		return
	}
	reconcileRuns.WithLabelValues(result).Inc()
	reconcileLatency.WithLabelValues(result).Observe(seconds)
}

// IncSiteFailure records a failed site computation.
func IncSiteFailure(farm string) {
	if siteFailures == nil {
		return
	}
	siteFailures.WithLabelValues(farm).Inc()
}

// IncPartialFarm records a farm run that lost at least one site.
func IncPartialFarm() {
	if partialFarms == nil {
		return
	}
	partialFarms.Inc()
}

// ObserveExport records one balance sheet export.
func ObserveExport(format, result string, seconds float64) {
	if exportTotal == nil {
		return
	}
	exportTotal.WithLabelValues(format, result).Inc()
	exportLatency.WithLabelValues(format).Observe(seconds)
}
