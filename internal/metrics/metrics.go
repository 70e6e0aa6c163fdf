// Package metrics holds the Prometheus instruments used across sitequery.
// All collectors are registered with the global registry, so serving
// promhttp.Handler() is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitequery"

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Wall time of one fetch strategy, including row scanning.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"})

	QueryRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Rows returned by the most recent run of a fetch strategy.",
		}, []string{"strategy"})

	QueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Cumulative number of failed fetch strategy runs.",
		}, []string{"strategy"})

	SeedRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_rows_total",
			Help:      "Cumulative number of rows inserted by the seeder.",
		}, []string{"table"})
)

func init() {
	prometheus.MustRegister(
		QueryDuration,
		QueryRows,
		QueryErrorsTotal,
		SeedRowsTotal,
	)
}
