package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StrategySelected counts resource set queries by filtering strategy.
	StrategySelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataservice_filtering_strategy_total",
			Help: "Total number of resource set queries by filtering strategy",
		},
		[]string{"strategy"},
	)
	// RowsScanned counts rows materialised to evaluate filters in memory.
	RowsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataservice_rows_scanned_total",
			Help: "Total number of rows materialised for in-memory filtering",
		},
		[]string{"resource_type"},
	)
	// QueryDuration is the latency of runtime entry points.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataservice_query_duration_seconds",
			Help:    "Query execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
)
