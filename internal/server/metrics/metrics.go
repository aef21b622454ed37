// Package metrics holds the Prometheus instruments of the ledger server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ingestion outcomes, roster applies and operation latency.
type Metrics struct {
	Sightings         *prometheus.CounterVec
	Archives          *prometheus.CounterVec
	RosterApplies     prometheus.Counter
	RosterPlates      *prometheus.CounterVec
	TxRetries         prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	SnapshotFailures  prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

// New registers all instruments with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Sightings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "plateledger_sightings_total",
			Help: "Sighting submissions by outcome",
		}, []string{"outcome"}),
		Archives: f.NewCounterVec(prometheus.CounterOpts{
			Name: "plateledger_archives_total",
			Help: "Archive requests by outcome",
		}, []string{"outcome"}),
		RosterApplies: f.NewCounter(prometheus.CounterOpts{
			Name: "plateledger_roster_applies_total",
			Help: "Committed roster reconciliations",
		}),
		RosterPlates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "plateledger_roster_plates_total",
			Help: "Plates added to or removed from the own roster",
		}, []string{"change"}),
		TxRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "plateledger_tx_retries_total",
			Help: "Transactions retried after a serialization failure or deadlock",
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "plateledger_report_cache_hits_total",
			Help: "Report cache hits",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "plateledger_report_cache_misses_total",
			Help: "Report cache misses",
		}),
		SnapshotFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "plateledger_roster_snapshot_failures_total",
			Help: "Roster snapshots that could not be uploaded",
		}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plateledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

// ObserveOperation records the duration of op. Call with time.Now() taken
// at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
