package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsStoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_engine_records_stored_total",
		Help: "Total records persisted by backend",
	}, []string{"backend"})

	recordsLostTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_engine_records_lost_total",
		Help: "Total records lost after both backends failed",
	})

	primaryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_engine_primary_failures_total",
		Help: "Total primary store failures that diverted records to the fallback",
	})

	duplicatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_engine_duplicate_sequences_total",
		Help: "Total likely-duplicate sequences observed by backend",
	}, []string{"backend"})
)

func init() {
	prometheus.MustRegister(recordsStoredTotal)
	prometheus.MustRegister(recordsLostTotal)
	prometheus.MustRegister(primaryFailuresTotal)
	prometheus.MustRegister(duplicatesTotal)

	// Initialize label values so counters appear at zero.
	recordsStoredTotal.WithLabelValues(BackendPrimary).Add(0)
	recordsStoredTotal.WithLabelValues(BackendFallback).Add(0)
	duplicatesTotal.WithLabelValues(BackendPrimary).Add(0)
	duplicatesTotal.WithLabelValues(BackendFallback).Add(0)
}

func recordStored(backend string) {
	recordsStoredTotal.WithLabelValues(backend).Inc()
}

func recordLost() {
	recordsLostTotal.Inc()
}

func recordPrimaryFailure() {
	primaryFailuresTotal.Inc()
}

func recordDuplicate(backend string) {
	duplicatesTotal.WithLabelValues(backend).Inc()
}
