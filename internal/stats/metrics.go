package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cyclesCompleted = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "discovery_engine_cycles_completed",
		Help: "Cycles completed since start",
	})

	sequencesProcessed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "discovery_engine_sequences_processed",
		Help: "Sequences drawn and scored since start",
	})

	validDiscoveries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "discovery_engine_valid_discoveries",
		Help: "Sequences that passed validation since start",
	})

	discoveryRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "discovery_engine_rate_sequences_per_second",
		Help: "Average sequences per second over the whole run",
	})
)

func init() {
	prometheus.MustRegister(cyclesCompleted)
	prometheus.MustRegister(sequencesProcessed)
	prometheus.MustRegister(validDiscoveries)
	prometheus.MustRegister(discoveryRate)
}

func publishTotals(t Totals) {
	cyclesCompleted.Set(float64(t.Cycles))
	sequencesProcessed.Set(float64(t.Items))
	validDiscoveries.Set(float64(t.Valid))
	discoveryRate.Set(t.Rate)
}
