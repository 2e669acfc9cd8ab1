package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var scoringFaultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "discovery_engine_scoring_faults_total",
	Help: "Total per-sequence scoring failures replaced by the default result",
})

func init() {
	prometheus.MustRegister(scoringFaultsTotal)
}

func recordScoringFault() {
	scoringFaultsTotal.Inc()
}
