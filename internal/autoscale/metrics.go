package autoscale

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchSizeCurrent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "discovery_engine_batch_size_current",
		Help: "Current sequences per cycle after scaling decisions",
	})

	scalerAdjustmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_engine_scaler_adjustments_total",
		Help: "Total batch size adjustments by direction",
	}, []string{"direction"})
)

func init() {
	prometheus.MustRegister(batchSizeCurrent)
	prometheus.MustRegister(scalerAdjustmentsTotal)

	// Initialize label values so counters appear at zero.
	scalerAdjustmentsTotal.WithLabelValues("up").Add(0)
	scalerAdjustmentsTotal.WithLabelValues("down").Add(0)
}

// RecordBatchSize publishes the batch size in effect.
func RecordBatchSize(n int) {
	batchSizeCurrent.Set(float64(n))
}

func recordAdjustment(direction string) {
	scalerAdjustmentsTotal.WithLabelValues(direction).Inc()
}
