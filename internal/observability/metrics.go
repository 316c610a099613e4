package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	transitionPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "presence_service",
		Subsystem: "persistence",
		Name:      "last_transition_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent presence transition persisted to Postgres.",
	})
	transitionCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "presence_service",
		Subsystem: "persistence",
		Name:      "transitions_recorded_total",
		Help:      "Number of presence transitions committed to the session store.",
	})
)

func init() {
	prometheus.MustRegister(transitionPersistGauge, transitionCounter)
}

// RecordTransitionPersisted updates the persistence watermark gauge.
func RecordTransitionPersisted(ts time.Time) {
	transitionCounter.Inc()
	if ts.IsZero() {
		return
	}
	transitionPersistGauge.Set(float64(ts.Unix()))
}
