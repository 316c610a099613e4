package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	tickCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "presence_service",
		Subsystem: "monitor",
		Name:      "ticks_total",
		Help:      "Number of idle-monitor ticks started.",
	})

	skipCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presence_service",
		Subsystem: "monitor",
		Name:      "ticks_skipped_total",
		Help:      "Number of ticks abandoned before a decision, by reason.",
	}, []string{"reason"})

	shutdownCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "presence_service",
		Subsystem: "monitor",
		Name:      "shutdowns_total",
		Help:      "Number of idle shutdowns issued.",
	})

	decisionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "presence_service",
		Subsystem: "monitor",
		Name:      "last_decision_shutdown",
		Help:      "1 when the most recent completed decision was shut down, 0 otherwise.",
	})
)

func init() {
	prometheus.MustRegister(tickCounter, skipCounter, shutdownCounter, decisionGauge)
}

func recordTick() {
	tickCounter.Inc()
}

func recordSkip(reason string) {
	skipCounter.WithLabelValues(reason).Inc()
}

func recordShutdown() {
	shutdownCounter.Inc()
}

func recordDecision(d Decision) {
	if d.ShutDown {
		decisionGauge.Set(1)
		return
	}
	decisionGauge.Set(0)
}
