package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	calls = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals // prometheus collectors
		Namespace: "blockvent",
		Subsystem: "ledger",
		Name:      "calls_total",
		Help:      "Contract transactions invoked, by function and outcome.",
	}, []string{"function", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Namespace: "blockvent",
		Subsystem: "ledger",
		Name:      "call_duration_seconds",
		Help:      "Time spent waiting for the ledger network, by function.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"function"})

	connects = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "blockvent",
		Subsystem: "ledger",
		Name:      "connects_total",
		Help:      "Connection attempts to the ledger network, by outcome.",
	}, []string{"outcome"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

func observeCall(function string, start time.Time, err error) {
	calls.WithLabelValues(function, outcome(err)).Inc()
	callDuration.WithLabelValues(function).Observe(time.Since(start).Seconds())
}
