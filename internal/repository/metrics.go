package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookclub",
		Subsystem: "sync",
		Name:      "cache_write_failures_total",
		Help:      "Best-effort cache writes that failed and were skipped.",
	}, []string{"entity", "step"})

	remoteFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookclub",
		Subsystem: "sync",
		Name:      "remote_fetches_total",
		Help:      "Remote fetches by entity and outcome.",
	}, []string{"entity", "outcome"})
)

func countFetch(entity string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	remoteFetches.WithLabelValues(entity, outcome).Inc()
}
