package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "animehub_upstream_requests_total",
		Help: "Upstream HTTP request attempts, including retries.",
	})
	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animehub_upstream_failures_total",
		Help: "Terminal upstream failures after retry handling, by kind.",
	}, []string{"kind"})
)
