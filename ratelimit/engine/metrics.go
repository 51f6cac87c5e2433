package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "weir_check_duration_sec",
	Help: "Total duration of rate limit check processing",
}, []string{"action"})

var checksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weir_checks_processed",
	Help: "Number of rate limit checks processed",
}, []string{"action"})

var checksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weir_checks_rejected",
	Help: "Number of checks which produced a binding rate limit",
}, []string{"action", "kind"})

var storeErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weir_store_errors",
	Help: "Number of dependent-store read failures during checks",
}, []string{"store"})
