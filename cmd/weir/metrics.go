package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsShed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "weir_requests_shed",
	Help: "Number of check requests rejected by the service-level load shed limiter",
})
