package oto

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records outbound OTO API calls
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the OTO request collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oto",
				Name:      "requests_total",
				Help:      "Total number of requests sent to the OTO API.",
			},
			[]string{"destination", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "oto",
				Name:      "request_duration_seconds",
				Help:      "Duration of OTO API requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"destination"},
		),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// observe records one request. statusCode 0 means the transport failed.
func (m *Metrics) observe(destination string, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.requestsTotal.WithLabelValues(destination, code).Inc()
	m.requestDuration.WithLabelValues(destination).Observe(elapsed.Seconds())
}
