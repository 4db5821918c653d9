// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons recorded by OrderMetrics
const (
	ReasonInsufficientStock = "insufficient_stock"
	ReasonNotFound          = "not_found"
	ReasonInvalid           = "invalid"
	ReasonError             = "error"
)

// OrderMetrics counts order placement outcomes
type OrderMetrics struct {
	placed    prometheus.Counter
	rejected  *prometheus.CounterVec
	revenue   prometheus.Counter
	placement prometheus.Histogram
}

// NewOrderMetrics registers the order collectors on the default registry
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer registers the order collectors on registerer
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		placed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_orders_rejected_total",
			Help: "Total number of order placements rejected, by reason",
		}, []string{"reason"}),
		revenue: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sales_revenue_total",
			Help: "Sum of the totals of placed orders",
		}),
		placement: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "sales_order_placement_duration_seconds",
			Help:    "Duration of order placement transactions in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
	}
}

// RecordPlaced counts a successful placement and its total
func (m *OrderMetrics) RecordPlaced(total float64, duration time.Duration) {
	m.placed.Inc()
	m.revenue.Add(total)
	m.placement.Observe(duration.Seconds())
}

// RecordRejected counts a failed placement
func (m *OrderMetrics) RecordRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// HTTPMetrics tracks request counts and latency per route
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on the default registry
func NewHTTPMetrics() *HTTPMetrics {
	return NewHTTPMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewHTTPMetricsWithRegisterer registers the HTTP collectors on registerer
func NewHTTPMetricsWithRegisterer(registerer prometheus.Registerer) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &HTTPMetrics{
		requests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "sales_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Observe records one finished request
func (m *HTTPMetrics) Observe(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
