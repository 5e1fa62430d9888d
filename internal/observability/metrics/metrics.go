package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides the application metrics registry.
var Module = fx.Provide(New)

// Metrics captures billing health signals.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	chargesCreated  prometheus.Counter
	paymentsApplied prometheus.Counter
	overdueSwept    prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentflow_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		chargesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentflow_monthly_charges_created_total",
			Help: "Monthly charges written by the schedule generator.",
		}),
		paymentsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentflow_payment_allocations_total",
			Help: "Allocation records written by the payment engine.",
		}),
		overdueSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentflow_charges_marked_overdue_total",
			Help: "Charges re-classified to overdue by the sweep job.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.httpRequests,
		m.httpDuration,
		m.chargesCreated,
		m.paymentsApplied,
		m.overdueSwept,
	} {
		if err := registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return m
}

func (m *Metrics) RecordChargesCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chargesCreated.Add(float64(n))
}

func (m *Metrics) RecordAllocations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.paymentsApplied.Add(float64(n))
}

func (m *Metrics) RecordOverdueSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.overdueSwept.Add(float64(n))
}

// GinMiddleware records request counts and latencies per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
