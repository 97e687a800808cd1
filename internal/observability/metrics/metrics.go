// Package metrics exposes the Prometheus instruments for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	salesTotal prometheus.Counter
	salesUnits prometheus.Counter

	stockTransfers prometheus.Counter
	stockAlerts    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmastock_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pharmastock_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		salesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pharmastock_sales_total",
			Help: "Completed sale transactions.",
		}),
		salesUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pharmastock_sales_units_total",
			Help: "Units dispensed across all sales.",
		}),
		stockTransfers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pharmastock_stock_transfers_total",
			Help: "Store to dispenser transfers.",
		}),
		stockAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmastock_stock_alerts_total",
			Help: "Stock alerts emitted by derived status.",
		}, []string{"status"}),
	}
	registry.MustRegister(m.httpRequests, m.httpDuration, m.salesTotal, m.salesUnits, m.stockTransfers, m.stockAlerts)
	return m
}

func (m *Metrics) RecordSale(units int) {
	if m == nil {
		return
	}
	m.salesTotal.Inc()
	m.salesUnits.Add(float64(units))
}

func (m *Metrics) RecordTransfer() {
	if m == nil {
		return
	}
	m.stockTransfers.Inc()
}

func (m *Metrics) RecordStockAlert(status string) {
	if m == nil {
		return
	}
	m.stockAlerts.WithLabelValues(status).Inc()
}

// Handler serves the scrape endpoint backed by this registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// GinMiddleware records request counts and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
