package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	InvoiceOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_operations_total",
		Help: "Invoice writes by operation and outcome.",
	}, []string{"operation", "outcome"})

	InvoiceTotalAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_created_amount_total",
		Help: "Sum of totalAmount over created invoices, per currency.",
	}, []string{"currency"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by cache name and result (hit, miss, error).",
	}, []string{"cache", "result"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_clients",
		Help: "Connected dashboard websocket clients.",
	})

	DBPoolConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "db_pool_connections",
		Help: "PostgreSQL pool connections by state (total, idle, acquired).",
	}, []string{"state"})

	InvoicesByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "invoices_by_status",
		Help: "Stored invoices across all accounts, by status.",
	}, []string{"status"})
)

// Operation outcomes
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)
