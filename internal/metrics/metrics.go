// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "edificio"

// HTTPRequests counts served requests by route pattern, method and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served.",
}, []string{"route", "method", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

// Allocations counts allocator runs by outcome (ok, conflict, error).
var Allocations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "allocator",
	Name:      "runs_total",
	Help:      "Payment allocations attempted, by outcome.",
}, []string{"outcome"})

var AllocationRetries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "allocator",
	Name:      "retries_total",
	Help:      "Allocations retried after an optimistic version conflict.",
})

var AllocatedCents = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "allocator",
	Name:      "allocated_cents_total",
	Help:      "Cents applied against open credit sales.",
})

var UnallocatedCents = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "allocator",
	Name:      "unallocated_cents_total",
	Help:      "Cents received that found no open credit sale.",
})

var AllocationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "allocator",
	Name:      "duration_seconds",
	Help:      "Time spent allocating one payment, lock wait included.",
	Buckets:   prometheus.DefBuckets,
})

// Backups counts backup runs by trigger (manual, scheduled) and result.
var Backups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "backup",
	Name:      "runs_total",
	Help:      "Database backups attempted.",
}, []string{"trigger", "result"})

var LastBackupTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "backup",
	Name:      "last_success_timestamp_seconds",
	Help:      "Unix time of the last successful backup.",
})

var PDFRenders = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "pdf",
	Name:      "renders_total",
	Help:      "PDF documents rendered, by document and result.",
}, []string{"document", "result"})

var Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "storage",
	Name:      "uploads_total",
	Help:      "Attachment uploads, by result.",
}, []string{"result"})

var IdempotencyEvicted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "idempotency",
	Name:      "evicted_total",
	Help:      "Expired idempotency entries removed by the maintenance worker.",
})

var Panics = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "panics_total",
	Help:      "Handler panics recovered.",
})
