// Package metrics defines and registers the custom Prometheus metrics of the
// DevConnector API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on import via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devconnector"

// ── Aggregate metrics ─────────────────────────────────────────────────────────

// AggregateMutationsTotal counts successful writes to profile and post documents.
// Labels:
//   - aggregate: "profile" or "post"
//   - op: the mutation applied (e.g. "like", "add_experience", "create")
var AggregateMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregate_mutations_total",
		Help:      "Total number of successful aggregate mutations.",
	},
	[]string{"aggregate", "op"},
)

// CascadeFailuresTotal counts account deletions that stopped part way.
// Label:
//   - step: "posts", "profile" or "user"
var CascadeFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_cascade_failures_total",
		Help:      "Total number of account deletions that failed, by failing step.",
	},
	[]string{"step"},
)

// ── Serializer metrics ────────────────────────────────────────────────────────

// SerializerQueueDepth tracks pending jobs per serializer worker.
// Label:
//   - worker_id: numeric worker index
var SerializerQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "serializer_queue_depth",
		Help:      "Current number of aggregate jobs waiting in each serializer worker.",
	},
	[]string{"worker_id"},
)

// SerializerJobDuration measures how long one aggregate job holds its worker.
var SerializerJobDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "serializer_job_duration_seconds",
		Help:      "Duration of a single serialized aggregate job.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRejectionsTotal counts requests turned away by the authorization gate.
// Label:
//   - reason: "missing" or "invalid"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the authorization gate.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests refused by the rate limiter, by route.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests refused by the rate limiter.",
	},
	[]string{"route"},
)
