// Package metrics defines and registers all custom Prometheus metrics for the
// pms-sync core. It is the single source of truth for metric names, labels,
// and help strings. Metrics register themselves with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pms"

// ── Task cache metrics ────────────────────────────────────────────────────────

// CacheLookupsTotal counts GetTask lookups against the in-memory task cache.
// Label:
//   - result: "hit" (served from cache) or "miss" (hydration required)
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of task cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// HydrationsTotal counts remote task reads issued by the hydrator.
// Label:
//   - outcome: "loaded" (record found), "empty" (no backing record), "error"
var HydrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hydrations_total",
		Help:      "Total number of task hydration reads issued to the remote store.",
	},
	[]string{"outcome"},
)

// HydrationsDeduplicatedTotal counts GetTask callers that attached to an
// already in-flight hydration instead of issuing their own remote read.
var HydrationsDeduplicatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hydrations_deduplicated_total",
		Help:      "Total number of hydration requests coalesced onto an in-flight read.",
	},
)

// ── Mutation metrics ──────────────────────────────────────────────────────────

// MutationsTotal counts task mutations applied through the coordinator.
// Labels:
//   - operation: "create", "assign", "set_completion"
//   - outcome:   "ok" or "error"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of task mutations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── Prefetch metrics ──────────────────────────────────────────────────────────

// PrefetchQueueDepth tracks the number of task ids waiting in each prefetch
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PrefetchQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "prefetch_queue_depth",
		Help:      "Current number of task ids pending in each prefetch worker channel.",
	},
	[]string{"worker_id"},
)
