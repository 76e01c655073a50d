// Package metrics defines and registers the custom Prometheus metrics of the
// event planner API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry at package init through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planner"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "invalid", "conflict", "throttled" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"action", "result"},
)

// TokensIssuedTotal counts identity tokens handed out.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of identity tokens issued.",
	},
)

// TokenVerifyFailuresTotal counts rejected tokens. Clients always see the
// same "invalid token" message; the reason is only exposed here.
// Label:
//   - reason: "expired", "malformed", "signature", "claims" or "other"
var TokenVerifyFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verify_failures_total",
		Help:      "Total number of identity tokens that failed verification.",
	},
	[]string{"reason"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventWritesTotal counts successful event mutations.
// Label:
//   - operation: "create", "update", "upsert_by_name", "patch_step",
//     "patch_category", "delete"
var EventWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_writes_total",
		Help:      "Total number of event mutations, by operation.",
	},
	[]string{"operation"},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// StorageConnectAttemptsTotal counts attempts to establish the Mongo handle.
// Label:
//   - result: "success" or "error"
var StorageConnectAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_connect_attempts_total",
		Help:      "Total number of MongoDB connection attempts, by result.",
	},
	[]string{"result"},
)
