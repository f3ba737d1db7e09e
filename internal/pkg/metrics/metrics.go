// Package metrics defines and registers the custom Prometheus metrics of the
// Promptly API. It is the single source of truth for metric names, labels and
// help strings. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "promptly"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts accounts created.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)

// AuthAttemptsTotal counts register/login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "success", "conflict", "invalid", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Chat metrics ──────────────────────────────────────────────────────────────

var ChatsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chats_created_total",
		Help:      "Total number of chats created.",
	},
)

var ChatsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chats_deleted_total",
		Help:      "Total number of chats deleted.",
	},
)

// MessagesExchangedTotal counts persisted user/assistant exchanges.
var MessagesExchangedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_exchanged_total",
		Help:      "Total number of message exchanges persisted.",
	},
)

// ── Completion metrics ────────────────────────────────────────────────────────

// CompletionRequestsTotal counts calls to the completion provider.
// Labels:
//   - provider: "openai" or "gemini"
//   - result: "success", "empty" or "error"
var CompletionRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completion_requests_total",
		Help:      "Total number of completion requests, by provider and result.",
	},
	[]string{"provider", "result"},
)

// CompletionDuration measures the round trip to the completion provider.
var CompletionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "completion_duration_seconds",
		Help:      "Duration of completion requests.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40},
	},
	[]string{"provider"},
)

// ── Rate limiting ─────────────────────────────────────────────────────────────

// RateLimitedTotal counts rejected requests.
// Label:
//   - scope: "auth" or "messages"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"scope"},
)
