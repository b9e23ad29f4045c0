// Package metrics defines and registers the custom Prometheus metrics for the
// storefront API. Request-level metrics come from the echoprometheus
// middleware; this package only holds the auth and session counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_input" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "conflict", "invalid_input" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsIssuedTotal counts new session ids handed out.
// Label:
//   - kind: "anonymous" or "authenticated"
var SessionsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of sessions issued, by kind.",
	},
	[]string{"kind"},
)

// CSRFRejectionsTotal counts state-changing requests refused by the CSRF guard.
var CSRFRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "csrf_rejections_total",
		Help:      "Total number of requests rejected for a missing or mismatched CSRF token.",
	},
)

// AuthzDenialsTotal counts requests stopped by the authorization guards.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of requests denied by the authorization gate, by reason.",
	},
	[]string{"reason"},
)
