// Package metrics defines the custom Prometheus collectors of the idea voting
// API. HTTP request metrics come from the echoprometheus middleware; the
// collectors here count business outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "votingapi"

// ── Access control ───────────────────────────────────────────────────────────

// GuardRejectionsTotal counts requests stopped by the access guard.
// Label:
//   - reason: "missing_token", "invalid_token", "expired_token" or "forbidden"
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Total number of requests rejected by the access guard, by reason.",
	},
	[]string{"reason"},
)

// ── Identity ─────────────────────────────────────────────────────────────────

// RegistrationsTotal counts successful registrations by granted role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful registrations, by granted role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Voting ───────────────────────────────────────────────────────────────────

// VotesTotal counts vote attempts.
// Label:
//   - result: "accepted", "duplicate", "idea_not_found" or "error"
var VotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Total number of vote attempts, by result.",
	},
	[]string{"result"},
)

var IdeasCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ideas_created_total",
		Help:      "Total number of ideas created.",
	},
)
