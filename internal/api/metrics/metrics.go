// Package metrics defines and registers the custom Prometheus metrics of the
// complaints API. It is the single source of truth for metric names, labels
// and help strings.
//
// All metrics are registered with the default registry on import via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartcity"

// ── Case metrics ──────────────────────────────────────────────────────────────

// CasesCreatedTotal counts newly filed complaints.
// Labels:
//   - category: the complaint category supplied by the citizen
//   - priority: low, medium, high or urgent
var CasesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cases_created_total",
		Help:      "Total number of cases created, by category and priority.",
	},
	[]string{"category", "priority"},
)

// CaseStatusTransitionsTotal counts applied status changes.
// Label:
//   - status: the new status (pending, in-progress, resolved)
//   - role: the role of the user that applied it (admin, employee)
var CaseStatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "case_status_transitions_total",
		Help:      "Total number of case status updates, by resulting status and actor role.",
	},
	[]string{"status", "role"},
)

// CaseAssignmentsTotal counts successful assignments, reassignments included.
var CaseAssignmentsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "case_assignments_total",
		Help:      "Total number of case assignments.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected requests at the authentication gate.
// Label:
//   - reason: missing_token, invalid_token, revoked or unknown_user
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
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

// ── Audit event metrics ───────────────────────────────────────────────────────

// EventsPersistedTotal counts audit events written to the event log.
// Label:
//   - kind: created, assigned or status_changed
var EventsPersistedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_persisted_total",
		Help:      "Total number of case audit events persisted.",
	},
	[]string{"kind"},
)

// EventsErrorsTotal counts audit events that could not be handled.
// Label:
//   - reason: "insert_failed" or "dispatcher_stopped"
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of case audit events that failed to persist.",
	},
	[]string{"reason"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPersistDuration measures how long a single audit write takes.
var EventPersistDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_persist_duration_seconds",
		Help:      "Duration of a single audit event write, retries included.",
		Buckets:   prometheus.DefBuckets,
	},
)
