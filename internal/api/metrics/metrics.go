// Package metrics defines and registers all custom Prometheus metrics for the
// HR portal core. It is the single source of truth for metric names, labels,
// and help strings; metrics register themselves with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hrportal"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts authentication attempts.
// Label:
//   - result: "success" or "failure" (failures are deliberately not broken
//     down further, matching the uninformative InvalidCredentials contract)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of authentication attempts, by result.",
	},
	[]string{"result"},
)

// BootstrapLoginsTotal counts first logins that set an invite account's
// permanent password.
var BootstrapLoginsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bootstrap_logins_total",
		Help:      "Total number of first logins that bootstrapped a password.",
	},
)

// TokenVerificationsTotal counts token verifications.
// Label:
//   - result: "success", "invalid_token", or "session_expired"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// ── Leave workflow metrics ────────────────────────────────────────────────────

// LeaveDecisionsTotal counts completed leave decisions.
// Label:
//   - decision: "approved" or "rejected"
var LeaveDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leave_decisions_total",
		Help:      "Total number of leave requests decided, by decision.",
	},
	[]string{"decision"},
)

// LeaveDaysApprovedTotal accumulates approved leave days applied to the ledger.
// Label:
//   - leave_type: "annual", "sick", "casual", or "unpaid"
var LeaveDaysApprovedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leave_days_approved_total",
		Help:      "Total leave days credited to the ledger by approvals, by leave type.",
	},
	[]string{"leave_type"},
)

// ── Notification dispatcher metrics ───────────────────────────────────────────

// NotificationQueueDepth tracks the number of decision events waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of decision events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationsTotal counts notification deliveries handed to the notifier.
// Label:
//   - result: "delivered" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of decision notifications processed, by result.",
	},
	[]string{"result"},
)
