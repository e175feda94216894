// Package metrics defines and registers the custom Prometheus metrics of the
// contacts API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "connex"

// ── Contact metrics ───────────────────────────────────────────────────────────

// ContactsCreatedTotal counts newly created contacts.
// Label:
//   - replayed: "true" when an idempotency key matched an earlier create
var ContactsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contacts_created_total",
		Help:      "Total number of create requests that returned a contact.",
	},
	[]string{"replayed"},
)

// ContactsUpdatedTotal counts successful contact updates.
var ContactsUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contacts_updated_total",
		Help:      "Total number of contacts updated.",
	},
)

// ContactsDeletedTotal counts successful contact deletions.
var ContactsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contacts_deleted_total",
		Help:      "Total number of contacts deleted.",
	},
)

// ContactErrorsTotal counts failed contact operations.
// Labels:
//   - op: list, create, get, update, delete, history
//   - reason: validation, duplicate_email, not_found, invalid_page, internal
var ContactErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_errors_total",
		Help:      "Total number of failed contact operations, by operation and reason.",
	},
	[]string{"op", "reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit event outcomes.
// Labels:
//   - action: created, updated, deleted
//   - result: recorded, error, dropped
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of contact audit events, by action and result.",
	},
	[]string{"action", "result"},
)

// AuditQueueDepth tracks the number of events waiting in each dispatcher worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)
