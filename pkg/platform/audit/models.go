// Package audit defines the registry's audit event model and sinks.
//
// Audit events are operational telemetry, distinct from the per-key history
// ledger the engine persists: the ledger is registry state with read
// operations of its own, while audit events fan out to logs or Kafka for
// monitoring and forensics.
package audit

import (
	"context"
	"time"

	id "namereg/pkg/domain"
)

// Event captures one ownership-affecting action. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	Action    string
	Timestamp time.Time
	// Key is the canonical key the action touched.
	Key string
	// Actor performed the action.
	Actor id.Identity
	// Subject is the other identity involved, when there is one: the new
	// owner of a transfer, the target of a reservation.
	Subject id.Identity
	// ValidUntil is the record's validity after the action, zero when the
	// action does not set one.
	ValidUntil time.Time
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
}

// Registry audit actions.
const (
	EventDomainClaimed     = "domain_claimed"
	EventDomainTransferred = "domain_transferred"
	EventDomainRevoked     = "domain_revoked"
	EventDomainReserved    = "domain_reserved"
)

// Store is a sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
