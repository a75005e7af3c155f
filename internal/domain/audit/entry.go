// Package audit defines the write-only audit trail consumed by the ledger
// core. Every meaningful state transition produces exactly one entry, on
// success and failure paths alike.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of state transition being recorded.
type Action string

const (
	ActionAccountCreated       Action = "ACCOUNT_CREATED"
	ActionAccountDeleted       Action = "ACCOUNT_DELETED"
	ActionBalanceUpdated       Action = "BALANCE_UPDATED"
	ActionTransactionProcessed Action = "TRANSACTION_PROCESSED"
	ActionTransactionFailed    Action = "TRANSACTION_FAILED"
)

// Entry captures one state transition with optional before/after snapshots.
type Entry struct {
	ID         uuid.UUID      `json:"id" bson:"id"`
	Action     Action         `json:"action" bson:"action"`
	EntityID   uuid.UUID      `json:"entity_id" bson:"entity_id"`
	EntityType string         `json:"entity_type" bson:"entity_type"`
	OldValues  map[string]any `json:"old_values,omitempty" bson:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty" bson:"new_values,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

// Recorder is the sink the ledger core emits into. Implementations must be
// safe for concurrent use. The core treats Record as fire-and-forget: a
// recorder failure is logged by the caller but never voids a committed
// balance change.
type Recorder interface {
	Record(ctx context.Context, action Action, entityID uuid.UUID, entityType string, oldValues, newValues map[string]any) error
}

// Store extends Recorder with the read side used by the audit trail API.
type Store interface {
	Recorder
	FindByEntityID(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*Entry, error)
}
