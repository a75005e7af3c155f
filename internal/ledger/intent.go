// Package ledger implements the balance mutation protocol and the
// transaction lifecycle around it. All money movement in the system funnels
// through this package: a single-account intent runs lock, validate, apply,
// persist inside one database transaction, and a transfer runs two such legs
// with a compensating reversal when the second leg fails.
package ledger

import (
	"errors"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/money"
	"github.com/corebank-ledger/internal/domain/transaction"
)

// Intent validation errors
var (
	ErrMissingAccountID  = errors.New("account ID is required")
	ErrSameAccount       = errors.New("source and target accounts must differ")
	ErrTransferLegDirect = errors.New("transfer legs cannot be submitted directly")
)

// TransactionIntent describes a single-account money movement to execute.
// The struct doubles as the Kafka message body for async processing, so the
// JSON field names are part of the wire contract.
type TransactionIntent struct {
	AccountID       uuid.UUID      `json:"account_id"`
	TargetAccountID *uuid.UUID     `json:"target_account_id,omitempty"`
	Type            transaction.Type `json:"type"`
	Amount          money.Money    `json:"amount"`
	Description     string         `json:"description"`
	ReferenceID     string         `json:"reference_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Validate checks the intent before any store access. Transfer legs carry
// internal types and may only be produced by the transfer saga, never
// submitted by callers.
func (i *TransactionIntent) Validate() error {
	if i.AccountID == uuid.Nil {
		return ErrMissingAccountID
	}
	if !i.Type.Valid() {
		return transaction.ErrInvalidType
	}
	if !i.Amount.IsPositive() {
		return transaction.ErrInvalidAmount
	}
	if i.Description == "" {
		return transaction.ErrEmptyDescription
	}
	return nil
}

// validateExternal additionally rejects the internal transfer leg types.
func (i *TransactionIntent) validateExternal() error {
	if i.Type == transaction.TypeTransferOut || i.Type == transaction.TypeTransferIn {
		return ErrTransferLegDirect
	}
	return i.Validate()
}

// TransferIntent describes an atomic movement between two accounts. The
// reference ID is optional; when supplied the saga derives per-leg references
// from it and the transfer as a whole becomes idempotent. Metadata is carried
// onto both legs alongside the saga's own annotations.
type TransferIntent struct {
	SourceAccountID uuid.UUID      `json:"source_account_id"`
	TargetAccountID uuid.UUID      `json:"target_account_id"`
	Amount          money.Money    `json:"amount"`
	Description     string         `json:"description"`
	ReferenceID     string         `json:"reference_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Validate checks the transfer intent before the saga starts.
func (i *TransferIntent) Validate() error {
	if i.SourceAccountID == uuid.Nil || i.TargetAccountID == uuid.Nil {
		return ErrMissingAccountID
	}
	if i.SourceAccountID == i.TargetAccountID {
		return ErrSameAccount
	}
	if !i.Amount.IsPositive() {
		return transaction.ErrInvalidAmount
	}
	if i.Description == "" {
		return transaction.ErrEmptyDescription
	}
	return nil
}
