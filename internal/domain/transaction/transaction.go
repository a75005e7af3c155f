package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/money"
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

// Type defines possible transaction operations
type Type string

const (
	TypeDeposit     Type = "DEPOSIT"
	TypeWithdrawal  Type = "WITHDRAWAL"
	TypeTransferOut Type = "TRANSFER_OUT"
	TypeTransferIn  Type = "TRANSFER_IN"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransferOut, TypeTransferIn:
		return true
	}
	return false
}

// IsIncome reports whether the type increases the account balance.
// DEPOSIT and TRANSFER_IN are income; WITHDRAWAL and TRANSFER_OUT are expense.
func (t Type) IsIncome() bool {
	return t == TypeDeposit || t == TypeTransferIn
}

// Status defines the transaction state machine: PENDING is the initial
// state, COMPLETED and FAILED are terminal. No other transitions are legal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// ErrIllegalTransition indicates an attempt to move a terminal transaction.
type ErrIllegalTransition struct {
	From Status
	To   Status
}

func (e ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal transaction status transition: %s -> %s", e.From, e.To)
}

// Transaction records a single monetary movement against one account.
// Once resolved to a terminal status, the record is immutable and never
// deleted.
type Transaction struct {
	ID              uuid.UUID      `json:"id"`
	AccountID       uuid.UUID      `json:"account_id"`
	TargetAccountID *uuid.UUID     `json:"target_account_id,omitempty"`
	Type            Type           `json:"type"`
	Amount          money.Money    `json:"amount"`
	Description     string         `json:"description"`
	Status          Status         `json:"status"`
	ReferenceID     *string        `json:"reference_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// New creates a PENDING transaction. referenceID may be empty, meaning the
// caller supplied no idempotency key.
func New(accountID uuid.UUID, txType Type, amount money.Money, description, referenceID string, metadata map[string]any) (*Transaction, error) {
	if !txType.Valid() {
		return nil, ErrInvalidType
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		return nil, ErrEmptyDescription
	}

	txn := &Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Status:      StatusPending,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
	if referenceID != "" {
		txn.ReferenceID = &referenceID
	}
	return txn, nil
}

// MarkCompleted resolves a PENDING transaction as successful.
func (t *Transaction) MarkCompleted() error {
	return t.resolve(StatusCompleted)
}

// MarkFailed resolves a PENDING transaction as failed.
func (t *Transaction) MarkFailed() error {
	return t.resolve(StatusFailed)
}

func (t *Transaction) resolve(to Status) error {
	if t.Status != StatusPending {
		return ErrIllegalTransition{From: t.Status, To: to}
	}
	t.Status = to
	return nil
}

// IsTerminal reports whether the transaction has been resolved.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}
