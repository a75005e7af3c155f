package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/money"
)

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrEmptyOwnerName    = errors.New("owner name cannot be empty")
	ErrEmptyNumber       = errors.New("account number cannot be empty")
)

// Account is the system of record for a single balance. Balance,
// TotalIncome and TotalExpenses are only ever written through Credit and
// Debit, which keep the three figures consistent and bump the version.
type Account struct {
	ID            uuid.UUID   `json:"id"`
	AccountNumber string      `json:"account_number"`
	OwnerName     string      `json:"owner_name"`
	Balance       money.Money `json:"balance"`
	TotalIncome   money.Money `json:"total_income"`
	TotalExpenses money.Money `json:"total_expenses"`
	Version       int         `json:"version"` // For optimistic locking
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	DeletedAt     *time.Time  `json:"deleted_at,omitempty"`
}

// NewAccount creates a new account with a zero balance. The account number
// is externally assigned and must be unique; uniqueness is enforced by the
// store.
func NewAccount(accountNumber, ownerName string) (*Account, error) {
	if accountNumber == "" {
		return nil, ErrEmptyNumber
	}
	if ownerName == "" {
		return nil, ErrEmptyOwnerName
	}

	now := time.Now()
	return &Account{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		OwnerName:     ownerName,
		Balance:       money.Zero(),
		TotalIncome:   money.Zero(),
		TotalExpenses: money.Zero(),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Credit applies an income delta: balance and totalIncome both grow by amount.
func (a *Account) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	a.Balance = a.Balance.Add(amount)
	a.TotalIncome = a.TotalIncome.Add(amount)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit applies an expense delta: balance shrinks and totalExpenses grows by
// amount. The balance is never allowed to go negative.
func (a *Account) Debit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	a.TotalExpenses = a.TotalExpenses.Add(amount)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanDebit checks if the account has sufficient funds for an expense.
func (a *Account) CanDebit(amount money.Money) bool {
	return !amount.GreaterThan(a.Balance)
}

// IsDeleted reports whether the account has been soft-deleted.
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}
