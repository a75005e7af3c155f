package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/account"
	"github.com/corebank-ledger/internal/domain/audit"
	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/ledger"
)

// AccountService defines the interface for account operations
type AccountService interface {
	// CreateAccount creates a new account with a zero balance
	// Returns ErrDuplicateAccountNumber if the account number is taken
	CreateAccount(ctx context.Context, accountNumber, ownerName string) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID, including soft-deleted ones
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// GetAccountByNumber retrieves an account by its external number
	// Returns nil, nil if no account carries the number
	GetAccountByNumber(ctx context.Context, accountNumber string) (*account.Account, error)

	// ListAccounts retrieves a paginated list of active accounts with the total count
	ListAccounts(ctx context.Context, page, perPage int) ([]*account.Account, int64, error)

	// DeleteAccount soft-deletes an account; its history stays queryable
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// TransactionService defines the interface for transaction operations
type TransactionService interface {
	// ProcessTransaction executes a transaction synchronously through the
	// ledger core and returns the terminal record
	ProcessTransaction(ctx context.Context, intent ledger.TransactionIntent) (*transaction.Transaction, error)

	// ProcessTransfer executes a two-leg transfer synchronously
	ProcessTransfer(ctx context.Context, intent ledger.TransferIntent) (*ledger.TransferResult, error)

	// SubmitTransaction publishes the intent for asynchronous execution by
	// the transaction worker
	SubmitTransaction(ctx context.Context, intent ledger.TransactionIntent) error

	// GetTransactionByID retrieves a transaction by its ID
	// Returns nil, nil if the transaction is not found
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// GetTransactionsByAccountID retrieves a filtered, paginated list of
	// transactions for an account with the total matching count
	GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, int64, error)
}

// AuditService exposes the read side of the audit trail
type AuditService interface {
	// GetAuditTrail retrieves paginated audit entries for an entity, newest first
	GetAuditTrail(ctx context.Context, entityID uuid.UUID, page, perPage int) ([]*audit.Entry, error)
}
