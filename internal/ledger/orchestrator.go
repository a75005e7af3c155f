package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/account"
	"github.com/corebank-ledger/internal/domain/audit"
	"github.com/corebank-ledger/internal/domain/money"
	"github.com/corebank-ledger/internal/domain/transaction"
)

// Mutator is the balance write path the orchestrator drives.
type Mutator interface {
	Apply(ctx context.Context, accountID uuid.UUID, amount money.Money, direction Direction) (*account.Account, error)
}

// Orchestrator drives the transaction lifecycle: idempotency check, PENDING
// record creation, balance mutation, and resolution to a terminal status.
// The PENDING row is written before the mutation so that a crash mid-flight
// leaves a visible, recoverable record instead of silence.
type Orchestrator struct {
	logger       *slog.Logger
	transactions transaction.Repository
	mutator      Mutator
	auditLog     audit.Recorder
}

// NewOrchestrator creates a new transaction orchestrator
func NewOrchestrator(
	logger *slog.Logger,
	transactions transaction.Repository,
	mutator Mutator,
	auditLog audit.Recorder,
) *Orchestrator {
	return &Orchestrator{
		logger:       logger,
		transactions: transactions,
		mutator:      mutator,
		auditLog:     auditLog,
	}
}

// ProcessTransaction executes a single-account intent end to end.
//
// When the intent carries a reference ID that already names a transaction,
// the existing transaction is returned together with ErrDuplicateReference
// and nothing is re-executed, whatever status the original reached.
//
// On a failed mutation the transaction resolves to FAILED and the original
// failure is returned alongside the record.
func (o *Orchestrator) ProcessTransaction(ctx context.Context, intent TransactionIntent) (*transaction.Transaction, error) {
	if err := intent.validateExternal(); err != nil {
		return nil, err
	}
	return o.execute(ctx, intent)
}

// execute runs the lifecycle without the external-type guard so the transfer
// saga can drive TRANSFER_OUT and TRANSFER_IN legs through the same path.
func (o *Orchestrator) execute(ctx context.Context, intent TransactionIntent) (*transaction.Transaction, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	if intent.ReferenceID != "" {
		existing, err := o.transactions.GetByReferenceID(ctx, intent.ReferenceID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			o.logger.Info("Duplicate reference, returning existing transaction",
				"reference_id", intent.ReferenceID,
				"transaction_id", existing.ID.String(),
				"status", string(existing.Status))
			return existing, transaction.ErrDuplicateReference{ReferenceID: intent.ReferenceID}
		}
	}

	txn, err := transaction.New(intent.AccountID, intent.Type, intent.Amount, intent.Description, intent.ReferenceID, intent.Metadata)
	if err != nil {
		return nil, err
	}
	txn.TargetAccountID = intent.TargetAccountID

	if err := o.transactions.Create(ctx, txn); err != nil {
		// Concurrent request with the same reference won the insert race.
		// The unique index is the real idempotency barrier; the lookup
		// above is only a fast path.
		if errors.Is(err, transaction.ErrDuplicateReference{}) {
			existing, lookupErr := o.transactions.GetByReferenceID(ctx, intent.ReferenceID)
			if lookupErr == nil && existing != nil {
				return existing, err
			}
		}
		return nil, err
	}

	direction := DirectionDebit
	if intent.Type.IsIncome() {
		direction = DirectionCredit
	}

	_, mutErr := o.mutator.Apply(ctx, intent.AccountID, intent.Amount, direction)
	if mutErr != nil {
		return o.resolveFailed(ctx, txn, mutErr)
	}

	return o.resolveCompleted(ctx, txn)
}

// resolveCompleted transitions the transaction to COMPLETED. If the status
// write fails the row stays PENDING against a committed balance change; the
// error is returned so the caller can retry or reconcile.
func (o *Orchestrator) resolveCompleted(ctx context.Context, txn *transaction.Transaction) (*transaction.Transaction, error) {
	if err := txn.MarkCompleted(); err != nil {
		return txn, err
	}
	if err := o.transactions.UpdateStatus(ctx, txn.ID, transaction.StatusCompleted); err != nil {
		o.logger.Error("Balance committed but status update failed, transaction left PENDING",
			"transaction_id", txn.ID.String(),
			"error", err)
		return txn, err
	}

	if auditErr := o.auditLog.Record(ctx, audit.ActionTransactionProcessed, txn.ID, "transaction",
		nil,
		map[string]any{
			"account_id": txn.AccountID.String(),
			"type":       string(txn.Type),
			"amount":     txn.Amount.String(),
			"status":     string(transaction.StatusCompleted),
		},
	); auditErr != nil {
		o.logger.Error("Failed to record transaction audit entry",
			"transaction_id", txn.ID.String(),
			"error", auditErr)
	}

	o.logger.Info("Transaction completed",
		"transaction_id", txn.ID.String(),
		"account_id", txn.AccountID.String(),
		"type", string(txn.Type),
		"amount", txn.Amount.String())

	return txn, nil
}

// resolveFailed transitions the transaction to FAILED and propagates the
// original mutation error.
func (o *Orchestrator) resolveFailed(ctx context.Context, txn *transaction.Transaction, cause error) (*transaction.Transaction, error) {
	if err := txn.MarkFailed(); err != nil {
		return txn, err
	}
	if err := o.transactions.UpdateStatus(ctx, txn.ID, transaction.StatusFailed); err != nil {
		o.logger.Error("Failed to persist FAILED status",
			"transaction_id", txn.ID.String(),
			"error", err)
	}

	if auditErr := o.auditLog.Record(ctx, audit.ActionTransactionFailed, txn.ID, "transaction",
		nil,
		map[string]any{
			"account_id": txn.AccountID.String(),
			"type":       string(txn.Type),
			"amount":     txn.Amount.String(),
			"status":     string(transaction.StatusFailed),
			"reason":     cause.Error(),
		},
	); auditErr != nil {
		o.logger.Error("Failed to record transaction audit entry",
			"transaction_id", txn.ID.String(),
			"error", auditErr)
	}

	o.logger.Warn("Transaction failed",
		"transaction_id", txn.ID.String(),
		"account_id", txn.AccountID.String(),
		"type", string(txn.Type),
		"error", cause)

	return txn, cause
}
