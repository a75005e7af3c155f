package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/corebank-ledger/internal/domain/account"
	"github.com/corebank-ledger/internal/domain/audit"
	"github.com/corebank-ledger/internal/domain/money"
	"github.com/corebank-ledger/internal/platform/persistence"
)

// Direction selects which side of the ledger a mutation lands on.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// BalanceMutator owns the only write path to account balances. Every
// mutation follows the same protocol inside one database transaction:
// lock the row, validate against the live balance, apply the delta,
// persist. The audit entry is recorded after commit so it never reports
// a change that was rolled back.
type BalanceMutator struct {
	logger   *slog.Logger
	db       persistence.TxRunner
	accounts account.Repository
	auditLog audit.Recorder
}

// NewBalanceMutator creates a new balance mutator
func NewBalanceMutator(
	logger *slog.Logger,
	db persistence.TxRunner,
	accounts account.Repository,
	auditLog audit.Recorder,
) *BalanceMutator {
	return &BalanceMutator{
		logger:   logger,
		db:       db,
		accounts: accounts,
		auditLog: auditLog,
	}
}

// Apply executes one balance mutation atomically and returns the updated
// account. On any error the account row is untouched. Soft-deleted accounts
// cannot be locked, so mutating one fails with ErrAccountNotFound.
func (m *BalanceMutator) Apply(ctx context.Context, accountID uuid.UUID, amount money.Money, direction Direction) (*account.Account, error) {
	var (
		updated    *account.Account
		oldBalance money.Money
		oldVersion int
	)

	err := m.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		txRepo := m.accounts.WithTx(tx)

		acc, err := txRepo.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		oldBalance = acc.Balance
		oldVersion = acc.Version

		switch direction {
		case DirectionCredit:
			err = acc.Credit(amount)
		case DirectionDebit:
			err = acc.Debit(amount)
		default:
			err = account.ErrInvalidAmount
		}
		if err != nil {
			return err
		}

		if err := txRepo.Update(ctx, acc); err != nil {
			return err
		}

		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The balance change is durable at this point. A failed audit write is
	// logged and swallowed rather than voiding a committed mutation.
	if auditErr := m.auditLog.Record(ctx, audit.ActionBalanceUpdated, accountID, "account",
		map[string]any{
			"balance": oldBalance.String(),
			"version": oldVersion,
		},
		map[string]any{
			"balance":   updated.Balance.String(),
			"version":   updated.Version,
			"direction": string(direction),
			"amount":    amount.String(),
		},
	); auditErr != nil {
		m.logger.Error("Failed to record balance update audit entry",
			"account_id", accountID.String(),
			"direction", string(direction),
			"error", auditErr)
	}

	m.logger.Info("Balance updated",
		"account_id", accountID.String(),
		"direction", string(direction),
		"amount", amount.String(),
		"new_balance", updated.Balance.String())

	return updated, nil
}
