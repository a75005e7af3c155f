package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for
// PostgreSQL. Reference-id uniqueness is enforced by a partial unique index,
// so the idempotency guarantee does not depend on a lookup racing an insert.
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

const transactionColumns = "id, account_id, target_account_id, type, amount, description, status, reference_id, metadata, created_at"

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.TargetAccountID,
		&txn.Type,
		&txn.Amount,
		&txn.Description,
		&txn.Status,
		&txn.ReferenceID,
		&txn.Metadata,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// Create stores a new transaction. A reference id already present in the
// table surfaces as transaction.ErrDuplicateReference via the unique index.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, target_account_id, type, amount, description, status, reference_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.AccountID,
		txn.TargetAccountID,
		txn.Type,
		txn.Amount,
		txn.Description,
		txn.Status,
		txn.ReferenceID,
		txn.Metadata,
		txn.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && txn.ReferenceID != nil {
			return transaction.ErrDuplicateReference{ReferenceID: *txn.ReferenceID}
		}
		r.logger.Error("Failed to create transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// GetByReferenceID retrieves a transaction by its idempotency reference.
// Returns nil, nil when no transaction carries the reference.
func (r *TransactionRepository) GetByReferenceID(ctx context.Context, referenceID string) (*transaction.Transaction, error) {
	if referenceID == "" {
		return nil, errors.New("reference id cannot be empty")
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE reference_id = $1
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, referenceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction by reference", "reference_id", referenceID, "error", err)
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}

	return txn, nil
}

// UpdateStatus persists the PENDING -> terminal transition. Terminal rows
// are immutable: the WHERE clause refuses to move a resolved transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) error {
	query := `
		UPDATE transactions
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.querier.Exec(ctx, query, status, id, transaction.StatusPending)
	if err != nil {
		r.logger.Error("Failed to update transaction status", "id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// ListByAccount retrieves a page of transactions for an account, newest
// first, optionally narrowed by type and status.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, error) {
	where, args := buildAccountFilter(accountID, filter)
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}

	return transactions, nil
}

// CountByAccount counts the transactions matching the filter for an account.
func (r *TransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) (int64, error) {
	where, args := buildAccountFilter(accountID, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM transactions WHERE %s`, where)

	var count int64
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

func buildAccountFilter(accountID uuid.UUID, filter transaction.Filter) (string, []interface{}) {
	clauses := []string{"account_id = $1"}
	args := []interface{}{accountID}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}
