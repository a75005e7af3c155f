package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/ledger"
	"github.com/corebank-ledger/internal/platform/messaging/producers"
)

// TransactionProcessor is the slice of the ledger orchestrator the gateway
// drives for synchronous execution.
type TransactionProcessor interface {
	ProcessTransaction(ctx context.Context, intent ledger.TransactionIntent) (*transaction.Transaction, error)
	ProcessTransfer(ctx context.Context, intent ledger.TransferIntent) (*ledger.TransferResult, error)
}

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	logger          *slog.Logger
	processor       TransactionProcessor
	transactionRepo transaction.Repository
	producer        producers.MessagePublisher
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	logger *slog.Logger,
	processor TransactionProcessor,
	transactionRepo transaction.Repository,
	producer producers.MessagePublisher,
) TransactionService {
	return &TransactionServiceImpl{
		logger:          logger,
		processor:       processor,
		transactionRepo: transactionRepo,
		producer:        producer,
	}
}

// ProcessTransaction executes a transaction synchronously through the ledger core
func (s *TransactionServiceImpl) ProcessTransaction(ctx context.Context, intent ledger.TransactionIntent) (*transaction.Transaction, error) {
	return s.processor.ProcessTransaction(ctx, intent)
}

// ProcessTransfer executes a two-leg transfer synchronously
func (s *TransactionServiceImpl) ProcessTransfer(ctx context.Context, intent ledger.TransferIntent) (*ledger.TransferResult, error) {
	return s.processor.ProcessTransfer(ctx, intent)
}

// SubmitTransaction validates the intent and publishes it for the worker.
// When the intent carries a reference that already names a transaction the
// duplicate is rejected here, before anything reaches the queue.
func (s *TransactionServiceImpl) SubmitTransaction(ctx context.Context, intent ledger.TransactionIntent) error {
	if err := intent.Validate(); err != nil {
		return err
	}

	if intent.ReferenceID != "" {
		existing, err := s.transactionRepo.GetByReferenceID(ctx, intent.ReferenceID)
		if err != nil {
			return err
		}
		if existing != nil {
			return transaction.ErrDuplicateReference{ReferenceID: intent.ReferenceID}
		}
	}

	if err := s.producer.Publish(ctx, intent.AccountID.String(), &intent); err != nil {
		s.logger.Error("Failed to publish transaction intent",
			"account_id", intent.AccountID.String(),
			"type", string(intent.Type),
			"error", err,
		)
		return err
	}

	s.logger.Info("Transaction intent published",
		"account_id", intent.AccountID.String(),
		"type", string(intent.Type),
		"amount", intent.Amount.String(),
	)

	return nil
}

// GetTransactionByID retrieves a transaction by its ID. Returns nil, nil if not found
func (s *TransactionServiceImpl) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return nil, nil
		}
		s.logger.Error("Failed to get transaction by ID", "transaction_id", id.String(), "error", err)
		return nil, err
	}
	return txn, nil
}

// GetTransactionsByAccountID retrieves a filtered, paginated list of
// transactions for an account with the total matching count
func (s *TransactionServiceImpl) GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, int64, error) {
	transactions, err := s.transactionRepo.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transactionRepo.CountByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}
