package transaction_worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corebank-ledger/internal/domain/account"
	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/ledger"
	"github.com/corebank-ledger/internal/platform/messaging/producers"
)

// IntentHandler decodes transaction intents from Kafka messages and runs
// them through the worker pool
type IntentHandler struct {
	pool     *WorkerPool
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

func NewIntentHandler(logger *slog.Logger, pool *WorkerPool, producer producers.DeadLetterPublisher) *IntentHandler {
	return &IntentHandler{
		pool:     pool,
		producer: producer,
		logger:   logger,
	}
}

// HandleMessage processes a single Kafka message. Returning nil commits the
// offset; returning an error leaves the message for redelivery. Business
// failures are terminal and must not be retried, only infrastructure errors
// (database or broker outages) are surfaced to the consumer.
func (h *IntentHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var intent ledger.TransactionIntent
	if err := json.Unmarshal(value, &intent); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal transaction intent from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger.With(
		"account_id", intent.AccountID.String(),
		"reference_id", intent.ReferenceID,
	)
	logger.Info("Received transaction intent",
		"type", string(intent.Type),
		"amount", intent.Amount.String(),
	)

	txn, err := h.pool.Process(ctx, intent)
	if err != nil {
		if isTerminal(err) {
			// The ledger settled the intent with a business outcome.
			// Redelivering would only produce the same result.
			logger.Warn("Transaction intent rejected", "error", err)
			return nil
		}
		logger.Error("Failed to process transaction intent", "error", err)
		return fmt.Errorf("processing intent for account %s failed: %w", intent.AccountID.String(), err)
	}

	logger.Info("Transaction intent processed", "transaction_id", txn.ID.String(), "status", string(txn.Status))
	return nil
}

// isTerminal reports whether the error is a business outcome that a retry
// cannot change
func isTerminal(err error) bool {
	return errors.Is(err, account.ErrInsufficientFunds) ||
		errors.Is(err, account.ErrAccountNotFound{}) ||
		errors.Is(err, transaction.ErrDuplicateReference{}) ||
		errors.Is(err, transaction.ErrInvalidType) ||
		errors.Is(err, transaction.ErrInvalidAmount) ||
		errors.Is(err, transaction.ErrEmptyDescription) ||
		errors.Is(err, ledger.ErrMissingAccountID) ||
		errors.Is(err, ledger.ErrTransferLegDirect)
}
