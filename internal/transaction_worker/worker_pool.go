// Package transaction_worker consumes queued transaction intents from Kafka
// and executes them against the ledger through a bounded worker pool.
package transaction_worker

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/ledger"
)

// IntentProcessor executes a transaction intent against the ledger
type IntentProcessor interface {
	ProcessTransaction(ctx context.Context, intent ledger.TransactionIntent) (*transaction.Transaction, error)
}

// WorkerPool bounds the number of intents processed concurrently. Callers
// block until their intent finishes so Kafka offsets are only committed
// after the ledger has settled the transaction.
type WorkerPool struct {
	processor IntentProcessor
	pool      *ants.Pool
	logger    *slog.Logger
}

func NewWorkerPool(logger *slog.Logger, processor IntentProcessor, size int) (*WorkerPool, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	return &WorkerPool{
		processor: processor,
		pool:      pool,
		logger:    logger,
	}, nil
}

// Process submits the intent to the pool and waits for the outcome
func (p *WorkerPool) Process(ctx context.Context, intent ledger.TransactionIntent) (*transaction.Transaction, error) {
	type outcome struct {
		txn *transaction.Transaction
		err error
	}
	resultChan := make(chan outcome, 1)

	if err := p.pool.Submit(func() {
		txn, err := p.processor.ProcessTransaction(ctx, intent)
		resultChan <- outcome{txn: txn, err: err}
	}); err != nil {
		p.logger.Error("Failed to submit intent to worker pool",
			"account_id", intent.AccountID.String(),
			"error", err,
		)
		return nil, err
	}

	result := <-resultChan
	return result.txn, result.err
}

// Shutdown releases the pool. In-flight tasks run to completion.
func (p *WorkerPool) Shutdown() {
	p.logger.Info("Shutting down worker pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

// Running returns the number of busy workers
func (p *WorkerPool) Running() int {
	return p.pool.Running()
}

// Capacity returns the pool size
func (p *WorkerPool) Capacity() int {
	return p.pool.Cap()
}
