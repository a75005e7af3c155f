package ledger

import (
	"context"

	"github.com/corebank-ledger/internal/domain/transaction"
)

// TransferState tracks how far a transfer saga progressed. The state is
// carried in the result so callers and operators can tell a cleanly
// compensated transfer from one that needs manual reconciliation.
type TransferState string

const (
	TransferStateDebitPending       TransferState = "DEBIT_PENDING"
	TransferStateCreditPending      TransferState = "CREDIT_PENDING"
	TransferStateCompleted          TransferState = "COMPLETED"
	TransferStateCompensating       TransferState = "COMPENSATING"
	TransferStateCompensated        TransferState = "COMPENSATED"
	TransferStateCompensationFailed TransferState = "COMPENSATION_FAILED"
)

// TransferResult reports every transaction the saga touched. Reversal is
// non-nil only when the credit leg failed and a compensating deposit was
// attempted.
type TransferResult struct {
	State    TransferState
	Debit    *transaction.Transaction
	Credit   *transaction.Transaction
	Reversal *transaction.Transaction
}

// ProcessTransfer moves funds between two accounts as a two-leg saga.
//
// The debit leg runs first; if it fails, the transfer stops with nothing
// applied. The credit leg then runs; if it fails, a compensating deposit
// restores the source balance and the credit leg's error is returned so the
// caller sees why the transfer did not happen. When the intent carries a
// reference ID the legs run under "<ref>-out" and "<ref>-in", so
// re-submitting the same reference replays against the per-leg idempotency
// barrier and a retried transfer never double-moves funds. Without a
// reference the legs carry none and each submission executes anew.
func (o *Orchestrator) ProcessTransfer(ctx context.Context, intent TransferIntent) (*TransferResult, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	result := &TransferResult{State: TransferStateDebitPending}

	debitIntent := TransactionIntent{
		AccountID:       intent.SourceAccountID,
		TargetAccountID: &intent.TargetAccountID,
		Type:            transaction.TypeTransferOut,
		Amount:          intent.Amount,
		Description:     intent.Description,
		ReferenceID:     legReference(intent.ReferenceID, "-out"),
		Metadata: legMetadata(intent, map[string]any{
			"target_account_id": intent.TargetAccountID.String(),
		}),
	}

	debitTxn, err := o.execute(ctx, debitIntent)
	result.Debit = debitTxn
	if err != nil {
		o.logger.Warn("Transfer debit leg failed",
			"reference_id", intent.ReferenceID,
			"source_account_id", intent.SourceAccountID.String(),
			"error", err)
		return result, err
	}

	result.State = TransferStateCreditPending

	creditIntent := TransactionIntent{
		AccountID:       intent.TargetAccountID,
		TargetAccountID: &intent.SourceAccountID,
		Type:            transaction.TypeTransferIn,
		Amount:          intent.Amount,
		Description:     intent.Description,
		ReferenceID:     legReference(intent.ReferenceID, "-in"),
		Metadata: legMetadata(intent, map[string]any{
			"source_account_id": intent.SourceAccountID.String(),
		}),
	}

	creditTxn, err := o.execute(ctx, creditIntent)
	result.Credit = creditTxn
	if err != nil {
		result.State = TransferStateCompensating
		o.compensate(ctx, intent, debitTxn, result)
		// The credit leg's failure is the transfer's failure, whatever the
		// compensation outcome.
		return result, err
	}

	result.State = TransferStateCompleted

	o.logger.Info("Transfer completed",
		"reference_id", intent.ReferenceID,
		"source_account_id", intent.SourceAccountID.String(),
		"target_account_id", intent.TargetAccountID.String(),
		"amount", intent.Amount.String())

	return result, nil
}

// compensate refunds a committed debit leg after the credit leg failed. The
// reversal is a plain deposit back onto the source account carrying the
// reversed transaction's ID in its metadata and no reference of its own. A
// failed compensation is not retried here; it marks the saga
// COMPENSATION_FAILED for reconciliation.
func (o *Orchestrator) compensate(ctx context.Context, intent TransferIntent, debitTxn *transaction.Transaction, result *TransferResult) {
	reversalIntent := TransactionIntent{
		AccountID:   intent.SourceAccountID,
		Type:        transaction.TypeDeposit,
		Amount:      intent.Amount,
		Description: "Reversal: " + intent.Description,
		Metadata: legMetadata(intent, map[string]any{
			"reversed_transaction_id": debitTxn.ID.String(),
		}),
	}

	reversalTxn, err := o.execute(ctx, reversalIntent)
	result.Reversal = reversalTxn
	if err != nil {
		result.State = TransferStateCompensationFailed
		o.logger.Error("Transfer compensation failed, source account debited without credit",
			"reference_id", intent.ReferenceID,
			"source_account_id", intent.SourceAccountID.String(),
			"debit_transaction_id", debitTxn.ID.String(),
			"error", err)
		return
	}

	result.State = TransferStateCompensated
	o.logger.Warn("Transfer compensated after credit leg failure",
		"reference_id", intent.ReferenceID,
		"source_account_id", intent.SourceAccountID.String(),
		"reversal_transaction_id", reversalTxn.ID.String())
}

// legReference derives a per-leg reference, or none when the transfer itself
// carries none.
func legReference(transferRef, suffix string) string {
	if transferRef == "" {
		return ""
	}
	return transferRef + suffix
}

// legMetadata combines the caller-supplied transfer metadata with the saga's
// own annotations. Saga annotations win on key collisions so the transfer
// linkage cannot be spoofed by the caller.
func legMetadata(intent TransferIntent, annotations map[string]any) map[string]any {
	md := make(map[string]any, len(intent.Metadata)+len(annotations)+1)
	for k, v := range intent.Metadata {
		md[k] = v
	}
	if intent.ReferenceID != "" {
		md["transfer_reference"] = intent.ReferenceID
	}
	for k, v := range annotations {
		md[k] = v
	}
	return md
}
