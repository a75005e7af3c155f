package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/api_gateway/service"
	"github.com/corebank-ledger/internal/domain/account"
	"github.com/corebank-ledger/internal/domain/money"
	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/ledger"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create executes a deposit or withdrawal synchronously. Requests replaying
// an existing reference ID get the original transaction back with 200.
func (h *TransactionHandler) Create(c *gin.Context) {
	intent, ok := h.bindIntent(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.ProcessTransaction(c.Request.Context(), intent)
	if err != nil {
		if errors.Is(err, transaction.ErrDuplicateReference{}) && txn != nil {
			RespondOK(c, mapTransactionToResponse(txn))
			return
		}
		h.respondTransactionError(c, err, txn)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// CreateAsync queues a deposit or withdrawal for the transaction worker
func (h *TransactionHandler) CreateAsync(c *gin.Context) {
	intent, ok := h.bindIntent(c)
	if !ok {
		return
	}

	if err := h.transactionService.SubmitTransaction(c.Request.Context(), intent); err != nil {
		if errors.Is(err, transaction.ErrDuplicateReference{}) {
			RespondConflict(c, "Transaction with this reference already exists")
			return
		}
		h.logger.Error("Failed to submit transaction", "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{
		"account_id":   intent.AccountID.String(),
		"type":         string(intent.Type),
		"amount":       intent.Amount.String(),
		"reference_id": intent.ReferenceID,
		"status":       string(transaction.StatusPending),
	})
}

// Transfer executes a two-leg transfer between accounts
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sourceID, err := uuid.Parse(req.SourceAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid source account ID")
		return
	}
	targetID, err := uuid.Parse(req.TargetAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid target account ID")
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		RespondBadRequest(c, "Invalid amount: "+err.Error())
		return
	}

	intent := ledger.TransferIntent{
		SourceAccountID: sourceID,
		TargetAccountID: targetID,
		Amount:          amount,
		Description:     req.Description,
		ReferenceID:     req.ReferenceID,
		Metadata:        req.Metadata,
	}

	result, err := h.transactionService.ProcessTransfer(c.Request.Context(), intent)
	if err != nil {
		if result != nil {
			// The saga ran; report how far it got alongside the failure
			h.respondTransferFailure(c, err, result)
			return
		}
		if errors.Is(err, ledger.ErrSameAccount) || errors.Is(err, ledger.ErrMissingAccountID) ||
			errors.Is(err, transaction.ErrInvalidAmount) || errors.Is(err, transaction.ErrEmptyDescription) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to process transfer", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapTransferToResponse(result))
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id", "Invalid transaction ID")
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}
	if txn == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetByAccountID retrieves filtered, paginated transaction history for an account
func (h *TransactionHandler) GetByAccountID(c *gin.Context) {
	accountID, ok := parseUUIDParam(c, h.logger, "id", "Invalid account ID")
	if !ok {
		return
	}

	var params TransactionFilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		RespondBadRequest(c, "Invalid query parameters")
		return
	}

	filter := transaction.Filter{
		Limit:  params.PerPage,
		Offset: (params.Page - 1) * params.PerPage,
	}
	if params.Type != "" {
		txType := transaction.Type(params.Type)
		filter.Type = &txType
	}
	if params.Status != "" {
		status := transaction.Status(params.Status)
		filter.Status = &status
	}

	transactions, total, err := h.transactionService.GetTransactionsByAccountID(c.Request.Context(), accountID, filter)
	if err != nil {
		h.logger.Error("Failed to get transactions", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		responses = append(responses, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// bindIntent parses and validates the request body into a transaction intent
func (h *TransactionHandler) bindIntent(c *gin.Context) (ledger.TransactionIntent, bool) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return ledger.TransactionIntent{}, false
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return ledger.TransactionIntent{}, false
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		RespondBadRequest(c, "Invalid amount: "+err.Error())
		return ledger.TransactionIntent{}, false
	}

	return ledger.TransactionIntent{
		AccountID:   accountID,
		Type:        transaction.Type(req.Type),
		Amount:      amount,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
		Metadata:    req.Metadata,
	}, true
}

// respondTransactionError maps ledger failures onto HTTP statuses. When the
// transaction record exists it is included so callers can see the FAILED row.
func (h *TransactionHandler) respondTransactionError(c *gin.Context, err error, txn *transaction.Transaction) {
	switch {
	case errors.Is(err, account.ErrInsufficientFunds):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient funds for this transaction")
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")
	case errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrEmptyDescription),
		errors.Is(err, ledger.ErrMissingAccountID),
		errors.Is(err, ledger.ErrTransferLegDirect):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Failed to process transaction", "error", err)
		RespondInternalError(c)
	}
}

// respondTransferFailure reports a saga that started but did not complete
func (h *TransactionHandler) respondTransferFailure(c *gin.Context, err error, result *ledger.TransferResult) {
	response := mapTransferToResponse(result)
	status := http.StatusUnprocessableEntity
	code := "TRANSFER_FAILED"

	switch {
	case errors.Is(err, account.ErrInsufficientFunds):
		code = "INSUFFICIENT_FUNDS"
	case errors.Is(err, account.ErrAccountNotFound{}):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, transaction.ErrDuplicateReference{}):
		status = http.StatusConflict
		code = "CONFLICT"
	}

	resp := NewErrorResponse(code, err.Error())
	resp.Data = response
	c.JSON(status, resp)
}

// mapTransactionToResponse maps a transaction entity to a response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          txn.ID.String(),
		AccountID:   txn.AccountID.String(),
		Type:        string(txn.Type),
		Amount:      txn.Amount.String(),
		Description: txn.Description,
		Status:      string(txn.Status),
		Metadata:    txn.Metadata,
		CreatedAt:   txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.TargetAccountID != nil {
		resp.TargetAccountID = txn.TargetAccountID.String()
	}
	if txn.ReferenceID != nil {
		resp.ReferenceID = *txn.ReferenceID
	}
	return resp
}

// mapTransferToResponse maps a saga result to a response DTO
func mapTransferToResponse(result *ledger.TransferResult) TransferResponse {
	resp := TransferResponse{State: string(result.State)}
	if result.Debit != nil {
		d := mapTransactionToResponse(result.Debit)
		resp.Debit = &d
	}
	if result.Credit != nil {
		cr := mapTransactionToResponse(result.Credit)
		resp.Credit = &cr
	}
	if result.Reversal != nil {
		r := mapTransactionToResponse(result.Reversal)
		resp.Reversal = &r
	}
	return resp
}
