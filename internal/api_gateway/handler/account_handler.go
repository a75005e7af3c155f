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
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create handles creation of a new account, validating the request and checking for duplicate account numbers
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), req.AccountNumber, req.OwnerName)
	if err != nil {
		var duplicateErr account.ErrDuplicateAccountNumber
		if errors.As(err, &duplicateErr) {
			h.logger.Warn("Attempt to create account with duplicate number", "account_number", duplicateErr.AccountNumber)
			RespondConflict(c, "Account with this number already exists")
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id", "Invalid account ID")
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetByNumber retrieves an account by its external account number
func (h *AccountHandler) GetByNumber(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if accountNumber == "" {
		RespondBadRequest(c, "Account number is required")
		return
	}

	acc, err := h.accountService.GetAccountByNumber(c.Request.Context(), accountNumber)
	if err != nil {
		h.logger.Error("Failed to get account by number", "account_number", accountNumber, "error", err)
		RespondInternalError(c)
		return
	}
	if acc == nil {
		RespondNotFound(c, "Account not found")
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// List retrieves a paginated list of active accounts
func (h *AccountHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// Delete soft-deletes an account, returning 404 if it does not exist or is already deleted
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, h.logger, "id", "Invalid account ID")
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), id); err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to delete account", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// parseUUIDParam parses a UUID path parameter, responding 400 on failure
func parseUUIDParam(c *gin.Context, logger *slog.Logger, name, message string) (uuid.UUID, bool) {
	param := c.Param(name)
	id, err := uuid.Parse(param)
	if err != nil {
		logger.Error("Invalid UUID parameter", "param", name, "value", param, "error", err)
		RespondBadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:            acc.ID.String(),
		AccountNumber: acc.AccountNumber,
		OwnerName:     acc.OwnerName,
		Balance:       acc.Balance.String(),
		TotalIncome:   acc.TotalIncome.String(),
		TotalExpenses: acc.TotalExpenses.String(),
		Version:       acc.Version,
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     acc.UpdatedAt.Format(time.RFC3339),
	}
	if acc.DeletedAt != nil {
		resp.DeletedAt = acc.DeletedAt.Format(time.RFC3339)
	}
	return resp
}
