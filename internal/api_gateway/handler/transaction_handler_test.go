package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank-ledger/internal/domain/account"
	"github.com/corebank-ledger/internal/domain/money"
	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/ledger"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) ProcessTransaction(ctx context.Context, intent ledger.TransactionIntent) (*transaction.Transaction, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) ProcessTransfer(ctx context.Context, intent ledger.TransferIntent) (*ledger.TransferResult, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransferResult), args.Error(1)
}

func (m *MockTransactionService) SubmitTransaction(ctx context.Context, intent ledger.TransactionIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockTransactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func setupTransactionRouter(svc *MockTransactionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewTransactionHandler(slog.Default(), svc)
	router.POST("/transactions", h.Create)
	router.POST("/transactions/async", h.CreateAsync)
	router.POST("/transactions/transfer", h.Transfer)
	router.GET("/transactions/:id", h.GetByID)
	router.GET("/accounts/:id/transactions", h.GetByAccountID)
	return router
}

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestTransactionHandler_Create(t *testing.T) {
	accountID := uuid.New()
	reqBody := CreateTransactionRequest{
		AccountID:   accountID.String(),
		Type:        "DEPOSIT",
		Amount:      "100.50",
		Description: "paycheck",
		ReferenceID: "ref-1",
	}

	t.Run("Success", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		txn, err := transaction.New(accountID, transaction.TypeDeposit, mustMoney(t, "100.50"), "paycheck", "ref-1", nil)
		require.NoError(t, err)
		txn.Status = transaction.StatusCompleted

		svc.On("ProcessTransaction", mock.Anything, mock.MatchedBy(func(intent ledger.TransactionIntent) bool {
			return intent.AccountID == accountID &&
				intent.Type == transaction.TypeDeposit &&
				intent.Amount.String() == "100.50" &&
				intent.ReferenceID == "ref-1"
		})).Return(txn, nil)

		rr := postJSON(router, "/transactions", reqBody)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "COMPLETED", data["status"])
		assert.Equal(t, "100.50", data["amount"])
	})

	t.Run("DuplicateReferenceReturnsExisting", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		existing, err := transaction.New(accountID, transaction.TypeDeposit, mustMoney(t, "100.50"), "paycheck", "ref-1", nil)
		require.NoError(t, err)
		existing.Status = transaction.StatusCompleted

		svc.On("ProcessTransaction", mock.Anything, mock.Anything).
			Return(existing, transaction.ErrDuplicateReference{ReferenceID: "ref-1"})

		rr := postJSON(router, "/transactions", reqBody)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, existing.ID.String(), data["id"])
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		failed, err := transaction.New(accountID, transaction.TypeWithdrawal, mustMoney(t, "100.50"), "paycheck", "ref-1", nil)
		require.NoError(t, err)
		failed.Status = transaction.StatusFailed

		svc.On("ProcessTransaction", mock.Anything, mock.Anything).
			Return(failed, account.ErrInsufficientFunds)

		body := reqBody
		body.Type = "WITHDRAWAL"
		rr := postJSON(router, "/transactions", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INSUFFICIENT_FUNDS", resp.Error.Code)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		svc.On("ProcessTransaction", mock.Anything, mock.Anything).
			Return(nil, account.ErrAccountNotFound{AccountID: accountID})

		rr := postJSON(router, "/transactions", reqBody)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("RejectsTransferLegType", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		body := reqBody
		body.Type = "TRANSFER_OUT"
		rr := postJSON(router, "/transactions", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "ProcessTransaction", mock.Anything, mock.Anything)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		body := reqBody
		body.Amount = "abc"
		rr := postJSON(router, "/transactions", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "ProcessTransaction", mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_CreateAsync(t *testing.T) {
	accountID := uuid.New()
	reqBody := CreateTransactionRequest{
		AccountID:   accountID.String(),
		Type:        "WITHDRAWAL",
		Amount:      "20.00",
		Description: "atm",
		ReferenceID: "ref-async",
	}

	t.Run("Accepted", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		svc.On("SubmitTransaction", mock.Anything, mock.Anything).Return(nil)

		rr := postJSON(router, "/transactions/async", reqBody)

		assert.Equal(t, http.StatusAccepted, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "PENDING", data["status"])
		assert.Equal(t, "ref-async", data["reference_id"])
	})

	t.Run("DuplicateReference", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		svc.On("SubmitTransaction", mock.Anything, mock.Anything).
			Return(transaction.ErrDuplicateReference{ReferenceID: "ref-async"})

		rr := postJSON(router, "/transactions/async", reqBody)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestTransactionHandler_Transfer(t *testing.T) {
	sourceID := uuid.New()
	targetID := uuid.New()
	reqBody := CreateTransferRequest{
		SourceAccountID: sourceID.String(),
		TargetAccountID: targetID.String(),
		Amount:          "75.00",
		Description:     "invoice 42",
		ReferenceID:     "tr-42",
	}

	t.Run("Success", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		debit, err := transaction.New(sourceID, transaction.TypeTransferOut, mustMoney(t, "75.00"), "invoice 42", "tr-42-out", nil)
		require.NoError(t, err)
		credit, err := transaction.New(targetID, transaction.TypeTransferIn, mustMoney(t, "75.00"), "invoice 42", "tr-42-in", nil)
		require.NoError(t, err)

		result := &ledger.TransferResult{
			State:  ledger.TransferStateCompleted,
			Debit:  debit,
			Credit: credit,
		}
		svc.On("ProcessTransfer", mock.Anything, mock.MatchedBy(func(intent ledger.TransferIntent) bool {
			return intent.SourceAccountID == sourceID && intent.TargetAccountID == targetID
		})).Return(result, nil)

		rr := postJSON(router, "/transactions/transfer", reqBody)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, string(ledger.TransferStateCompleted), data["state"])
		assert.NotNil(t, data["debit"])
		assert.NotNil(t, data["credit"])
	})

	t.Run("CompensatedTransferReportsSagaState", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		debit, err := transaction.New(sourceID, transaction.TypeTransferOut, mustMoney(t, "75.00"), "invoice 42", "tr-42-out", nil)
		require.NoError(t, err)

		result := &ledger.TransferResult{
			State: ledger.TransferStateCompensated,
			Debit: debit,
		}
		svc.On("ProcessTransfer", mock.Anything, mock.Anything).
			Return(result, account.ErrAccountNotFound{AccountID: targetID})

		rr := postJSON(router, "/transactions/transfer", reqBody)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, string(ledger.TransferStateCompensated), data["state"])
	})

	t.Run("SameAccountRejected", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		svc.On("ProcessTransfer", mock.Anything, mock.Anything).Return(nil, ledger.ErrSameAccount)

		body := reqBody
		body.TargetAccountID = body.SourceAccountID
		rr := postJSON(router, "/transactions/transfer", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("ReferenceOptional", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		debit, err := transaction.New(sourceID, transaction.TypeTransferOut, mustMoney(t, "75.00"), "invoice 42", "", nil)
		require.NoError(t, err)
		credit, err := transaction.New(targetID, transaction.TypeTransferIn, mustMoney(t, "75.00"), "invoice 42", "", nil)
		require.NoError(t, err)

		result := &ledger.TransferResult{
			State:  ledger.TransferStateCompleted,
			Debit:  debit,
			Credit: credit,
		}
		svc.On("ProcessTransfer", mock.Anything, mock.MatchedBy(func(intent ledger.TransferIntent) bool {
			return intent.ReferenceID == ""
		})).Return(result, nil)

		body := reqBody
		body.ReferenceID = ""
		rr := postJSON(router, "/transactions/transfer", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("MetadataForwarded", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		debit, err := transaction.New(sourceID, transaction.TypeTransferOut, mustMoney(t, "75.00"), "invoice 42", "tr-42-out", nil)
		require.NoError(t, err)
		credit, err := transaction.New(targetID, transaction.TypeTransferIn, mustMoney(t, "75.00"), "invoice 42", "tr-42-in", nil)
		require.NoError(t, err)

		result := &ledger.TransferResult{
			State:  ledger.TransferStateCompleted,
			Debit:  debit,
			Credit: credit,
		}
		svc.On("ProcessTransfer", mock.Anything, mock.MatchedBy(func(intent ledger.TransferIntent) bool {
			return intent.Metadata["invoice_id"] == "INV-42"
		})).Return(result, nil)

		body := reqBody
		body.Metadata = map[string]any{"invoice_id": "INV-42"}
		rr := postJSON(router, "/transactions/transfer", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})
}

func TestTransactionHandler_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		txn, err := transaction.New(uuid.New(), transaction.TypeDeposit, mustMoney(t, "5.00"), "coffee", "", nil)
		require.NoError(t, err)
		svc.On("GetTransactionByID", mock.Anything, txn.ID).Return(txn, nil)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+txn.ID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		id := uuid.New()
		svc.On("GetTransactionByID", mock.Anything, id).Return(nil, nil)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTransactionHandler_GetByAccountID(t *testing.T) {
	t.Run("FiltersAndPaginates", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		accountID := uuid.New()
		txn, err := transaction.New(accountID, transaction.TypeDeposit, mustMoney(t, "5.00"), "coffee", "", nil)
		require.NoError(t, err)

		svc.On("GetTransactionsByAccountID", mock.Anything, accountID, mock.MatchedBy(func(f transaction.Filter) bool {
			return f.Type != nil && *f.Type == transaction.TypeDeposit &&
				f.Status != nil && *f.Status == transaction.StatusCompleted &&
				f.Limit == 5 && f.Offset == 5
		})).Return([]*transaction.Transaction{txn}, int64(11), nil)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/transactions?type=DEPOSIT&status=COMPLETED&page=2&per_page=5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 11, resp.Meta.TotalItems)
		assert.Equal(t, 2, resp.Meta.Page)
	})

	t.Run("InvalidFilterValue", func(t *testing.T) {
		svc := &MockTransactionService{}
		router := setupTransactionRouter(svc)

		accountID := uuid.New()
		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/transactions?type=BOGUS", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "GetTransactionsByAccountID", mock.Anything, mock.Anything, mock.Anything)
	})
}
