package service

import (
	"context"
	"errors"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank-ledger/internal/domain/money"
	"github.com/corebank-ledger/internal/domain/transaction"
	"github.com/corebank-ledger/internal/ledger"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByReferenceID(ctx context.Context, referenceID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) (int64, error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessTransaction(ctx context.Context, intent ledger.TransactionIntent) (*transaction.Transaction, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockProcessor) ProcessTransfer(ctx context.Context, intent ledger.TransferIntent) (*ledger.TransferResult, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransferResult), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

func newTransactionServiceFixture() (TransactionService, *MockProcessor, *MockTransactionRepository, *MockPublisher) {
	processor := &MockProcessor{}
	repo := &MockTransactionRepository{}
	publisher := &MockPublisher{}
	svc := NewTransactionService(slog.Default(), processor, repo, publisher)
	return svc, processor, repo, publisher
}

func TestTransactionService_ProcessTransaction(t *testing.T) {
	svc, processor, _, _ := newTransactionServiceFixture()

	intent := ledger.TransactionIntent{
		AccountID:   uuid.New(),
		Type:        transaction.TypeDeposit,
		Amount:      mustMoney(t, "25.00"),
		Description: "topup",
	}
	txn := &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusCompleted}

	processor.On("ProcessTransaction", mock.Anything, intent).Return(txn, nil)

	result, err := svc.ProcessTransaction(context.Background(), intent)

	require.NoError(t, err)
	assert.Equal(t, txn, result)
	processor.AssertExpectations(t)
}

func TestTransactionService_SubmitTransaction(t *testing.T) {
	accountID := uuid.New()
	intent := ledger.TransactionIntent{
		AccountID:   accountID,
		Type:        transaction.TypeWithdrawal,
		Amount:      mustMoney(t, "10.00"),
		Description: "atm",
		ReferenceID: "ref-async-1",
	}

	t.Run("Success", func(t *testing.T) {
		svc, _, repo, publisher := newTransactionServiceFixture()

		repo.On("GetByReferenceID", mock.Anything, "ref-async-1").Return(nil, nil)
		publisher.On("Publish", mock.Anything, accountID.String(), &intent).Return(nil)

		err := svc.SubmitTransaction(context.Background(), intent)

		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("DuplicateReference", func(t *testing.T) {
		svc, _, repo, publisher := newTransactionServiceFixture()

		existing := &transaction.Transaction{ID: uuid.New()}
		repo.On("GetByReferenceID", mock.Anything, "ref-async-1").Return(existing, nil)

		err := svc.SubmitTransaction(context.Background(), intent)

		require.ErrorIs(t, err, transaction.ErrDuplicateReference{})
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidIntent", func(t *testing.T) {
		svc, _, _, publisher := newTransactionServiceFixture()

		bad := intent
		bad.Description = ""

		err := svc.SubmitTransaction(context.Background(), bad)

		require.ErrorIs(t, err, transaction.ErrEmptyDescription)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PublishError", func(t *testing.T) {
		svc, _, repo, publisher := newTransactionServiceFixture()

		pubErr := errors.New("kafka down")
		repo.On("GetByReferenceID", mock.Anything, "ref-async-1").Return(nil, nil)
		publisher.On("Publish", mock.Anything, accountID.String(), &intent).Return(pubErr)

		err := svc.SubmitTransaction(context.Background(), intent)

		require.ErrorIs(t, err, pubErr)
	})
}

func TestTransactionService_GetTransactionByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		svc, _, repo, _ := newTransactionServiceFixture()

		txn := &transaction.Transaction{ID: uuid.New()}
		repo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)

		result, err := svc.GetTransactionByID(context.Background(), txn.ID)

		require.NoError(t, err)
		assert.Equal(t, txn, result)
	})

	t.Run("NotFoundReturnsNil", func(t *testing.T) {
		svc, _, repo, _ := newTransactionServiceFixture()

		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(nil, transaction.ErrTransactionNotFound{TransactionID: id})

		result, err := svc.GetTransactionByID(context.Background(), id)

		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("StoreError", func(t *testing.T) {
		svc, _, repo, _ := newTransactionServiceFixture()

		id := uuid.New()
		dbErr := errors.New("db error")
		repo.On("GetByID", mock.Anything, id).Return(nil, dbErr)

		result, err := svc.GetTransactionByID(context.Background(), id)

		require.ErrorIs(t, err, dbErr)
		assert.Nil(t, result)
	})
}

func TestTransactionService_GetTransactionsByAccountID(t *testing.T) {
	svc, _, repo, _ := newTransactionServiceFixture()

	accountID := uuid.New()
	txType := transaction.TypeDeposit
	filter := transaction.Filter{Type: &txType, Limit: 10, Offset: 0}
	txns := []*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}

	repo.On("ListByAccount", mock.Anything, accountID, filter).Return(txns, nil)
	repo.On("CountByAccount", mock.Anything, accountID, filter).Return(int64(2), nil)

	result, total, err := svc.GetTransactionsByAccountID(context.Background(), accountID, filter)

	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, int64(2), total)
}
