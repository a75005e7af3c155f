package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/account"
	"github.com/corebank-ledger/internal/domain/audit"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	logger      *slog.Logger
	accountRepo account.Repository
	auditLog    audit.Recorder
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, accountRepo account.Repository, auditLog audit.Recorder) AccountService {
	return &AccountServiceImpl{
		logger:      logger,
		accountRepo: accountRepo,
		auditLog:    auditLog,
	}
}

// CreateAccount creates a new account, checking for duplicate account numbers
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, accountNumber, ownerName string) (*account.Account, error) {
	existingAccount, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if existingAccount != nil {
		return nil, account.ErrDuplicateAccountNumber{AccountNumber: accountNumber}
	}

	acc, err := account.NewAccount(accountNumber, ownerName)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	if auditErr := s.auditLog.Record(ctx, audit.ActionAccountCreated, acc.ID, "account",
		nil,
		map[string]any{
			"account_number": acc.AccountNumber,
			"owner_name":     acc.OwnerName,
			"balance":        acc.Balance.String(),
		},
	); auditErr != nil {
		s.logger.Error("Failed to record account creation audit entry",
			"account_id", acc.ID.String(),
			"error", auditErr)
	}

	return acc, nil
}

// GetAccountByID retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// GetAccountByNumber retrieves an account by its external number, returns nil if absent
func (s *AccountServiceImpl) GetAccountByNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	return s.accountRepo.GetByAccountNumber(ctx, accountNumber)
}

// ListAccounts retrieves a paginated list of active accounts with the total count
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, page, perPage int) ([]*account.Account, int64, error) {
	offset := (page - 1) * perPage

	accounts, err := s.accountRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// DeleteAccount soft-deletes an account and records the deletion
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if acc.IsDeleted() {
		return account.ErrAccountNotFound{AccountID: id}
	}

	if err := s.accountRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if auditErr := s.auditLog.Record(ctx, audit.ActionAccountDeleted, id, "account",
		map[string]any{
			"account_number": acc.AccountNumber,
			"balance":        acc.Balance.String(),
		},
		nil,
	); auditErr != nil {
		s.logger.Error("Failed to record account deletion audit entry",
			"account_id", id.String(),
			"error", auditErr)
	}

	return nil
}
