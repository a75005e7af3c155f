package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows per-account transaction listings.
type Filter struct {
	Type   *Type
	Status *Status
	Limit  int
	Offset int
}

// Repository manages transaction persistence. Create must enforce
// reference-id uniqueness at the store level (not just via the lookup) so
// that two concurrent requests with the same reference can never both
// insert a row.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByReferenceID returns nil, nil when no transaction carries the
	// reference.
	GetByReferenceID(ctx context.Context, referenceID string) (*Transaction, error)

	// UpdateStatus persists the PENDING -> terminal transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	ListByAccount(ctx context.Context, accountID uuid.UUID, filter Filter) ([]*Transaction, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID, filter Filter) (int64, error)
}

// ErrTransactionNotFound indicates missing transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// Is matches any ErrTransactionNotFound when the target carries no ID.
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.TransactionID == uuid.Nil || e.TransactionID == t.TransactionID
}

// ErrDuplicateReference indicates an idempotency violation: a transaction
// with the caller-supplied reference already exists, in any status.
type ErrDuplicateReference struct {
	ReferenceID string
}

func (e ErrDuplicateReference) Error() string {
	return "transaction with reference already exists: " + e.ReferenceID
}

// Is matches any ErrDuplicateReference when the target carries no reference.
func (e ErrDuplicateReference) Is(target error) bool {
	t, ok := target.(ErrDuplicateReference)
	if !ok {
		return false
	}
	return t.ReferenceID == "" || e.ReferenceID == t.ReferenceID
}
