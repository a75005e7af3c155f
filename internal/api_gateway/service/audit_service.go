package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/corebank-ledger/internal/domain/audit"
)

// AuditServiceImpl implements the AuditService interface
type AuditServiceImpl struct {
	store audit.Store
}

// NewAuditService creates a new audit service
func NewAuditService(store audit.Store) AuditService {
	return &AuditServiceImpl{store: store}
}

// GetAuditTrail retrieves paginated audit entries for an entity, newest first
func (s *AuditServiceImpl) GetAuditTrail(ctx context.Context, entityID uuid.UUID, page, perPage int) ([]*audit.Entry, error) {
	offset := (page - 1) * perPage
	return s.store.FindByEntityID(ctx, entityID, perPage, offset)
}
