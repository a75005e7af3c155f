package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corebank-ledger/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit log collection in MongoDB
	AuditCollectionName = "audit_entries"
)

// AuditRepository implements the audit.Store interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Store {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Record appends a new audit entry describing a state change on an entity.
// Entries are append-only; nothing ever updates or deletes them.
func (r *AuditRepository) Record(ctx context.Context, action audit.Action, entityID uuid.UUID, entityType string, oldValues, newValues map[string]any) error {
	collection := r.db.Collection(AuditCollectionName)

	entry := &audit.Entry{
		ID:         uuid.New(),
		Action:     action,
		EntityID:   entityID,
		EntityType: entityType,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  time.Now(),
	}

	_, err := collection.InsertOne(ctx, entry)
	if err != nil {
		r.logger.Error("Failed to record audit entry",
			"action", string(action),
			"entity_id", entityID.String(),
			"error", err)
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// FindByEntityID retrieves paginated audit entries for an entity.
// Results are sorted by creation time in descending order (newest first).
func (r *AuditRepository) FindByEntityID(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*audit.Entry, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"entity_id": entityID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit entries",
			"entity_id", entityID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*audit.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode audit entries",
			"entity_id", entityID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}
