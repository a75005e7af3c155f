package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corebank-ledger/internal/api_gateway/service"
	"github.com/corebank-ledger/internal/domain/audit"
)

// AuditHandler handles HTTP requests for the audit trail
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// GetByEntityID retrieves paginated audit entries for an entity, newest first
func (h *AuditHandler) GetByEntityID(c *gin.Context) {
	entityID, ok := parseUUIDParam(c, h.logger, "entityId", "Invalid entity ID")
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, err := h.auditService.GetAuditTrail(c.Request.Context(), entityID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to get audit trail", "entity_id", entityID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapAuditEntryToResponse(entry))
	}

	RespondWithData(c, http.StatusOK, responses)
}

// mapAuditEntryToResponse maps an audit entry to a response DTO
func mapAuditEntryToResponse(entry *audit.Entry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         entry.ID.String(),
		Action:     string(entry.Action),
		EntityID:   entry.EntityID.String(),
		EntityType: entry.EntityType,
		OldValues:  entry.OldValues,
		NewValues:  entry.NewValues,
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
	}
}
