package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank-ledger/internal/domain/audit"
)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) GetAuditTrail(ctx context.Context, entityID uuid.UUID, page, perPage int) ([]*audit.Entry, error) {
	args := m.Called(ctx, entityID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func setupAuditRouter(svc *MockAuditService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAuditHandler(slog.Default(), svc)
	router.GET("/audit/:entityId", h.GetByEntityID)
	return router
}

func TestAuditHandler_GetByEntityID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &MockAuditService{}
		router := setupAuditRouter(svc)

		entityID := uuid.New()
		entries := []*audit.Entry{
			{
				ID:         uuid.New(),
				Action:     audit.ActionBalanceUpdated,
				EntityID:   entityID,
				EntityType: "account",
				NewValues:  map[string]any{"balance": "150.25"},
				CreatedAt:  time.Now(),
			},
		}
		svc.On("GetAuditTrail", mock.Anything, entityID, 1, 10).Return(entries, nil)

		req, _ := http.NewRequest(http.MethodGet, "/audit/"+entityID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.([]interface{})
		require.Len(t, data, 1)
		entry := data[0].(map[string]interface{})
		assert.Equal(t, "BALANCE_UPDATED", entry["action"])
		assert.Equal(t, entityID.String(), entry["entity_id"])
	})

	t.Run("InvalidEntityID", func(t *testing.T) {
		svc := &MockAuditService{}
		router := setupAuditRouter(svc)

		req, _ := http.NewRequest(http.MethodGet, "/audit/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "GetAuditTrail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
