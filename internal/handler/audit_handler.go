package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/utils"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

type AuditHandler struct {
	auditService *service.AuditService
}

type AuditEventResponse struct {
	ID           uuid.UUID              `json:"id"`
	TenantID     string                 `json:"tenant_id,omitempty"`
	UserID       string                 `json:"user_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	OldValues    map[string]interface{} `json:"old_values,omitempty"`
	NewValues    map[string]interface{} `json:"new_values,omitempty"`
	Timestamp    string                 `json:"timestamp"`
}

type AuditListResponse struct {
	Events []*AuditEventResponse `json:"events"`
	Total  int64                 `json:"total"`
	Page   int                   `json:"page"`
	Limit  int                   `json:"limit"`
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

func (h *AuditHandler) ListAuditEvents(c *gin.Context) {
	page := utils.ParseInt(c.DefaultQuery("page", "1"), 1)
	limit := utils.ParseInt(c.DefaultQuery("limit", "20"), 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	params := repository.AuditListParams{
		Action:       c.Query("action"),
		ResourceType: c.Query("resource_type"),
		ResourceID:   c.Query("resource_id"),
		UserID:       c.Query("user_id"),
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}
	if startTime, err := time.Parse(time.RFC3339, c.Query("start_time")); err == nil {
		params.StartTime = startTime
	}
	if endTime, err := time.Parse(time.RFC3339, c.Query("end_time")); err == nil {
		params.EndTime = endTime
	}

	events, total, err := h.auditService.ListAuditLogs(c.Request.Context(), params)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}

	responses := make([]*AuditEventResponse, 0, len(events))
	for _, event := range events {
		resp := &AuditEventResponse{
			ID:           event.ID,
			UserID:       event.UserID,
			Action:       event.Action,
			ResourceType: event.ResourceType,
			ResourceID:   event.ResourceID,
			OldValues:    event.OldValues,
			NewValues:    event.NewValues,
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
		}
		if event.TenantID != nil {
			resp.TenantID = event.TenantID.String()
		}
		responses = append(responses, resp)
	}

	pkgutils.Success(c, http.StatusOK, AuditListResponse{
		Events: responses,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}
