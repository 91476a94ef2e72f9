package handlers

import (
	"strconv"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditHandler exposes the persisted audit trail to admins.
type AuditHandler struct {
	DB *gorm.DB
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{DB: db}
}

// ListEvents returns audit events, newest first, optionally filtered by
// event type (?type=patient_restricted) or target (?targetId=...).
func (h *AuditHandler) ListEvents(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			utils.BadRequest(c, "limit must be an integer between 1 and 1000")
			return
		}
		limit = parsed
	}

	query := h.DB.Order("created_at desc").Limit(limit)
	if eventType := c.Query("type"); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if targetID := c.Query("targetId"); targetID != "" {
		query = query.Where("target_id = ?", targetID)
	}

	var events []models.AuditEvent
	if err := query.Find(&events).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch audit events: "+err.Error())
		return
	}

	utils.Success(c, "Audit events fetched successfully", events)
}
