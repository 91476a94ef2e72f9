package handlers

import (
	"clinic-app-server/internal/clinic"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReaccessHandler handles re-access (appeal) requests from restricted
// patients and their adjudication by admins.
type ReaccessHandler struct {
	DB       *gorm.DB
	Workflow *clinic.ReaccessWorkflow
}

// NewReaccessHandler creates a new ReaccessHandler.
func NewReaccessHandler(db *gorm.DB, workflow *clinic.ReaccessWorkflow) *ReaccessHandler {
	return &ReaccessHandler{DB: db, Workflow: workflow}
}

// SubmitReaccessRequest represents the request body for filing an appeal.
type SubmitReaccessRequest struct {
	Reason       string `json:"reason" binding:"required"`
	ContactPhone string `json:"contactPhone"`
}

// Submit files a re-access request for the authenticated patient.
func (h *ReaccessHandler) Submit(c *gin.Context) {
	var req SubmitReaccessRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := currentActor(c, h.DB)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	request, err := h.Workflow.Submit(actor, actor.ID, req.Reason, req.ContactPhone)
	if err != nil {
		respondCoreError(c, err)
		return
	}

	utils.Created(c, "Re-access request submitted successfully", request)
}

// CheckPending reports whether the authenticated patient already has a
// pending request, so the client can gate the submit action.
func (h *ReaccessHandler) CheckPending(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	pending, err := h.Workflow.CheckExisting(userID)
	if err != nil {
		respondCoreError(c, err)
		return
	}

	utils.Success(c, "Pending request checked", gin.H{"pending": pending})
}

// ListRequests returns re-access requests for admins, optionally filtered by
// status (?status=pending).
func (h *ReaccessHandler) ListRequests(c *gin.Context) {
	query := h.DB.Preload("Patient").Order("created_at asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.ReaccessRequest
	if err := query.Find(&requests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch re-access requests: "+err.Error())
		return
	}

	utils.Success(c, "Re-access requests fetched successfully", requests)
}

// AdjudicateRequest represents the request body for approving or rejecting.
type AdjudicateRequest struct {
	Response string `json:"response"`
}

// Approve grants a pending re-access request and restores the patient account.
func (h *ReaccessHandler) Approve(c *gin.Context) {
	h.adjudicate(c, true)
}

// Reject denies a pending re-access request; the patient stays restricted.
func (h *ReaccessHandler) Reject(c *gin.Context) {
	h.adjudicate(c, false)
}

func (h *ReaccessHandler) adjudicate(c *gin.Context, approve bool) {
	requestID := c.Param("id")

	// The response text is optional, as is the body itself.
	var req AdjudicateRequest
	_ = c.ShouldBindJSON(&req)

	actor, ok := currentActor(c, h.DB)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var err error
	if approve {
		err = h.Workflow.Approve(actor, requestID, req.Response)
	} else {
		err = h.Workflow.Reject(actor, requestID, req.Response)
	}
	if err != nil {
		respondCoreError(c, err)
		return
	}

	if approve {
		utils.Success(c, "Re-access request approved; patient account restored", nil)
	} else {
		utils.Success(c, "Re-access request rejected", nil)
	}
}
