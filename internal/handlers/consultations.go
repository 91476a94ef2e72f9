package handlers

import (
	"time"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ConsultationHandler handles consultation record requests.
type ConsultationHandler struct {
	DB *gorm.DB
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(db *gorm.DB) *ConsultationHandler {
	return &ConsultationHandler{DB: db}
}

// CreateConsultationRequest represents the request body for creating a consultation record.
type CreateConsultationRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required,uuid"`
	Title         string `json:"title" binding:"required"`
	Diagnosis     string `json:"diagnosis"`
	Treatment     string `json:"treatment"`
	Notes         string `json:"notes"`
}

// CreateConsultation handles a doctor writing the clinical note for one of
// their completed appointments.
func (h *ConsultationHandler) CreateConsultation(c *gin.Context) {
	var req CreateConsultationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", req.AppointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if userRole == models.RoleDoctor && appointment.DoctorID != userID {
		utils.Forbidden(c, "Doctors can only document their own appointments.")
		return
	}
	if appointment.Status != models.StatusCompleted {
		utils.BadRequest(c, "Consultation records can only be added to completed appointments.")
		return
	}

	record := models.ConsultationRecord{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		DoctorID:      appointment.DoctorID,
		RecordDate:    time.Now().UTC(),
		Title:         req.Title,
		Diagnosis:     req.Diagnosis,
		Treatment:     req.Treatment,
		Notes:         req.Notes,
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create consultation record: "+err.Error())
		return
	}

	utils.Created(c, "Consultation record created successfully", record)
}

// GetConsultationsForPatient handles fetching all consultation records for a patient.
func (h *ConsultationHandler) GetConsultationsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	// Patients can only read their own history.
	if userRole == models.RolePatient && userID != patientID {
		utils.Forbidden(c, "You are not authorized to view these records")
		return
	}

	var records []models.ConsultationRecord
	if err := h.DB.Where("patient_id = ?", patientID).Order("record_date desc").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch consultation records: "+err.Error())
		return
	}

	utils.Success(c, "Consultation records fetched successfully", records)
}

// GetConsultationByID handles fetching a single consultation record.
func (h *ConsultationHandler) GetConsultationByID(c *gin.Context) {
	recordID := c.Param("id")

	var record models.ConsultationRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Consultation record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if userRole != models.RoleAdmin && userID != record.PatientID && userID != record.DoctorID {
		utils.Forbidden(c, "You are not authorized to view this record")
		return
	}

	utils.Success(c, "Consultation record fetched successfully", record)
}

// UpdateConsultationRequest represents the request body for updating a consultation record.
type UpdateConsultationRequest struct {
	Title     string `json:"title"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes"`
}

// UpdateConsultation handles updating a consultation record.
func (h *ConsultationHandler) UpdateConsultation(c *gin.Context) {
	recordID := c.Param("id")

	var req UpdateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var record models.ConsultationRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Consultation record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor && record.DoctorID != userID {
		utils.Forbidden(c, "Doctors can only update their own records.")
		return
	}

	if req.Title != "" {
		record.Title = req.Title
	}
	if req.Diagnosis != "" {
		record.Diagnosis = req.Diagnosis
	}
	if req.Treatment != "" {
		record.Treatment = req.Treatment
	}
	if req.Notes != "" {
		record.Notes = req.Notes
	}

	if err := h.DB.Save(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to update consultation record: "+err.Error())
		return
	}

	utils.Success(c, "Consultation record updated successfully", record)
}

// DeleteConsultation handles deleting a consultation record.
func (h *ConsultationHandler) DeleteConsultation(c *gin.Context) {
	recordID := c.Param("id")

	var record models.ConsultationRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Consultation record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor && record.DoctorID != userID {
		utils.Forbidden(c, "Doctors can only delete their own records.")
		return
	}

	if err := h.DB.Delete(&models.ConsultationRecord{}, "id = ?", recordID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete consultation record: "+err.Error())
		return
	}

	utils.Success(c, "Consultation record deleted successfully", nil)
}
