package handlers

import (
	"time"

	"clinic-app-server/internal/clinic"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB         *gorm.DB
	Scheduler  *clinic.Scheduler
	Attendance *clinic.AttendanceTracker
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, scheduler *clinic.Scheduler, attendance *clinic.AttendanceTracker) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Scheduler: scheduler, Attendance: attendance}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID  string    `json:"doctorId" binding:"omitempty,uuid"` // Required for admins; doctors book for themselves
	PatientID string    `json:"patientId" binding:"required,uuid"`
	StartTime time.Time `json:"startTime" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
}

// CreateAppointment handles booking a new appointment. Doctors book into
// their own schedule; admins book on behalf of any doctor. Double-booking
// and restricted-patient policy are enforced by the scheduler.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := currentActor(c, h.DB)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	staffAccountID := req.DoctorID
	if actor.Role == models.RoleDoctor {
		if req.DoctorID != "" && req.DoctorID != actor.ID {
			utils.Forbidden(c, "Doctors can only book appointments into their own schedule.")
			return
		}
		staffAccountID = actor.ID
	} else if staffAccountID == "" {
		utils.BadRequest(c, "doctorId is required")
		return
	}

	appointment, err := h.Scheduler.Create(actor, staffAccountID, req.PatientID, req.StartTime, req.Reason)
	if err != nil {
		respondCoreError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in user.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var appointments []models.Appointment
	query := h.DB.Preload("Patient").Preload("Doctor").Order("start_time asc")

	var err error
	switch userRole {
	case models.RolePatient:
		err = query.Where("patient_id = ?", userID).Find(&appointments).Error
	case models.RoleDoctor:
		err = query.Where("doctor_id = ?", userID).Find(&appointments).Error
	case models.RoleAdmin:
		err = query.Find(&appointments).Error
	default:
		utils.Forbidden(c, "User role not permitted to view appointments.")
		return
	}

	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the involved patient, the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if userRole != models.RoleAdmin && userID != appointment.PatientID && userID != appointment.DoctorID {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling an appointment.
type RescheduleAppointmentRequest struct {
	NewStartTime time.Time `json:"newStartTime" binding:"required"`
	Reason       string    `json:"reason"`
}

// RescheduleAppointment moves an appointment to a new time slot, re-running
// the scheduler's conflict check.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := currentActor(c, h.DB)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if !h.canManage(c, actor, appointmentID) {
		return
	}

	appointment, err := h.Scheduler.Reschedule(actor, appointmentID, req.NewStartTime, req.Reason)
	if err != nil {
		respondCoreError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// CancelAppointment marks an appointment cancelled. Cancellation carries no
// attendance-policy side effects.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	actor, ok := currentActor(c, h.DB)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	// Patients may cancel their own appointments; doctors and admins go
	// through the shared management check.
	if actor.Role == models.RolePatient {
		var appointment models.Appointment
		if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(c, "Appointment not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		if appointment.PatientID != actor.ID {
			utils.Forbidden(c, "Patients can only cancel their own appointments.")
			return
		}
	} else if !h.canManage(c, actor, appointmentID) {
		return
	}

	if err := h.Scheduler.Cancel(actor, appointmentID); err != nil {
		respondCoreError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", nil)
}

// DeleteAppointment hard-removes an appointment row. Admin-only
// administrative correction; refused when consultation records depend on it.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	actor, ok := currentActor(c, h.DB)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Scheduler.Delete(actor, appointmentID); err != nil {
		respondCoreError(c, err)
		return
	}

	utils.Success(c, "Appointment deleted successfully", nil)
}

// SetAttendanceRequest represents the request body for recording attendance.
type SetAttendanceRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=completed missed"`
}

// SetAttendance records the attendance outcome of an appointment. Marking it
// missed feeds the three-strikes restriction policy.
func (h *AppointmentHandler) SetAttendance(c *gin.Context) {
	appointmentID := c.Param("id")

	var req SetAttendanceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := currentActor(c, h.DB)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if !h.canManage(c, actor, appointmentID) {
		return
	}

	if err := h.Attendance.SetStatus(actor, appointmentID, req.Status); err != nil {
		respondCoreError(c, err)
		return
	}

	utils.Success(c, "Attendance recorded successfully", nil)
}

// canManage checks that the actor is an admin or the appointment's doctor.
// It writes the error response itself and returns false on rejection.
func (h *AppointmentHandler) canManage(c *gin.Context, actor clinic.Actor, appointmentID string) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if actor.Role != models.RoleDoctor {
		utils.Forbidden(c, "You are not authorized to manage this appointment.")
		return false
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return false
	}
	if appointment.DoctorID != actor.ID {
		utils.Forbidden(c, "You are not authorized to manage this appointment.")
		return false
	}
	return true
}
