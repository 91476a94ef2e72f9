package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusMissed    AppointmentStatus = "missed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index" json:"doctorId"`
	StartTime time.Time         `json:"startTime"`
	Status    AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Reason    string            `gorm:"size:255" json:"reason"`
	Notes     string            `gorm:"type:text" json:"notes"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}

// IsTerminal reports whether the appointment has reached a final state.
// Terminal appointments never transition again.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case StatusCompleted, StatusMissed, StatusCancelled:
		return true
	}
	return false
}
