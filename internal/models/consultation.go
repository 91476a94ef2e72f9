package models

import (
	"time"
)

// ConsultationRecord represents the clinical note a doctor writes after a
// completed appointment. Deleting an appointment with dependent records is
// refused by the scheduler.
type ConsultationRecord struct {
	BaseModel
	AppointmentID string    `gorm:"size:36;index" json:"appointmentId"`
	PatientID     string    `gorm:"size:36;index" json:"patientId"`
	DoctorID      string    `gorm:"size:36;index" json:"doctorId"`
	RecordDate    time.Time `json:"date"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Diagnosis     string    `gorm:"type:text" json:"diagnosis"`
	Treatment     string    `gorm:"type:text" json:"treatment"`
	Notes         string    `gorm:"type:text" json:"notes"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Patient     User        `gorm:"foreignKey:PatientID" json:"-"`
	Doctor      User        `gorm:"foreignKey:DoctorID" json:"-"`
}
