package clinic

import (
	"time"

	"clinic-app-server/internal/models"
)

// AccountState is the patient facet the core reads and writes: the cached
// restriction status and the consecutive-missed counter it is derived from.
type AccountState struct {
	Status      models.AccountStatus
	MissedCount int
}

// PatientDirectory exposes patient lookup and the attendance-policy facet of
// the patient record. Inside a unit of work, AccountState takes a row lock on
// the patient so concurrent mutators of the counter serialize.
type PatientDirectory interface {
	GetPatient(patientID string) (*models.User, error)
	AccountState(patientID string) (AccountState, error)
	SetAccountState(patientID string, status models.AccountStatus, missedCount int) error
}

// DoctorDirectory resolves a staff account id to the doctor's scheduling
// identity. Inside a unit of work the resolved row is locked, which
// serializes concurrent bookings for the same doctor and closes the
// conflict-check-then-insert race.
type DoctorDirectory interface {
	ResolveDoctor(staffAccountID string) (*models.User, error)
}

// AppointmentStore owns appointment rows. The scheduler and the attendance
// tracker are its only mutators.
type AppointmentStore interface {
	Insert(appt *models.Appointment) error
	Get(id string) (*models.Appointment, error)
	Save(appt *models.Appointment) error
	Delete(id string) error

	// FirstScheduledWithin returns a scheduled appointment of the doctor
	// whose start time differs from at by strictly less than window,
	// excluding excludeID (empty to exclude nothing), with the patient
	// relation loaded for display. Returns nil when the slot is free.
	FirstScheduledWithin(doctorID string, at time.Time, window time.Duration, excludeID string) (*models.Appointment, error)

	// HasConsultationRecords reports whether clinical notes reference the
	// appointment, which blocks hard deletion.
	HasConsultationRecords(appointmentID string) (bool, error)
}

// ReaccessStore owns re-access request rows.
type ReaccessStore interface {
	Insert(req *models.ReaccessRequest) error
	Get(id string) (*models.ReaccessRequest, error)
	Save(req *models.ReaccessRequest) error
	HasPending(patientID string) (bool, error)
}

// Repositories bundles the stores visible inside one atomic unit. All writes
// made through a single bundle commit or roll back together.
type Repositories struct {
	Appointments AppointmentStore
	Patients     PatientDirectory
	Doctors      DoctorDirectory
	Reaccess     ReaccessStore
}

// UnitOfWork runs fn inside a single transaction. Returning an error from fn
// rolls back every write made through the supplied Repositories.
type UnitOfWork interface {
	InTx(fn func(r Repositories) error) error
}
