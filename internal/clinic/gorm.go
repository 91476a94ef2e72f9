package clinic

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-app-server/internal/models"
)

// NewRepositories builds the gorm-backed store bundle over db, which may be a
// plain connection or a transaction handle.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Appointments: &gormAppointments{db: db},
		Patients:     &gormPatients{db: db},
		Doctors:      &gormDoctors{db: db},
		Reaccess:     &gormReaccess{db: db},
	}
}

// GormUnitOfWork scopes a Repositories bundle to a database transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a unit of work over the given connection.
func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// InTx runs fn inside one gorm transaction; fn's error rolls everything back.
func (u *GormUnitOfWork) InTx(fn func(r Repositories) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

type gormAppointments struct {
	db *gorm.DB
}

func (s *gormAppointments) Insert(appt *models.Appointment) error {
	return s.db.Create(appt).Error
}

func (s *gormAppointments) Get(id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("appointment %s not found", id)
		}
		return nil, err
	}
	return &appt, nil
}

func (s *gormAppointments) Save(appt *models.Appointment) error {
	return s.db.Save(appt).Error
}

func (s *gormAppointments) Delete(id string) error {
	return s.db.Delete(&models.Appointment{}, "id = ?", id).Error
}

func (s *gormAppointments) FirstScheduledWithin(doctorID string, at time.Time, window time.Duration, excludeID string) (*models.Appointment, error) {
	// Strictly-less-than window on both sides: collisions at exactly the
	// spacing boundary are allowed.
	lower := at.Add(-window)
	upper := at.Add(window)

	query := s.db.Preload("Patient").
		Where("doctor_id = ? AND status = ? AND start_time > ? AND start_time < ?",
			doctorID, models.StatusScheduled, lower, upper).
		Order("start_time asc")
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var appt models.Appointment
	if err := query.First(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

func (s *gormAppointments) HasConsultationRecords(appointmentID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ConsultationRecord{}).
		Where("appointment_id = ?", appointmentID).
		Count(&count).Error
	return count > 0, err
}

type gormPatients struct {
	db *gorm.DB
}

func (d *gormPatients) GetPatient(patientID string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("id = ? AND role = ?", patientID, models.RolePatient).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("patient %s not found", patientID)
		}
		return nil, err
	}
	return &user, nil
}

func (d *gormPatients) AccountState(patientID string) (AccountState, error) {
	// FOR UPDATE: inside a transaction this serializes every mutator of the
	// counter and the cached status against this patient row.
	var user models.User
	err := d.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND role = ?", patientID, models.RolePatient).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AccountState{}, NotFoundError("patient %s not found", patientID)
		}
		return AccountState{}, err
	}
	return AccountState{Status: user.AccountStatus, MissedCount: user.MissedAppointments}, nil
}

func (d *gormPatients) SetAccountState(patientID string, status models.AccountStatus, missedCount int) error {
	return d.db.Model(&models.User{}).
		Where("id = ?", patientID).
		Updates(map[string]interface{}{
			"account_status":      status,
			"missed_appointments": missedCount,
		}).Error
}

type gormDoctors struct {
	db *gorm.DB
}

func (d *gormDoctors) ResolveDoctor(staffAccountID string) (*models.User, error) {
	// Doctors schedule under their own account id; the locked read makes
	// concurrent bookings for one doctor queue up behind each other.
	var user models.User
	err := d.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND role = ?", staffAccountID, models.RoleDoctor).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("doctor %s not found", staffAccountID)
		}
		return nil, err
	}
	return &user, nil
}

type gormReaccess struct {
	db *gorm.DB
}

func (s *gormReaccess) Insert(req *models.ReaccessRequest) error {
	return s.db.Create(req).Error
}

func (s *gormReaccess) Get(id string) (*models.ReaccessRequest, error) {
	var req models.ReaccessRequest
	if err := s.db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("re-access request %s not found", id)
		}
		return nil, err
	}
	return &req, nil
}

func (s *gormReaccess) Save(req *models.ReaccessRequest) error {
	return s.db.Save(req).Error
}

func (s *gormReaccess) HasPending(patientID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ReaccessRequest{}).
		Where("patient_id = ? AND status = ?", patientID, models.ReaccessPending).
		Count(&count).Error
	return count > 0, err
}
