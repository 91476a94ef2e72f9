package clinic

import (
	"time"

	"github.com/stretchr/testify/mock"

	"clinic-app-server/internal/models"
)

// MockAppointmentStore is a mock implementation of AppointmentStore
type MockAppointmentStore struct {
	mock.Mock
}

func (m *MockAppointmentStore) Insert(appt *models.Appointment) error {
	args := m.Called(appt)
	return args.Error(0)
}

func (m *MockAppointmentStore) Get(id string) (*models.Appointment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentStore) Save(appt *models.Appointment) error {
	args := m.Called(appt)
	return args.Error(0)
}

func (m *MockAppointmentStore) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockAppointmentStore) FirstScheduledWithin(doctorID string, at time.Time, window time.Duration, excludeID string) (*models.Appointment, error) {
	args := m.Called(doctorID, at, window, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentStore) HasConsultationRecords(appointmentID string) (bool, error) {
	args := m.Called(appointmentID)
	return args.Bool(0), args.Error(1)
}

// MockPatientDirectory is a mock implementation of PatientDirectory
type MockPatientDirectory struct {
	mock.Mock
}

func (m *MockPatientDirectory) GetPatient(patientID string) (*models.User, error) {
	args := m.Called(patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockPatientDirectory) AccountState(patientID string) (AccountState, error) {
	args := m.Called(patientID)
	return args.Get(0).(AccountState), args.Error(1)
}

func (m *MockPatientDirectory) SetAccountState(patientID string, status models.AccountStatus, missedCount int) error {
	args := m.Called(patientID, status, missedCount)
	return args.Error(0)
}

// MockDoctorDirectory is a mock implementation of DoctorDirectory
type MockDoctorDirectory struct {
	mock.Mock
}

func (m *MockDoctorDirectory) ResolveDoctor(staffAccountID string) (*models.User, error) {
	args := m.Called(staffAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockReaccessStore is a mock implementation of ReaccessStore
type MockReaccessStore struct {
	mock.Mock
}

func (m *MockReaccessStore) Insert(req *models.ReaccessRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockReaccessStore) Get(id string) (*models.ReaccessRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReaccessRequest), args.Error(1)
}

func (m *MockReaccessStore) Save(req *models.ReaccessRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockReaccessStore) HasPending(patientID string) (bool, error) {
	args := m.Called(patientID)
	return args.Bool(0), args.Error(1)
}

// stubUnitOfWork hands the mock bundle straight to fn; a rollback is
// represented by the error fn returns.
type stubUnitOfWork struct {
	repos Repositories
}

func (u stubUnitOfWork) InTx(fn func(r Repositories) error) error {
	return fn(u.repos)
}

// recordingSink captures emitted audit events in order.
type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Record(ev Event) error {
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) types() []string {
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

// coreMocks bundles one mocked repository set with a recording sink.
type coreMocks struct {
	appts    *MockAppointmentStore
	patients *MockPatientDirectory
	doctors  *MockDoctorDirectory
	reaccess *MockReaccessStore
	sink     *recordingSink
	uow      stubUnitOfWork
}

func newCoreMocks() *coreMocks {
	m := &coreMocks{
		appts:    &MockAppointmentStore{},
		patients: &MockPatientDirectory{},
		doctors:  &MockDoctorDirectory{},
		reaccess: &MockReaccessStore{},
		sink:     &recordingSink{},
	}
	m.uow = stubUnitOfWork{repos: Repositories{
		Appointments: m.appts,
		Patients:     m.patients,
		Doctors:      m.doctors,
		Reaccess:     m.reaccess,
	}}
	return m
}

func testActor() Actor {
	return Actor{ID: "staff-1", Name: "Ada Staff", Role: models.RoleAdmin}
}
