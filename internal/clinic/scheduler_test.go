package clinic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
)

func testDoctor() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: "doc-1"},
		FirstName: "Greta",
		LastName:  "House",
		Role:      models.RoleDoctor,
	}
}

func activeState() AccountState {
	return AccountState{Status: models.AccountActive, MissedCount: 0}
}

func TestSchedulerCreate(t *testing.T) {
	when := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)

	m := newCoreMocks()
	m.doctors.On("ResolveDoctor", "doc-1").Return(testDoctor(), nil)
	m.patients.On("AccountState", "pat-1").Return(activeState(), nil)
	m.appts.On("FirstScheduledWithin", "doc-1", when, MinSlotSpacing, "").Return(nil, nil)
	m.appts.On("Insert", mock.AnythingOfType("*models.Appointment")).Return(nil)

	sched := NewScheduler(m.uow, m.sink)
	appt, err := sched.Create(testActor(), "doc-1", "pat-1", when, "checkup")

	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, appt.Status)
	assert.Equal(t, "doc-1", appt.DoctorID)
	assert.Equal(t, "pat-1", appt.PatientID)
	assert.Equal(t, when, appt.StartTime)
	assert.Equal(t, []string{EventAppointmentCreated}, m.sink.types())
	m.appts.AssertExpectations(t)
}

func TestSchedulerCreateDoctorNotFound(t *testing.T) {
	m := newCoreMocks()
	m.doctors.On("ResolveDoctor", "nobody").Return(nil, NotFoundError("doctor nobody not found"))

	sched := NewScheduler(m.uow, m.sink)
	_, err := sched.Create(testActor(), "nobody", "pat-1", time.Now().UTC(), "checkup")

	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	m.appts.AssertNotCalled(t, "Insert", mock.Anything)
	assert.Empty(t, m.sink.events)
}

func TestSchedulerCreateRestrictedPatient(t *testing.T) {
	m := newCoreMocks()
	m.doctors.On("ResolveDoctor", "doc-1").Return(testDoctor(), nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountRestricted, MissedCount: 3}, nil)

	sched := NewScheduler(m.uow, m.sink)
	_, err := sched.Create(testActor(), "doc-1", "pat-1", time.Now().UTC(), "checkup")

	require.Error(t, err)
	assert.Equal(t, KindPatientRestricted, KindOf(err))
	// No appointment row may be created for a restricted patient.
	m.appts.AssertNotCalled(t, "Insert", mock.Anything)
	assert.Empty(t, m.sink.events)
}

func TestSchedulerCreateConflictWindow(t *testing.T) {
	existingAt := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	existing := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		DoctorID:  "doc-1",
		StartTime: existingAt,
		Status:    models.StatusScheduled,
		Patient:   models.User{FirstName: "Paul", LastName: "Ill"},
	}

	// 10:10 collides, 10:20 is past the 15-minute spacing and succeeds.
	tenPastTen := existingAt.Add(10 * time.Minute)
	twentyPastTen := existingAt.Add(20 * time.Minute)

	m := newCoreMocks()
	m.doctors.On("ResolveDoctor", "doc-1").Return(testDoctor(), nil)
	m.patients.On("AccountState", "pat-2").Return(activeState(), nil)
	m.appts.On("FirstScheduledWithin", "doc-1", tenPastTen, MinSlotSpacing, "").Return(existing, nil)
	m.appts.On("FirstScheduledWithin", "doc-1", twentyPastTen, MinSlotSpacing, "").Return(nil, nil)
	m.appts.On("Insert", mock.AnythingOfType("*models.Appointment")).Return(nil)

	sched := NewScheduler(m.uow, m.sink)

	_, err := sched.Create(testActor(), "doc-1", "pat-2", tenPastTen, "follow-up")
	require.Error(t, err)
	assert.Equal(t, KindSchedulingConflict, KindOf(err))

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, existingAt, ce.ConflictingAt)
	assert.Equal(t, "Paul Ill", ce.ConflictingPatient)

	appt, err := sched.Create(testActor(), "doc-1", "pat-2", twentyPastTen, "follow-up")
	require.NoError(t, err)
	assert.Equal(t, twentyPastTen, appt.StartTime)
}

func TestSchedulerCreateValidation(t *testing.T) {
	when := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		doctorID  string
		patientID string
		when      time.Time
		reason    string
	}{
		{"missing doctor", "", "pat-1", when, "checkup"},
		{"missing patient", "doc-1", "", when, "checkup"},
		{"missing time", "doc-1", "pat-1", time.Time{}, "checkup"},
		{"missing reason", "doc-1", "pat-1", when, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newCoreMocks()
			sched := NewScheduler(m.uow, m.sink)
			_, err := sched.Create(testActor(), tt.doctorID, tt.patientID, tt.when, tt.reason)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestSchedulerRescheduleExcludesSelf(t *testing.T) {
	at := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		StartTime: at,
		Status:    models.StatusScheduled,
	}

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.doctors.On("ResolveDoctor", "doc-1").Return(testDoctor(), nil)
	// Rescheduling to its own time must compare against everything but
	// itself, otherwise it always conflicts.
	m.appts.On("FirstScheduledWithin", "doc-1", at, MinSlotSpacing, "appt-1").Return(nil, nil)
	m.appts.On("Save", appt).Return(nil)

	sched := NewScheduler(m.uow, m.sink)
	got, err := sched.Reschedule(testActor(), "appt-1", at, "")

	require.NoError(t, err)
	assert.Equal(t, at, got.StartTime)
	assert.Equal(t, models.StatusScheduled, got.Status)
	m.appts.AssertExpectations(t)
}

func TestSchedulerRescheduleConflict(t *testing.T) {
	at := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		DoctorID:  "doc-1",
		StartTime: at,
		Status:    models.StatusScheduled,
	}
	other := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-2"},
		DoctorID:  "doc-1",
		StartTime: at.Add(30 * time.Minute),
		Status:    models.StatusScheduled,
		Patient:   models.User{FirstName: "Paula", LastName: "Well"},
	}
	target := at.Add(25 * time.Minute)

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.doctors.On("ResolveDoctor", "doc-1").Return(testDoctor(), nil)
	m.appts.On("FirstScheduledWithin", "doc-1", target, MinSlotSpacing, "appt-1").Return(other, nil)

	sched := NewScheduler(m.uow, m.sink)
	_, err := sched.Reschedule(testActor(), "appt-1", target, "")

	require.Error(t, err)
	assert.Equal(t, KindSchedulingConflict, KindOf(err))
	m.appts.AssertNotCalled(t, "Save", mock.Anything)
}

func TestSchedulerRescheduleNotFound(t *testing.T) {
	m := newCoreMocks()
	m.appts.On("Get", "missing").Return(nil, NotFoundError("appointment missing not found"))

	sched := NewScheduler(m.uow, m.sink)
	_, err := sched.Reschedule(testActor(), "missing", time.Now().UTC(), "")

	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSchedulerRescheduleTerminal(t *testing.T) {
	appt := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		DoctorID:  "doc-1",
		Status:    models.StatusCompleted,
	}

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)

	sched := NewScheduler(m.uow, m.sink)
	_, err := sched.Reschedule(testActor(), "appt-1", time.Now().UTC(), "")

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSchedulerCancel(t *testing.T) {
	appt := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		Status:    models.StatusScheduled,
	}

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.appts.On("Save", appt).Return(nil)

	sched := NewScheduler(m.uow, m.sink)
	require.NoError(t, sched.Cancel(testActor(), "appt-1"))
	assert.Equal(t, models.StatusCancelled, appt.Status)
	// Cancellation is not a miss: patient state stays untouched.
	m.patients.AssertNotCalled(t, "SetAccountState", mock.Anything, mock.Anything, mock.Anything)
}

func TestSchedulerCancelCompleted(t *testing.T) {
	appt := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		Status:    models.StatusCompleted,
	}

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)

	sched := NewScheduler(m.uow, m.sink)
	err := sched.Cancel(testActor(), "appt-1")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSchedulerDeleteBlockedByRecords(t *testing.T) {
	appt := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		Status:    models.StatusCompleted,
	}

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.appts.On("HasConsultationRecords", "appt-1").Return(true, nil)

	sched := NewScheduler(m.uow, m.sink)
	err := sched.Delete(testActor(), "appt-1")

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	m.appts.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestSchedulerDelete(t *testing.T) {
	appt := &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		Status:    models.StatusCancelled,
	}

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.appts.On("Delete", "appt-1").Return(nil)

	sched := NewScheduler(m.uow, m.sink)
	require.NoError(t, sched.Delete(testActor(), "appt-1"))
	m.appts.AssertExpectations(t)
}
