package clinic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
)

func scheduledAppt() *models.Appointment {
	return &models.Appointment{
		BaseModel: models.BaseModel{ID: "appt-1"},
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Status:    models.StatusScheduled,
	}
}

func testPatient() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: "pat-1"},
		FirstName: "Paul",
		LastName:  "Ill",
		Role:      models.RolePatient,
	}
}

func TestAttendanceMissedBelowThreshold(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountActive, MissedCount: 1}, nil)
	m.appts.On("Save", appt).Return(nil)
	m.patients.On("SetAccountState", "pat-1", models.AccountActive, 2).Return(nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	require.NoError(t, tracker.SetStatus(testActor(), "appt-1", models.StatusMissed))

	assert.Equal(t, models.StatusMissed, appt.Status)
	assert.Equal(t, []string{EventAppointmentMissed}, m.sink.types())
	m.patients.AssertExpectations(t)
}

func TestAttendanceThirdMissRestricts(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountActive, MissedCount: 2}, nil)
	m.appts.On("Save", appt).Return(nil)
	m.patients.On("GetPatient", "pat-1").Return(testPatient(), nil)
	m.patients.On("SetAccountState", "pat-1", models.AccountRestricted, 3).Return(nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	require.NoError(t, tracker.SetStatus(testActor(), "appt-1", models.StatusMissed))

	assert.Equal(t, []string{EventPatientRestricted, EventAppointmentMissed}, m.sink.types())
	m.patients.AssertExpectations(t)
}

func TestAttendanceMissAlreadyRestricted(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountRestricted, MissedCount: 4}, nil)
	m.appts.On("Save", appt).Return(nil)
	m.patients.On("SetAccountState", "pat-1", models.AccountRestricted, 5).Return(nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	require.NoError(t, tracker.SetStatus(testActor(), "appt-1", models.StatusMissed))

	// Restricting an already-restricted account is a no-op, so only the
	// miss itself is announced.
	assert.Equal(t, []string{EventAppointmentMissed}, m.sink.types())
	m.patients.AssertExpectations(t)
}

func TestAttendanceCompletedResetsCounter(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountActive, MissedCount: 2}, nil)
	m.appts.On("Save", appt).Return(nil)
	m.patients.On("SetAccountState", "pat-1", models.AccountActive, 0).Return(nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	require.NoError(t, tracker.SetStatus(testActor(), "appt-1", models.StatusCompleted))

	assert.Equal(t, models.StatusCompleted, appt.Status)
	assert.Empty(t, m.sink.events)
	m.patients.AssertExpectations(t)
}

func TestAttendanceCompletedKeepsRestriction(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountRestricted, MissedCount: 3}, nil)
	m.appts.On("Save", appt).Return(nil)
	// Counter resets, but the restriction only lifts through an approved
	// re-access request.
	m.patients.On("SetAccountState", "pat-1", models.AccountRestricted, 0).Return(nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	require.NoError(t, tracker.SetStatus(testActor(), "appt-1", models.StatusCompleted))
	m.patients.AssertExpectations(t)
}

func TestAttendanceCompletedZeroCounterSkipsWrite(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountActive, MissedCount: 0}, nil)
	m.appts.On("Save", appt).Return(nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	require.NoError(t, tracker.SetStatus(testActor(), "appt-1", models.StatusCompleted))
	m.patients.AssertNotCalled(t, "SetAccountState", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttendanceInvalidStatus(t *testing.T) {
	m := newCoreMocks()
	tracker := NewAttendanceTracker(m.uow, m.sink)

	err := tracker.SetStatus(testActor(), "appt-1", models.StatusCancelled)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAttendanceNotFound(t *testing.T) {
	m := newCoreMocks()
	m.appts.On("Get", "missing").Return(nil, NotFoundError("appointment missing not found"))

	tracker := NewAttendanceTracker(m.uow, m.sink)
	err := tracker.SetStatus(testActor(), "missing", models.StatusMissed)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAttendanceTerminalAppointment(t *testing.T) {
	appt := scheduledAppt()
	appt.Status = models.StatusCompleted

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	err := tracker.SetStatus(testActor(), "appt-1", models.StatusMissed)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	m.appts.AssertNotCalled(t, "Save", mock.Anything)
}

func TestAttendanceRollbackSuppressesEvents(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountActive, MissedCount: 2}, nil)
	m.appts.On("Save", appt).Return(nil)
	m.patients.On("GetPatient", "pat-1").Return(testPatient(), nil)
	m.patients.On("SetAccountState", "pat-1", models.AccountRestricted, 3).
		Return(errors.New("connection reset"))

	tracker := NewAttendanceTracker(m.uow, m.sink)
	err := tracker.SetStatus(testActor(), "appt-1", models.StatusMissed)

	require.Error(t, err)
	assert.Equal(t, KindPersistence, KindOf(err))
	// The unit rolled back, so nothing may reach the audit sink.
	assert.Empty(t, m.sink.events)
}

func TestAttendanceAuditFailureDoesNotFailOperation(t *testing.T) {
	appt := scheduledAppt()

	m := newCoreMocks()
	m.sink.err = errors.New("audit store down")
	m.appts.On("Get", "appt-1").Return(appt, nil)
	m.patients.On("AccountState", "pat-1").
		Return(AccountState{Status: models.AccountActive, MissedCount: 0}, nil)
	m.appts.On("Save", appt).Return(nil)
	m.patients.On("SetAccountState", "pat-1", models.AccountActive, 1).Return(nil)

	tracker := NewAttendanceTracker(m.uow, m.sink)
	require.NoError(t, tracker.SetStatus(testActor(), "appt-1", models.StatusMissed))
}
