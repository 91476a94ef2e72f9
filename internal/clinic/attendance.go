package clinic

import (
	"fmt"

	"clinic-app-server/internal/models"
)

// RestrictionThreshold is the number of consecutive missed appointments at
// which a patient account flips to restricted.
const RestrictionThreshold = 3

// AttendanceTracker drives the completed/missed transitions of appointments
// and the three-strikes restriction rule on the patient account.
type AttendanceTracker struct {
	uow   UnitOfWork
	audit AuditSink
}

// NewAttendanceTracker creates an AttendanceTracker.
func NewAttendanceTracker(uow UnitOfWork, audit AuditSink) *AttendanceTracker {
	return &AttendanceTracker{uow: uow, audit: audit}
}

// SetStatus marks a scheduled appointment completed or missed.
//
// A miss increments the patient's consecutive-missed counter; whenever the
// counter is at or above the threshold the account is restricted. The
// threshold is re-derived from the counter on every miss rather than checked
// as "exactly the third", so out-of-band counter edits stay consistent with
// the restriction predicate. A completion resets the counter to zero but
// never lifts an existing restriction; only an approved re-access request
// does that.
//
// The appointment write and the patient write are one atomic unit. Audit
// events go out only after the unit commits.
func (t *AttendanceTracker) SetStatus(actor Actor, appointmentID string, status models.AppointmentStatus) error {
	if appointmentID == "" {
		return InvalidError("appointment id is required")
	}
	if status != models.StatusCompleted && status != models.StatusMissed {
		return InvalidError("attendance status must be %q or %q", models.StatusCompleted, models.StatusMissed)
	}

	var events []Event
	err := t.uow.InTx(func(r Repositories) error {
		events = events[:0]

		appt, err := r.Appointments.Get(appointmentID)
		if err != nil {
			return err
		}
		if appt.Status != models.StatusScheduled {
			return InvalidError("appointment is already %s; attendance can only be recorded once", appt.Status)
		}

		// Locks the patient row for the rest of the unit.
		state, err := r.Patients.AccountState(appt.PatientID)
		if err != nil {
			return err
		}

		appt.Status = status
		if err := r.Appointments.Save(appt); err != nil {
			return err
		}

		if status == models.StatusMissed {
			missed := state.MissedCount + 1
			newStatus := state.Status
			if missed >= RestrictionThreshold && newStatus != models.AccountRestricted {
				newStatus = models.AccountRestricted
				patient, err := r.Patients.GetPatient(appt.PatientID)
				if err != nil {
					return err
				}
				events = append(events, Event{
					Type:        EventPatientRestricted,
					Description: fmt.Sprintf("account of %s restricted after %d consecutive missed appointments", patient.FullName(), missed),
					Actor:       actor,
					TargetType:  "patient",
					TargetID:    appt.PatientID,
				})
			}
			if err := r.Patients.SetAccountState(appt.PatientID, newStatus, missed); err != nil {
				return err
			}
			events = append(events, Event{
				Type:        EventAppointmentMissed,
				Description: fmt.Sprintf("appointment marked missed (consecutive misses: %d)", missed),
				Actor:       actor,
				TargetType:  "appointment",
				TargetID:    appt.ID,
			})
			return nil
		}

		// Completed: a kept visit forgives prior misses. The cached
		// restriction status is deliberately left as-is.
		if state.MissedCount != 0 {
			return r.Patients.SetAccountState(appt.PatientID, state.Status, 0)
		}
		return nil
	})
	if err != nil {
		return asCoreError(err)
	}

	for _, ev := range events {
		emit(t.audit, ev)
	}
	return nil
}
