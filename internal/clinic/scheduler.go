package clinic

import (
	"fmt"
	"time"

	"clinic-app-server/internal/models"
)

// MinSlotSpacing is the minimum distance between two scheduled appointments
// of the same doctor. Two appointments strictly closer than this conflict.
const MinSlotSpacing = 15 * time.Minute

// Scheduler implements appointment creation, rescheduling, cancellation and
// deletion with double-booking prevention.
type Scheduler struct {
	uow   UnitOfWork
	audit AuditSink
}

// NewScheduler creates a Scheduler.
func NewScheduler(uow UnitOfWork, audit AuditSink) *Scheduler {
	return &Scheduler{uow: uow, audit: audit}
}

// Create books a new appointment for the doctor behind staffAccountID. The
// doctor lookup, the restriction check, the conflict check and the insert run
// in one transaction with the doctor row locked, so two concurrent calls for
// the same doctor cannot both pass the conflict check.
func (s *Scheduler) Create(actor Actor, staffAccountID, patientID string, whenUTC time.Time, reason string) (*models.Appointment, error) {
	switch {
	case staffAccountID == "":
		return nil, InvalidError("doctor id is required")
	case patientID == "":
		return nil, InvalidError("patient id is required")
	case whenUTC.IsZero():
		return nil, InvalidError("appointment time is required")
	case reason == "":
		return nil, InvalidError("appointment reason is required")
	}

	var appt *models.Appointment
	err := s.uow.InTx(func(r Repositories) error {
		doctor, err := r.Doctors.ResolveDoctor(staffAccountID)
		if err != nil {
			return err
		}

		state, err := r.Patients.AccountState(patientID)
		if err != nil {
			return err
		}
		if state.Status == models.AccountRestricted {
			return RestrictedError("patient account is restricted after repeated missed appointments; a re-access request must be approved before new bookings")
		}

		clash, err := r.Appointments.FirstScheduledWithin(doctor.ID, whenUTC, MinSlotSpacing, "")
		if err != nil {
			return err
		}
		if clash != nil {
			return ConflictError(clash.StartTime, clash.Patient.FullName())
		}

		appt = &models.Appointment{
			PatientID: patientID,
			DoctorID:  doctor.ID,
			StartTime: whenUTC.UTC(),
			Reason:    reason,
			Status:    models.StatusScheduled,
		}
		return r.Appointments.Insert(appt)
	})
	if err != nil {
		return nil, asCoreError(err)
	}

	emit(s.audit, Event{
		Type:        EventAppointmentCreated,
		Description: fmt.Sprintf("appointment scheduled for %s", appt.StartTime.Format(time.RFC3339)),
		Actor:       actor,
		TargetType:  "appointment",
		TargetID:    appt.ID,
	})
	return appt, nil
}

// Reschedule moves an existing appointment to a new time, re-running the
// conflict check against the same doctor while excluding the appointment
// itself from the comparison set. Status and participants are unchanged.
func (s *Scheduler) Reschedule(actor Actor, appointmentID string, newWhenUTC time.Time, reason string) (*models.Appointment, error) {
	if appointmentID == "" {
		return nil, InvalidError("appointment id is required")
	}
	if newWhenUTC.IsZero() {
		return nil, InvalidError("new appointment time is required")
	}

	var appt *models.Appointment
	err := s.uow.InTx(func(r Repositories) error {
		var err error
		appt, err = r.Appointments.Get(appointmentID)
		if err != nil {
			return err
		}
		if appt.IsTerminal() {
			return InvalidError("appointment is already %s and cannot be rescheduled", appt.Status)
		}

		// Lock the doctor row for the same reason Create does.
		if _, err := r.Doctors.ResolveDoctor(appt.DoctorID); err != nil {
			return err
		}

		clash, err := r.Appointments.FirstScheduledWithin(appt.DoctorID, newWhenUTC, MinSlotSpacing, appt.ID)
		if err != nil {
			return err
		}
		if clash != nil {
			return ConflictError(clash.StartTime, clash.Patient.FullName())
		}

		appt.StartTime = newWhenUTC.UTC()
		if reason != "" {
			appt.Reason = reason
		}
		return r.Appointments.Save(appt)
	})
	if err != nil {
		return nil, asCoreError(err)
	}
	return appt, nil
}

// Cancel marks a scheduled appointment cancelled. Cancellation is not a miss:
// the patient's attendance counter is untouched. Cancelling an already
// cancelled appointment is a no-op.
func (s *Scheduler) Cancel(actor Actor, appointmentID string) error {
	if appointmentID == "" {
		return InvalidError("appointment id is required")
	}

	err := s.uow.InTx(func(r Repositories) error {
		appt, err := r.Appointments.Get(appointmentID)
		if err != nil {
			return err
		}
		switch appt.Status {
		case models.StatusCancelled:
			return nil
		case models.StatusCompleted, models.StatusMissed:
			return InvalidError("appointment is already %s and cannot be cancelled", appt.Status)
		}
		appt.Status = models.StatusCancelled
		return r.Appointments.Save(appt)
	})
	return asCoreError(err)
}

// Delete hard-removes an appointment row. This is an administrative
// correction, not a clinical event, so no audit event is emitted. Completed
// appointments with dependent consultation records are refused.
func (s *Scheduler) Delete(actor Actor, appointmentID string) error {
	if appointmentID == "" {
		return InvalidError("appointment id is required")
	}

	err := s.uow.InTx(func(r Repositories) error {
		appt, err := r.Appointments.Get(appointmentID)
		if err != nil {
			return err
		}
		if appt.Status == models.StatusCompleted {
			hasRecords, err := r.Appointments.HasConsultationRecords(appt.ID)
			if err != nil {
				return err
			}
			if hasRecords {
				return InvalidError("appointment has consultation records and cannot be deleted")
			}
		}
		return r.Appointments.Delete(appt.ID)
	})
	return asCoreError(err)
}
