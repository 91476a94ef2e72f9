package clinic

import (
	"time"

	"clinic-app-server/internal/models"
)

// ReaccessWorkflow implements the appeal path for restricted patients:
// submission with a single-pending-request guarantee, and admin adjudication
// that restores the account atomically on approval.
type ReaccessWorkflow struct {
	uow   UnitOfWork
	audit AuditSink
}

// NewReaccessWorkflow creates a ReaccessWorkflow.
func NewReaccessWorkflow(uow UnitOfWork, audit AuditSink) *ReaccessWorkflow {
	return &ReaccessWorkflow{uow: uow, audit: audit}
}

// Submit files a new re-access request for the patient. The pending-request
// probe and the insert run under the patient row lock, so two concurrent
// submissions cannot both slip past the duplicate check.
func (w *ReaccessWorkflow) Submit(actor Actor, patientID, reason, contactPhone string) (*models.ReaccessRequest, error) {
	if patientID == "" {
		return nil, InvalidError("patient id is required")
	}
	if reason == "" {
		return nil, InvalidError("a reason for the re-access request is required")
	}

	var req *models.ReaccessRequest
	err := w.uow.InTx(func(r Repositories) error {
		// Lock the patient row; also validates the patient exists.
		if _, err := r.Patients.AccountState(patientID); err != nil {
			return err
		}

		pending, err := r.Reaccess.HasPending(patientID)
		if err != nil {
			return err
		}
		if pending {
			return DuplicateError("a re-access request is already pending for this patient")
		}

		req = &models.ReaccessRequest{
			PatientID:    patientID,
			Reason:       reason,
			ContactPhone: contactPhone,
			Status:       models.ReaccessPending,
		}
		return r.Reaccess.Insert(req)
	})
	if err != nil {
		return nil, asCoreError(err)
	}

	emit(w.audit, Event{
		Type:        EventReaccessSubmitted,
		Description: "patient submitted a re-access request",
		Actor:       actor,
		TargetType:  "reaccess_request",
		TargetID:    req.ID,
	})
	return req, nil
}

// Approve grants a pending request: the request transitions to approved and
// the patient account returns to active with the missed counter reset. Both
// writes commit together or not at all.
func (w *ReaccessWorkflow) Approve(actor Actor, requestID, responseText string) error {
	return w.adjudicate(actor, requestID, responseText, true)
}

// Reject denies a pending request. The patient account is untouched; the
// patient stays restricted and may submit a new request afterwards.
func (w *ReaccessWorkflow) Reject(actor Actor, requestID, responseText string) error {
	return w.adjudicate(actor, requestID, responseText, false)
}

func (w *ReaccessWorkflow) adjudicate(actor Actor, requestID, responseText string, approve bool) error {
	if requestID == "" {
		return InvalidError("request id is required")
	}

	err := w.uow.InTx(func(r Repositories) error {
		req, err := r.Reaccess.Get(requestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return InvalidError("re-access request was already %s", req.Status)
		}

		now := time.Now().UTC()
		req.ProcessedAt = &now
		req.ProcessedBy = actor.ID
		req.AdminResponse = responseText

		if approve {
			req.Status = models.ReaccessApproved
			if err := r.Reaccess.Save(req); err != nil {
				return err
			}
			// Restoration is unconditional: whatever the counter held
			// before approval, the account comes back clean.
			return r.Patients.SetAccountState(req.PatientID, models.AccountActive, 0)
		}

		req.Status = models.ReaccessRejected
		return r.Reaccess.Save(req)
	})
	if err != nil {
		return asCoreError(err)
	}

	eventType := EventReaccessApproved
	description := "re-access request approved; patient account restored"
	if !approve {
		eventType = EventReaccessRejected
		description = "re-access request rejected; patient remains restricted"
	}
	emit(w.audit, Event{
		Type:        eventType,
		Description: description,
		Actor:       actor,
		TargetType:  "reaccess_request",
		TargetID:    requestID,
	})
	return nil
}

// CheckExisting reports whether the patient already has a pending request.
// This is a convenience probe for client-side gating; Submit re-checks under
// the lock regardless.
func (w *ReaccessWorkflow) CheckExisting(patientID string) (bool, error) {
	if patientID == "" {
		return false, InvalidError("patient id is required")
	}

	var pending bool
	err := w.uow.InTx(func(r Repositories) error {
		var err error
		pending, err = r.Reaccess.HasPending(patientID)
		return err
	})
	if err != nil {
		return false, asCoreError(err)
	}
	return pending, nil
}
