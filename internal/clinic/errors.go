package clinic

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies the failures a core operation can return. Handlers
// switch on the kind to pick an HTTP status and an actionable message.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindPatientRestricted  ErrorKind = "patient_restricted"
	KindSchedulingConflict ErrorKind = "scheduling_conflict"
	KindDuplicateRequest   ErrorKind = "duplicate_request"
	KindValidation         ErrorKind = "validation"
	KindPersistence        ErrorKind = "persistence"
)

// Error is the typed failure returned across the core boundary. Core
// operations never surface raw storage errors; anything unclassified is
// wrapped as KindPersistence.
type Error struct {
	Kind    ErrorKind
	Message string

	// Populated only for KindSchedulingConflict so callers can render the
	// specific collision ("Dr. X already sees <patient> at <time>").
	ConflictingAt      time.Time
	ConflictingPatient string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFoundError reports a missing appointment, request, doctor or patient.
func NotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// RestrictedError reports that scheduling is blocked by the attendance policy.
func RestrictedError(message string) *Error {
	return &Error{Kind: KindPatientRestricted, Message: message}
}

// ConflictError reports a time-slot collision with an existing scheduled
// appointment of the same doctor.
func ConflictError(at time.Time, patientName string) *Error {
	return &Error{
		Kind: KindSchedulingConflict,
		Message: fmt.Sprintf("doctor already has an appointment with %s at %s; appointments must be at least %d minutes apart",
			patientName, at.UTC().Format(time.RFC3339), int(MinSlotSpacing.Minutes())),
		ConflictingAt:      at,
		ConflictingPatient: patientName,
	}
}

// DuplicateError reports that a pending re-access request already exists.
func DuplicateError(message string) *Error {
	return &Error{Kind: KindDuplicateRequest, Message: message}
}

// InvalidError reports missing or malformed input detected before any mutation.
func InvalidError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a storage failure after the atomic unit rolled back.
func PersistenceError(cause error) *Error {
	return &Error{Kind: KindPersistence, Message: "operation could not be completed", cause: cause}
}

// KindOf extracts the ErrorKind from err, defaulting to KindPersistence for
// anything that is not a *clinic.Error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindPersistence
}

// asCoreError passes typed errors through untouched and classifies the rest
// as persistence failures, so callers always see exactly one failure kind.
func asCoreError(err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return PersistenceError(err)
}
