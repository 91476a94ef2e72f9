package clinic

import (
	"log"

	"gorm.io/gorm"

	"clinic-app-server/internal/models"
)

// Audit event types emitted by the core.
const (
	EventAppointmentCreated = "appointment_created"
	EventAppointmentMissed  = "appointment_missed"
	EventPatientRestricted  = "patient_restricted"
	EventReaccessSubmitted  = "reaccess_submitted"
	EventReaccessApproved   = "reaccess_approved"
	EventReaccessRejected   = "reaccess_rejected"
)

// Actor identifies the authenticated caller a core operation runs on behalf
// of; it feeds the audit trail only, never authorization decisions.
type Actor struct {
	ID   string
	Name string
	Role models.Role
}

// Event is a structured audit notification.
type Event struct {
	Type        string
	Description string
	Actor       Actor
	TargetType  string
	TargetID    string
}

// AuditSink receives audit events. Emission is fire-and-forget: a sink
// failure must never block or roll back the operation that produced the
// event.
type AuditSink interface {
	Record(ev Event) error
}

// DBAuditSink persists audit events to the audit_events table.
type DBAuditSink struct {
	db *gorm.DB
}

// NewDBAuditSink creates an audit sink writing to db.
func NewDBAuditSink(db *gorm.DB) *DBAuditSink {
	return &DBAuditSink{db: db}
}

func (s *DBAuditSink) Record(ev Event) error {
	row := models.AuditEvent{
		EventType:   ev.Type,
		Description: ev.Description,
		ActorID:     ev.Actor.ID,
		ActorName:   ev.Actor.Name,
		ActorRole:   string(ev.Actor.Role),
		TargetType:  ev.TargetType,
		TargetID:    ev.TargetID,
	}
	return s.db.Create(&row).Error
}

// emit records ev and deliberately discards the sink's error. Audit is a
// best-effort side channel; the triggering operation has already committed.
func emit(sink AuditSink, ev Event) {
	if sink == nil {
		return
	}
	if err := sink.Record(ev); err != nil {
		log.Printf("audit: dropping %s event: %v", ev.Type, err)
	}
}
