package models

// AuditEvent is a persisted domain event. Rows are written best-effort after
// the business transaction commits; a failed insert is logged and dropped.
type AuditEvent struct {
	BaseModel
	EventType   string `gorm:"size:50;index" json:"eventType"`
	Description string `gorm:"size:500" json:"description"`
	ActorID     string `gorm:"size:36;index" json:"actorId,omitempty"`
	ActorName   string `gorm:"size:200" json:"actorName,omitempty"`
	ActorRole   string `gorm:"size:20" json:"actorRole,omitempty"`
	TargetType  string `gorm:"size:50" json:"targetType,omitempty"`
	TargetID    string `gorm:"size:36;index" json:"targetId,omitempty"`
}
