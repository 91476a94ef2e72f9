package models

import (
	"time"
)

// ReaccessStatus represents the state of a re-access request
type ReaccessStatus string

const (
	ReaccessPending  ReaccessStatus = "pending"
	ReaccessApproved ReaccessStatus = "approved"
	ReaccessRejected ReaccessStatus = "rejected"
)

// ReaccessRequest represents a restricted patient's appeal to regain access.
// At most one request per patient may be pending at a time; approval and
// rejection are terminal.
type ReaccessRequest struct {
	BaseModel
	PatientID     string         `gorm:"size:36;index" json:"patientId"`
	Reason        string         `gorm:"type:text;not null" json:"reason"`
	ContactPhone  string         `gorm:"size:30" json:"contactPhone,omitempty"`
	Status        ReaccessStatus `gorm:"size:20;default:'pending'" json:"status"`
	AdminResponse string         `gorm:"type:text" json:"adminResponse,omitempty"`
	ProcessedAt   *time.Time     `json:"processedAt,omitempty"`
	ProcessedBy   string         `gorm:"size:36" json:"processedBy,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// IsPending checks if the request is still awaiting adjudication
func (r *ReaccessRequest) IsPending() bool {
	return r.Status == ReaccessPending
}
