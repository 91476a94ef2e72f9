package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// AccountStatus represents whether an account may book and access the system.
type AccountStatus string

const (
	AccountActive     AccountStatus = "active"
	AccountRestricted AccountStatus = "restricted"
)

// User represents a user in the system
type User struct {
	BaseModel
	Email       string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName   string     `gorm:"size:100" json:"firstName"`
	LastName    string     `gorm:"size:100" json:"lastName"`
	Role        Role       `gorm:"size:20;default:'patient'" json:"role"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	Address     string     `json:"address,omitempty"`

	// Attendance-policy facet. Only the attendance tracker and the
	// re-access workflow may write these two columns; AccountStatus is a
	// cached projection of the counter history, not independently settable.
	AccountStatus      AccountStatus `gorm:"size:20;default:'active'" json:"accountStatus"`
	MissedAppointments int           `gorm:"default:0" json:"missedAppointments"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken    `gorm:"foreignKey:UserID" json:"-"`
	DoctorAppointments  []Appointment     `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment     `gorm:"foreignKey:PatientID" json:"-"`
	ReaccessRequests    []ReaccessRequest `gorm:"foreignKey:PatientID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID                 string        `json:"id"`
	Email              string        `json:"email"`
	FirstName          string        `json:"firstName"`
	LastName           string        `json:"lastName"`
	Role               Role          `json:"role"`
	DateOfBirth        *time.Time    `json:"dateOfBirth,omitempty"`
	PhoneNumber        string        `json:"phoneNumber,omitempty"`
	Address            string        `json:"address,omitempty"`
	AccountStatus      AccountStatus `json:"accountStatus"`
	MissedAppointments int           `json:"missedAppointments"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName returns the display name used in audit trails and conflict messages.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Role:               u.Role,
		DateOfBirth:        u.DateOfBirth,
		PhoneNumber:        u.PhoneNumber,
		Address:            u.Address,
		AccountStatus:      u.AccountStatus,
		MissedAppointments: u.MissedAppointments,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
