package models

import (
	"time"
)

// AccessRequestStatus enum
type AccessRequestStatus string

const (
	AccessRequestPending  AccessRequestStatus = "PENDING"
	AccessRequestApproved AccessRequestStatus = "APPROVED"
	AccessRequestDenied   AccessRequestStatus = "DENIED"
)

// AccessRequest is a doctor-initiated request for consent, routed to the
// patient. It starts PENDING and transitions exactly once to APPROVED or
// DENIED; responding to a non-PENDING request is a conflict. ExpiresAt is
// computed once at creation from the requested duration and is immutable.
type AccessRequest struct {
	BaseModel
	PatientID    string              `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID     string              `gorm:"size:36;index;not null" json:"doctorId"`
	Purpose      string              `gorm:"size:500;not null" json:"purpose"`
	DurationDays int                 `gorm:"not null" json:"durationDays"`
	Status       AccessRequestStatus `gorm:"size:20;default:'PENDING'" json:"status"`
	ExpiresAt    time.Time           `gorm:"not null" json:"expiresAt"`

	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
