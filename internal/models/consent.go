package models

import (
	"time"
)

// Consent is a patient's time-bounded authorization for one doctor to read
// one record. Consents are never deleted, only deactivated, so the audit
// trail stays intact after revocation.
type Consent struct {
	BaseModel
	RecordID        string    `gorm:"size:36;index;not null" json:"recordId"`
	PatientID       string    `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string    `gorm:"size:36;index;not null" json:"doctorId"`
	Purpose         string    `gorm:"size:500" json:"purpose"`
	ExpiryDate      time.Time `gorm:"not null" json:"expiryDate"`
	IsActive        bool      `gorm:"default:true" json:"isActive"`
	AnchorSequence  uint64    `json:"anchorSequence"`
	AnchorTimestamp string    `gorm:"size:64" json:"anchorTimestamp"`

	Record  MedicalRecord `gorm:"foreignKey:RecordID" json:"-"`
	Patient User          `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User          `gorm:"foreignKey:DoctorID" json:"-"`
}

// IsEffective is the single source of truth for whether a consent currently
// authorizes access. Callers must evaluate it against the current time at
// read time, never at grant time; an effective consent silently becomes
// ineffective at expiry with no writes.
func (c *Consent) IsEffective(now time.Time) bool {
	return c.IsActive && c.ExpiryDate.After(now)
}
