package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RolePatient    Role = "PATIENT"
	RoleDoctor     Role = "DOCTOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// UserStatus enum
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusSuspended UserStatus = "SUSPENDED"
)

// User represents a user in the system. DID and PublicKey are assigned once
// at registration, from the ledger account minted for the user, and never
// change afterwards.
type User struct {
	BaseModel
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Name      string     `gorm:"size:200;not null" json:"name"`
	Role      Role       `gorm:"size:20;default:'PATIENT'" json:"role"`
	Status    UserStatus `gorm:"size:20;default:'ACTIVE'" json:"status"`
	DID       string     `gorm:"size:255;uniqueIndex" json:"did"`
	PublicKey string     `gorm:"size:255" json:"-"`

	// Relations (not always preloaded)
	RefreshTokens  []RefreshToken  `gorm:"foreignKey:UserID" json:"-"`
	DoctorProfile  *DoctorProfile  `gorm:"foreignKey:UserID" json:"doctorProfile,omitempty"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID" json:"patientProfile,omitempty"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	DID       string     `json:"did"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
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

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		DID:       u.DID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// DoctorProfile is the doctor role-profile. A doctor may act on patients
// only after an admin verifies them.
type DoctorProfile struct {
	BaseModel
	UserID         string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization string     `gorm:"size:100" json:"specialization"`
	DepartmentID   *string    `gorm:"size:36;index" json:"departmentId,omitempty"`
	IsVerified     bool       `gorm:"default:false" json:"isVerified"`
	VerifiedBy     string     `gorm:"size:36" json:"-"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// PatientProfile is the patient role-profile.
type PatientProfile struct {
	BaseModel
	UserID      string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	BloodType   string     `gorm:"size:10" json:"bloodType,omitempty"`
	Allergies   string     `gorm:"size:500" json:"allergies,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Department groups doctors; managed by admins.
type Department struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	CreatedBy   string `gorm:"size:36" json:"createdBy"`

	Doctors []DoctorProfile `gorm:"foreignKey:DepartmentID" json:"-"`
}
