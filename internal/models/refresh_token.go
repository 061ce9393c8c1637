package models

import (
	"time"
)

// RefreshToken stores issued refresh tokens so they can be rotated and revoked.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Token     string    `gorm:"size:512;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
