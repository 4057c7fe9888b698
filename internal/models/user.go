package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User belongs to exactly one organization; Role drives claim-based
// access checks on the issued access token.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Email          string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	PasswordHash   string         `gorm:"not null" json:"-"`
	Role           string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}
