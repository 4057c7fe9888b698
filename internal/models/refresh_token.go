package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken stores only a bcrypt hash of the raw refresh secret, so
// lookup is a scan-and-compare, never an equality index on the secret.
//
// IsRevoked transitions exactly once, false to true; rotation creates a
// new row instead of mutating SecretHash, and rows are never deleted
// (revoked rows stay behind as reuse-detection evidence).
type RefreshToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SecretHash string     `gorm:"not null;size:72" json:"-"`
	IssuedAt   time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	IsRevoked  bool       `gorm:"not null;default:false;index" json:"is_revoked"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
