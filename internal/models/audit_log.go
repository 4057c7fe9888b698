package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is append-only. Security events must be written before the
// response that triggered them is returned.
type AuditLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;index" json:"organization_id"`
	UserID         uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Event          string         `gorm:"size:64;not null;index" json:"event"`
	OldData        datatypes.JSON `gorm:"type:jsonb" json:"old_data,omitempty"`
	NewData        datatypes.JSON `gorm:"type:jsonb" json:"new_data,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}
