package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit event types emitted by the SessionAuthority.
const (
	EventLoginSuccess       = "AUTH_LOGIN_SUCCESS"
	EventLogout             = "AUTH_LOGOUT"
	EventTokenReuseDetected = "SECURITY_TOKEN_REUSE_DETECTED"
)

// AuditEvent is a single immutable security event.
type AuditEvent struct {
	Event          string
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	OldData        map[string]interface{}
	NewData        map[string]interface{}
}

// AuditSink appends immutable security events. Append must complete
// before the response that triggered the event is returned, so
// implementations write synchronously.
type AuditSink interface {
	Append(ctx context.Context, event AuditEvent) error
}

// GormAuditSink persists events to the audit_logs table.
type GormAuditSink struct {
	db *gorm.DB
}

func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

func (s *GormAuditSink) Append(ctx context.Context, event AuditEvent) error {
	row := models.AuditLog{
		ID:             uuid.New(),
		OrganizationID: event.OrganizationID,
		UserID:         event.UserID,
		Event:          event.Event,
		CreatedAt:      time.Now(),
	}
	if event.OldData != nil {
		b, err := json.Marshal(event.OldData)
		if err != nil {
			return fmt.Errorf("failed to encode audit payload: %w", err)
		}
		row.OldData = datatypes.JSON(b)
	}
	if event.NewData != nil {
		b, err := json.Marshal(event.NewData)
		if err != nil {
			return fmt.Errorf("failed to encode audit payload: %w", err)
		}
		row.NewData = datatypes.JSON(b)
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
