package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore is the Postgres-backed TokenStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, rec *models.RefreshToken) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *GormStore) ListCandidates(ctx context.Context, userID *uuid.UUID) ([]models.RefreshToken, error) {
	q := s.db.WithContext(ctx).Model(&models.RefreshToken{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var records []models.RefreshToken
	if err := q.Order("issued_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list refresh tokens: %w", err)
	}
	return records, nil
}

// ConditionalRevoke is a compare-and-swap on is_revoked: the WHERE
// clause guards the update, RowsAffected tells us who won.
func (s *GormStore) ConditionalRevoke(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND is_revoked = false", id).
		Updates(map[string]interface{}{"is_revoked": true, "revoked_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = false", userID).
		Updates(map[string]interface{}{"is_revoked": true, "revoked_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
