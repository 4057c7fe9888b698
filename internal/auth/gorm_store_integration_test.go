package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Integration tests are enabled when FISCALHUB_TEST_DSN is set;
// otherwise they are skipped to keep local runs fast.

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("FISCALHUB_TEST_DSN")
	if dsn == "" {
		t.Skip("FISCALHUB_TEST_DSN is not set; skipping Postgres integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))
	return db
}

func TestGormStoreConditionalRevokeIsAtomic(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	userID := uuid.New()
	rec := models.RefreshToken{
		UserID:     userID,
		SecretHash: "$2a$04$integrationtesthashintegrationtesthash",
		IssuedAt:   time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, &rec))
	t.Cleanup(func() { db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}) })

	applied, err := store.ConditionalRevoke(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = store.ConditionalRevoke(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	// The record stays behind as a revoked candidate.
	candidates, err := store.ListCandidates(ctx, &userID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].IsRevoked)
	assert.NotNil(t, candidates[0].RevokedAt)
}

func TestGormStoreRevokeAllForUser(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		rec := models.RefreshToken{
			UserID:     userID,
			SecretHash: "$2a$04$integrationtesthashintegrationtesthash",
			IssuedAt:   time.Now(),
			ExpiresAt:  time.Now().Add(time.Hour),
		}
		require.NoError(t, store.Create(ctx, &rec))
	}
	t.Cleanup(func() { db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}) })

	count, err := store.RevokeAllForUser(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = store.RevokeAllForUser(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
