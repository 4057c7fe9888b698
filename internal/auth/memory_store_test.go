package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecord(t *testing.T, s *MemoryStore, userID uuid.UUID) uuid.UUID {
	t.Helper()
	rec := models.RefreshToken{
		UserID:     userID,
		SecretHash: "$2a$04$notarealhashnotarealhashnotarealhash",
		IssuedAt:   time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, s.Create(context.Background(), &rec))
	return rec.ID
}

func TestMemoryStoreConditionalRevokeAppliesOnce(t *testing.T) {
	s := NewMemoryStore()
	id := seedRecord(t, s, uuid.New())

	applied, err := s.ConditionalRevoke(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.ConditionalRevoke(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, applied, "second revoke must report the lost race")
}

func TestMemoryStoreConditionalRevokeUnderContention(t *testing.T) {
	s := NewMemoryStore()
	id := seedRecord(t, s, uuid.New())

	const workers = 16
	var wg sync.WaitGroup
	applications := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := s.ConditionalRevoke(context.Background(), id)
			if err != nil {
				t.Error(err)
				return
			}
			applications <- applied
		}()
	}
	wg.Wait()
	close(applications)

	var wins int
	for applied := range applications {
		if applied {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestMemoryStoreRevokeAllForUser(t *testing.T) {
	s := NewMemoryStore()
	userID := uuid.New()
	seedRecord(t, s, userID)
	seedRecord(t, s, userID)
	otherID := seedRecord(t, s, uuid.New())

	count, err := s.RevokeAllForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Other users are untouched.
	applied, err := s.ConditionalRevoke(context.Background(), otherID)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestMemoryStoreListCandidatesFilter(t *testing.T) {
	s := NewMemoryStore()
	userID := uuid.New()
	seedRecord(t, s, userID)
	seedRecord(t, s, uuid.New())

	all, err := s.ListCandidates(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := s.ListCandidates(context.Background(), &userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, userID, mine[0].UserID)
}
