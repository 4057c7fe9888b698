package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory TokenStore used by tests
// and local development. It honors the same atomicity contract as the
// SQL store: ConditionalRevoke applies at most once per record.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.RefreshToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]*models.RefreshToken)}
}

func (s *MemoryStore) Create(_ context.Context, rec *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *MemoryStore) ListCandidates(_ context.Context, userID *uuid.UUID) ([]models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.RefreshToken, 0, len(s.records))
	for _, rec := range s.records {
		if userID != nil && rec.UserID != *userID {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *MemoryStore) ConditionalRevoke(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.IsRevoked {
		return false, nil
	}
	now := time.Now()
	rec.IsRevoked = true
	rec.RevokedAt = &now
	return true, nil
}

func (s *MemoryStore) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var count int64
	for _, rec := range s.records {
		if rec.UserID == userID && !rec.IsRevoked {
			rec.IsRevoked = true
			rec.RevokedAt = &now
			count++
		}
	}
	return count, nil
}
