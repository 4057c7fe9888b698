package auth

import (
	"context"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
)

// TokenStore abstracts persistence for refresh-token records.
//
// Records are keyed by a bcrypt hash of the raw secret, so no
// implementation can offer an equality lookup on the token itself;
// callers list candidates and compare one by one. All mutation of
// is_revoked goes through the two atomic primitives below — the core
// never does a read-then-unconditional-write on that flag.
type TokenStore interface {
	// Create persists a new record. The record's ID must be set by the
	// caller or by the store; either way it is stable afterwards.
	Create(ctx context.Context, rec *models.RefreshToken) error

	// ListCandidates returns all records, revoked and expired ones
	// included (excluding them would silently disable reuse
	// detection). A non-nil userID restricts the scan to that user,
	// which is only safe on paths where the owner is already known,
	// such as logout.
	ListCandidates(ctx context.Context, userID *uuid.UUID) ([]models.RefreshToken, error)

	// ConditionalRevoke marks the record revoked only if it is still
	// unrevoked, and reports whether this call applied the transition.
	// applied == false means another request won the race.
	ConditionalRevoke(ctx context.Context, id uuid.UUID) (applied bool, err error)

	// RevokeAllForUser revokes every unrevoked record of the user and
	// returns how many rows it touched.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
