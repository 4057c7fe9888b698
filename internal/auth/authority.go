package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// refreshSecretBytes is the entropy of a raw refresh token (256 bits).
const refreshSecretBytes = 32

// TokenPair is the result of a successful login or rotation. The
// refresh value is raw here and nowhere else; only its bcrypt hash is
// ever persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionAuthority owns the refresh-token lifecycle: it issues pairs,
// enforces single-use rotation, and escalates token reuse to a full
// cascade revocation of the user's sessions.
//
// The authority holds no mutable state of its own; everything durable
// lives in the TokenStore, so concurrent requests only meet at the
// store's atomic primitives.
type SessionAuthority struct {
	store    TokenStore
	verifier CredentialVerifier
	users    IdentityResolver
	issuer   AccessTokenIssuer
	audit    AuditSink

	refreshLifetime time.Duration
	bcryptCost      int
	now             func() time.Time
}

func NewSessionAuthority(
	store TokenStore,
	verifier CredentialVerifier,
	users IdentityResolver,
	issuer AccessTokenIssuer,
	audit AuditSink,
	refreshLifetime time.Duration,
	bcryptCost int,
) *SessionAuthority {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &SessionAuthority{
		store:           store,
		verifier:        verifier,
		users:           users,
		issuer:          issuer,
		audit:           audit,
		refreshLifetime: refreshLifetime,
		bcryptCost:      bcryptCost,
		now:             time.Now,
	}
}

// Login verifies the credentials and issues a fresh access/refresh
// pair. A failed verification has no side effects at all.
func (a *SessionAuthority) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	identity, err := a.verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	pair, err := a.issuePair(ctx, identity)
	if err != nil {
		return nil, err
	}

	a.appendAudit(ctx, AuditEvent{
		Event:          EventLoginSuccess,
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		NewData:        map[string]interface{}{"role": identity.Role},
	})

	return pair, nil
}

// Refresh exchanges a raw refresh token for a new pair, rotating the
// presented token.
//
// The candidate scan deliberately includes revoked and expired
// records: a revoked record that still matches is exactly the reuse
// signal the cascade exists for. The happy path revokes the matched
// record with a compare-and-swap before creating its replacement, so
// at most one of any number of concurrent duplicates can rotate; the
// losers land in the breach branch, which is the right call because a
// second use of a just-rotated token is indistinguishable from theft.
func (a *SessionAuthority) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	candidates, err := a.store.ListCandidates(ctx, nil)
	if err != nil {
		return nil, err
	}

	matched := matchCandidate(candidates, rawToken)
	if matched == nil {
		return nil, ErrInvalidToken
	}

	if matched.IsRevoked {
		return nil, a.escalateReuse(ctx, matched)
	}

	if a.now().After(matched.ExpiresAt) {
		return nil, ErrExpiredToken
	}

	applied, err := a.store.ConditionalRevoke(ctx, matched.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race to a concurrent refresh of the same token.
		return nil, a.escalateReuse(ctx, matched)
	}

	// The old record is revoked at this point. If anything below
	// fails, the caller must re-login rather than retry; detach from
	// caller cancellation so an abandoned request cannot strand the
	// user between revoke and create.
	ctx = context.WithoutCancel(ctx)

	identity, err := a.users.Resolve(ctx, matched.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshIncomplete, err)
	}

	pair, err := a.issuePair(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshIncomplete, err)
	}

	a.appendAudit(ctx, AuditEvent{
		Event:          EventLoginSuccess,
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		NewData:        map[string]interface{}{"role": identity.Role, "rotated_from": matched.ID.String()},
	})

	return pair, nil
}

// Logout revokes the matched record for the given user. It scans only
// that user's still-active records and is idempotent: a token that
// matches nothing (already revoked, or simply unknown) is not an
// error.
func (a *SessionAuthority) Logout(ctx context.Context, rawToken string, userID uuid.UUID) error {
	candidates, err := a.store.ListCandidates(ctx, &userID)
	if err != nil {
		return err
	}

	for i := range candidates {
		if candidates[i].IsRevoked {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].SecretHash), []byte(rawToken)) == nil {
			if _, err := a.store.ConditionalRevoke(ctx, candidates[i].ID); err != nil {
				return err
			}
			break
		}
	}

	event := AuditEvent{Event: EventLogout, UserID: userID}
	if identity, err := a.users.Resolve(ctx, userID); err == nil {
		event.OrganizationID = identity.OrganizationID
	}
	a.appendAudit(ctx, event)

	return nil
}

// escalateReuse handles a matched-but-already-revoked token: revoke
// everything the user has, write the audit trail, and surface the
// distinct breach error. The cascade and the audit row are both
// durable before the caller sees the error.
func (a *SessionAuthority) escalateReuse(ctx context.Context, matched *models.RefreshToken) error {
	ctx = context.WithoutCancel(ctx)

	revoked, err := a.store.RevokeAllForUser(ctx, matched.UserID)
	if err != nil {
		return fmt.Errorf("failed to cascade revocation: %w", err)
	}

	event := AuditEvent{
		Event:   EventTokenReuseDetected,
		UserID:  matched.UserID,
		OldData: map[string]interface{}{"token_id": matched.ID.String()},
	}
	if identity, err := a.users.Resolve(ctx, matched.UserID); err == nil {
		event.OrganizationID = identity.OrganizationID
	}
	if err := a.audit.Append(ctx, event); err != nil {
		slog.Error("failed to append security audit event",
			"event", EventTokenReuseDetected, "user_id", matched.UserID, "error", err)
	}

	slog.Warn("refresh token reuse detected",
		"user_id", matched.UserID, "token_id", matched.ID, "sessions_revoked", revoked)

	return ErrSecurityBreach
}

// issuePair mints the access token, generates a fresh raw refresh
// secret, and persists only its hash.
func (a *SessionAuthority) issuePair(ctx context.Context, identity Identity) (*TokenPair, error) {
	accessToken, err := a.issuer.Issue(Claims{
		UserID:         identity.UserID,
		OrganizationID: identity.OrganizationID,
		Role:           identity.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	raw := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate refresh secret: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(rawToken), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh secret: %w", err)
	}

	now := a.now()
	record := models.RefreshToken{
		ID:         uuid.New(),
		UserID:     identity.UserID,
		SecretHash: string(hash),
		IssuedAt:   now,
		ExpiresAt:  now.Add(a.refreshLifetime),
	}
	if err := a.store.Create(ctx, &record); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: rawToken}, nil
}

func (a *SessionAuthority) appendAudit(ctx context.Context, event AuditEvent) {
	if err := a.audit.Append(ctx, event); err != nil {
		slog.Error("failed to append audit event", "event", event.Event, "user_id", event.UserID, "error", err)
	}
}

// matchCandidate runs the bcrypt comparison over every candidate and
// stops at the first hit. Hashes are salted, so cross-record collision
// is not a practical concern.
func matchCandidate(candidates []models.RefreshToken, rawToken string) *models.RefreshToken {
	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].SecretHash), []byte(rawToken)) == nil {
			return &candidates[i]
		}
	}
	return nil
}
