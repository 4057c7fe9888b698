package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fiscalhub/fiscalhub-backend/internal/auth"
	"github.com/fiscalhub/fiscalhub-backend/internal/config"
	"github.com/fiscalhub/fiscalhub-backend/internal/dto"
	"github.com/fiscalhub/fiscalhub-backend/internal/handlers"
	"github.com/fiscalhub/fiscalhub-backend/internal/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubDirectory struct {
	identity auth.Identity
	password string
}

func (s *stubDirectory) Verify(_ context.Context, email, password string) (auth.Identity, error) {
	if email != s.identity.Email || password != s.password {
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	return s.identity, nil
}

func (s *stubDirectory) Resolve(_ context.Context, userID uuid.UUID) (auth.Identity, error) {
	if userID != s.identity.UserID {
		return auth.Identity{}, fmt.Errorf("user not found")
	}
	return s.identity, nil
}

type nopSink struct{}

func (nopSink) Append(context.Context, auth.AuditEvent) error { return nil }

func newTestApp(t *testing.T, role string) *fiber.App {
	t.Helper()

	cfg := &config.Config{JWTSecret: "handler-test-secret", JWTAccessExpiry: 15 * time.Minute}
	directory := &stubDirectory{
		identity: auth.Identity{
			UserID:         uuid.New(),
			OrganizationID: uuid.New(),
			Role:           role,
			Email:          "joao@example.com.br",
		},
		password: "s3nha-forte",
	}

	authority := auth.NewSessionAuthority(
		auth.NewMemoryStore(),
		directory,
		directory,
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTAccessExpiry),
		nopSink{},
		7*24*time.Hour,
		bcrypt.MinCost,
	)

	app := fiber.New()
	routes.Setup(app, cfg, handlers.NewAuthHandler(authority), handlers.NewHealthHandler())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, bearer string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodePair(t *testing.T, resp *http.Response) dto.TokenPairResponse {
	t.Helper()
	var pair dto.TokenPairResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	return pair
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestLoginEndpoint(t *testing.T) {
	app := newTestApp(t, "user")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "joao@example.com.br", Password: "s3nha-forte"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pair := decodePair(t, resp)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t, "user")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "joao@example.com.br", Password: "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", decodeError(t, resp).Code)
}

func TestRefreshEndpointReplayIsForbidden(t *testing.T) {
	app := newTestApp(t, "user")

	login := doJSON(t, app, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "joao@example.com.br", Password: "s3nha-forte"}, "")
	require.Equal(t, http.StatusOK, login.StatusCode)
	first := decodePair(t, login)

	rotated := doJSON(t, app, http.MethodPost, "/api/auth/refresh",
		dto.RefreshRequest{RefreshToken: first.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rotated.StatusCode)
	assert.NotEqual(t, first.RefreshToken, decodePair(t, rotated).RefreshToken)

	replay := doJSON(t, app, http.MethodPost, "/api/auth/refresh",
		dto.RefreshRequest{RefreshToken: first.RefreshToken}, "")
	require.Equal(t, http.StatusForbidden, replay.StatusCode)
	assert.Equal(t, "security_breach", decodeError(t, replay).Code)
}

func TestRefreshEndpointUnknownToken(t *testing.T) {
	app := newTestApp(t, "user")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/refresh",
		dto.RefreshRequest{RefreshToken: "never-issued"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", decodeError(t, resp).Code)
}

func TestLogoutEndpointRevokesToken(t *testing.T) {
	app := newTestApp(t, "user")

	login := doJSON(t, app, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "joao@example.com.br", Password: "s3nha-forte"}, "")
	pair := decodePair(t, login)

	logout := doJSON(t, app, http.MethodPost, "/api/auth/logout",
		dto.LogoutRequest{RefreshToken: pair.RefreshToken}, pair.AccessToken)
	require.Equal(t, http.StatusOK, logout.StatusCode)

	// The revoked token is now a reuse candidate.
	refresh := doJSON(t, app, http.MethodPost, "/api/auth/refresh",
		dto.RefreshRequest{RefreshToken: pair.RefreshToken}, "")
	require.Equal(t, http.StatusForbidden, refresh.StatusCode)
}

func TestLogoutEndpointRequiresJWT(t *testing.T) {
	app := newTestApp(t, "user")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/logout",
		dto.LogoutRequest{RefreshToken: "whatever"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileEndpointRequiresAdminRole(t *testing.T) {
	app := newTestApp(t, "user")

	login := doJSON(t, app, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "joao@example.com.br", Password: "s3nha-forte"}, "")
	pair := decodePair(t, login)

	resp := doJSON(t, app, http.MethodGet, "/api/auth/profile", nil, pair.AccessToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProfileEndpointAllowsAdmin(t *testing.T) {
	app := newTestApp(t, "admin")

	login := doJSON(t, app, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "joao@example.com.br", Password: "s3nha-forte"}, "")
	pair := decodePair(t, login)

	resp := doJSON(t, app, http.MethodGet, "/api/auth/profile", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile dto.ProfileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	assert.Equal(t, "admin", profile.Role)
}
