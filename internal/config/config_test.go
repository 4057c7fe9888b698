package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.RefreshLifetime)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REFRESH_LIFETIME", "24h")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")
	t.Setenv("BCRYPT_COST", "12")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.RefreshLifetime)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("REFRESH_LIFETIME", "a-week")
	t.Setenv("BCRYPT_COST", "lots")

	cfg := Load()

	assert.Equal(t, 168*time.Hour, cfg.RefreshLifetime)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "pw")

	cfg := Load()
	dsn := cfg.DSN()

	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "password=pw")
	assert.Contains(t, dsn, "sslmode=disable")
}
