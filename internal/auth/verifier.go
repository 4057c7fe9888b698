package auth

import (
	"context"
	"fmt"

	"github.com/fiscalhub/fiscalhub-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Identity is what the authority needs to build claims: nothing more
// than the owning user, its organization, and its role.
type Identity struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           string
	Email          string
}

// CredentialVerifier validates a presented secret against a stored
// hash. The hashing scheme is opaque to the SessionAuthority.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (Identity, error)
}

// IdentityResolver looks up the identity behind a user id, used at
// refresh time when the user is only known through the matched record.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (Identity, error)
}

// GormDirectory implements both CredentialVerifier and
// IdentityResolver over the users table. Soft-deleted users are
// excluded by GORM's default scope.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) Verify(ctx context.Context, email, password string) (Identity, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return identityOf(&user), nil
}

func (d *GormDirectory) Resolve(ctx context.Context, userID uuid.UUID) (Identity, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return Identity{}, fmt.Errorf("user not found: %w", err)
	}
	return identityOf(&user), nil
}

func identityOf(user *models.User) Identity {
	return Identity{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
		Email:          user.Email,
	}
}
