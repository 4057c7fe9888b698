package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by access tokens.
type Claims struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           string
}

// AccessTokenIssuer produces and verifies short-lived signed access
// credentials. The signing scheme is opaque to the SessionAuthority.
type AccessTokenIssuer interface {
	Issue(claims Claims) (string, error)
	Verify(token string) (Claims, error)
}

// JWTIssuer signs access tokens with HS256 and a shared secret.
type JWTIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewJWTIssuer(secret string, expiry time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), expiry: expiry}
}

func (i *JWTIssuer) Issue(claims Claims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  claims.UserID.String(),
		"org":  claims.OrganizationID.String(),
		"role": claims.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(i.expiry).Unix(),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (i *JWTIssuer) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("invalid access token: %w", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("invalid access token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("invalid access token claims")
	}

	sub, _ := mapClaims["sub"].(string)
	org, _ := mapClaims["org"].(string)
	role, _ := mapClaims["role"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid sub claim: %w", err)
	}
	orgID, err := uuid.Parse(org)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid org claim: %w", err)
	}

	return Claims{UserID: userID, OrganizationID: orgID, Role: role}, nil
}
