package authctx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// mapClaims pulls the verified JWT claims out of Fiber context locals
// (set by the jwtware middleware).
func mapClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// UserID extracts the user UUID from the sub claim.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := mapClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// OrganizationID extracts the organization UUID from the org claim.
func OrganizationID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := mapClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	org, ok := claims["org"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing org claim")
	}
	return uuid.Parse(org)
}

// Role extracts the role claim, empty when absent.
func Role(c *fiber.Ctx) string {
	claims, err := mapClaims(c)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
