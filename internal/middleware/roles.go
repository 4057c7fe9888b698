package middleware

import (
	"github.com/fiscalhub/fiscalhub-backend/internal/authctx"
	"github.com/fiscalhub/fiscalhub-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// RequireRole gates a route on the role claim of the verified access
// token. Role is a claim on the credential, not a live DB lookup, so a
// role change takes effect at the next token issuance.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := authctx.Role(c)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error:   true,
			Code:    "forbidden",
			Message: "Insufficient role",
		})
	}
}
