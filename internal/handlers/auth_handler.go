package handlers

import (
	"errors"

	"github.com/fiscalhub/fiscalhub-backend/internal/auth"
	"github.com/fiscalhub/fiscalhub-backend/internal/authctx"
	"github.com/fiscalhub/fiscalhub-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authority *auth.SessionAuthority
}

func NewAuthHandler(authority *auth.SessionAuthority) *AuthHandler {
	return &AuthHandler{authority: authority}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "bad_request", Message: "Invalid request body",
		})
	}

	pair, err := h.authority.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: "invalid_credentials", Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Code: "internal", Message: "Internal server error",
		})
	}

	return c.JSON(dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh exchanges a refresh token for a new pair. A 403 with code
// security_breach means every session of the user was just revoked;
// clients should force a full re-login on all devices.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "bad_request", Message: "Invalid request body",
		})
	}

	pair, err := h.authority.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSecurityBreach):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Code: "security_breach", Message: err.Error(),
			})
		case errors.Is(err, auth.ErrExpiredToken):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: "expired_token", Message: err.Error(),
			})
		case errors.Is(err, auth.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: "invalid_token", Message: err.Error(),
			})
		case errors.Is(err, auth.ErrRefreshIncomplete):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Code: "refresh_incomplete", Message: auth.ErrRefreshIncomplete.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Code: "internal", Message: "Internal server error",
		})
	}

	return c.JSON(dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Code: "unauthorized", Message: "Unauthorized",
		})
	}

	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "bad_request", Message: "Invalid request body",
		})
	}

	if err := h.authority.Logout(c.Context(), req.RefreshToken, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Code: "internal", Message: "Failed to logout",
		})
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, err := authctx.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Code: "unauthorized", Message: "Unauthorized",
		})
	}
	orgID, err := authctx.OrganizationID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Code: "unauthorized", Message: "Unauthorized",
		})
	}

	return c.JSON(dto.ProfileResponse{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           authctx.Role(c),
	})
}
