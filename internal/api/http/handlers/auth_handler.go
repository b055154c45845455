package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-info-api/internal/api/dto"
	"github.com/spec-kit/queue-info-api/internal/auth"
	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/service"
)

const refreshTokenCookie = "refresh-token"

// AuthHandler exposes the token lifecycle endpoints.
type AuthHandler struct {
	auth            *service.AuthService
	refreshTokenTTL time.Duration
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, refreshTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: authService, refreshTokenTTL: refreshTokenTTL}
}

// AccessToken handles POST /access-token. OAuth2-compatible form login: the
// access token goes in the body, the refresh token in a cookie.
func (h *AuthHandler) AccessToken(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	pair, err := h.auth.Login(c.UserContext(), username, password)
	if err != nil {
		return err
	}
	return h.respondWithPair(c, pair)
}

// RefreshToken handles POST /refresh-token. Reads the refresh-token cookie
// and rotates the pair.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(refreshTokenCookie)
	if token == "" {
		return fiber.NewError(http.StatusBadRequest, "missing refresh token")
	}

	pair, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	return h.respondWithPair(c, pair)
}

// TestToken handles POST /test-token. The bearer middleware has already
// authenticated the caller; echo the identity back.
func (h *AuthHandler) TestToken(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(dto.NewUserResponse(user))
}

// RecoverPassword handles POST /password-recovery/:email.
func (h *AuthHandler) RecoverPassword(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), email); err != nil {
		return err
	}
	return c.JSON(dto.MsgResponse{Msg: "Password recovery email sent"})
}

// ResetPassword handles POST /reset-password/.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new_password required")
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(dto.MsgResponse{Msg: "Password updated successfully"})
}

func (h *AuthHandler) respondWithPair(c *fiber.Ctx, pair domain.TokenPair) error {
	c.Cookie(&fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Expires:  time.Now().Add(h.refreshTokenTTL),
		HTTPOnly: true,
		Path:     "/",
	})
	return c.JSON(dto.TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
	})
}
