package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/repository"
	apperrors "github.com/spec-kit/queue-info-api/pkg/util"
)

const principalKey = "auth_principal"

// Middleware validates bearer access tokens and loads the current user.
type Middleware struct {
	codec *TokenCodec
	users repository.UserRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(codec *TokenCodec, users repository.UserRepository) *Middleware {
	return &Middleware{codec: codec, users: users}
}

// Handle enforces authentication for protected routes. Only access tokens are
// accepted; refresh and reset tokens are rejected.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.codec.Decode(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.Kind != TokenKindAccess {
		return apperrors.NewUnauthorized("invalid token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return apperrors.NewInactiveAccount()
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

// RequireSuperuser ensures the authenticated user has superuser rights.
func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !user.IsSuperuser {
			return apperrors.NewForbidden("superuser required")
		}
		return c.Next()
	}
}
