// middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"scout-platform/i18n"
	"scout-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Keys under which request-scoped values are stored in c.Locals.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
	LocalUser     = "user"
	LocalLang     = "lang"
	LocalToken    = "token"
)

// SessionValidator resolves a bearer token to its user.
type SessionValidator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Locale picks the response language: the signed-in user's preference,
// then Accept-Language, then the configured default.
func Locale(defaultLang string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalLang, i18n.FromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage), defaultLang))
		return c.Next()
	}
}

// Lang returns the language chosen for this request.
func Lang(c *fiber.Ctx) string {
	if u, ok := c.Locals(LocalUser).(*models.User); ok && u.PreferredLanguage != "" {
		return i18n.Normalize(u.PreferredLanguage)
	}
	if l, ok := c.Locals(LocalLang).(string); ok && l != "" {
		return l
	}
	return i18n.Hebrew
}

// BearerToken extracts "Bearer <token>" from the Authorization header.
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth validates the bearer token and attaches the user to the request.
func RequireAuth(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return unauthenticated(c)
		}
		user, err := sessions.Authenticate(c.UserContext(), token)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("🚫 [AUTH] rejected bearer token")
			return unauthenticated(c)
		}
		attachUser(c, user, token)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := BearerToken(c); token != "" {
			if user, err := sessions.Authenticate(c.UserContext(), token); err == nil {
				attachUser(c, user, token)
			}
		}
		return c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		log.Warn().Str("role", role).Strs("required", roles).Str("path", c.Path()).Msg("❌ [AUTH] role not allowed")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": i18n.T(Lang(c), "forbidden"),
		})
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)
	return u
}

func attachUser(c *fiber.Ctx, user *models.User, token string) {
	c.Locals(LocalUser, user)
	c.Locals(LocalUserID, user.ID)
	c.Locals(LocalUserRole, user.Role)
	c.Locals(LocalToken, token)
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthenticated",
		"message": i18n.T(Lang(c), "unauthenticated"),
	})
}
