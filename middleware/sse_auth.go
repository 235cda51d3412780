// middleware/sse_auth.go
package middleware

import (
	"strings"

	"scout-platform/i18n"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SSEAuthMiddleware validates the `token` query parameter. Browsers cannot
// set headers on EventSource connections.
//
// Usage:
//
//	app.Get("/notifications/stream", middleware.SSEAuthMiddleware(authService), handler)
func SSEAuthMiddleware(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(c.Query("token"))
		if accessToken == "" {
			accessToken = BearerToken(c)
		}
		if accessToken == "" {
			log.Warn().Str("path", c.Path()).Msg("[SSEAuth] ❌ missing token")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "unauthenticated",
				"message": i18n.T(Lang(c), "unauthenticated"),
			})
		}

		user, err := sessions.Authenticate(c.UserContext(), accessToken)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("[SSEAuth] ❌ validation failed")
			return unauthenticated(c)
		}

		attachUser(c, user, accessToken)
		log.Debug().Str("user_id", user.ID).Msg("[SSEAuth] ✅ authenticated")
		return c.Next()
	}
}
