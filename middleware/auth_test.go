package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"scout-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	users map[string]*models.User
}

func (f *fakeSessions) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func newTestApp() *fiber.App {
	sessions := &fakeSessions{users: map[string]*models.User{
		"player-token": {ID: "p1", Role: models.RolePlayer, PreferredLanguage: "en"},
		"admin-token":  {ID: "a1", Role: models.RoleAdmin, PreferredLanguage: "he"},
	}}

	app := fiber.New()
	app.Use(Locale("he"))
	app.Get("/me", RequireAuth(sessions), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": CurrentUser(c).ID, "lang": Lang(c)})
	})
	app.Get("/admin", RequireAuth(sessions), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/feed", OptionalAuth(sessions), func(c *fiber.Ctx) error {
		id, _ := c.Locals(LocalUserID).(string)
		return c.SendString("viewer=" + id)
	})
	app.Get("/stream", SSEAuthMiddleware(sessions), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalUserID).(string))
	})
	return app
}

func decode(t *testing.T, body io.Reader) map[string]string {
	t.Helper()
	out := map[string]string{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestRequireAuth(t *testing.T) {
	app := newTestApp()

	t.Run("MissingToken", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Accept-Language", "en-US")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		body := decode(t, resp.Body)
		assert.Equal(t, "unauthenticated", body["error"])
		assert.Equal(t, "Please sign in to continue", body["message"])
	})

	t.Run("BadToken", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("ValidTokenUsesUserLanguage", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer player-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decode(t, resp.Body)
		assert.Equal(t, "p1", body["id"])
		assert.Equal(t, "en", body["lang"])
	})
}

func TestRequireRole(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer player-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalAuth(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/feed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("GET", "/feed", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "viewer=a1", string(b))
}

func TestSSEAuthMiddleware(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/stream?token=bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/stream?token=player-token", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(BearerToken(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "", string(b))
}
