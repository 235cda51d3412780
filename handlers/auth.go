package handlers

import (
	"time"

	"scout-platform/middleware"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type signInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

func SetupAuthRoutes(app fiber.Router, authService *services.AuthService) {
	auth := app.Group("/auth")

	// 🔓 Public
	auth.Post("/signup", func(c *fiber.Ctx) error {
		var in services.SignUpInput
		if !parseBody(c, &in) {
			return nil
		}
		res, err := authService.SignUp(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	auth.Post("/signin", func(c *fiber.Ctx) error {
		var in signInRequest
		if !parseBody(c, &in) {
			return nil
		}
		res, err := authService.SignIn(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	// per-IP cap on reset mails on top of the per-email sign-in throttle
	forgotLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fail(c, fiber.StatusTooManyRequests, "too-many-requests")
		},
	})
	auth.Post("/password/forgot", forgotLimiter, func(c *fiber.Ctx) error {
		var in forgotPasswordRequest
		if !parseBody(c, &in) {
			return nil
		}
		if err := authService.RequestPasswordReset(c.UserContext(), in.Email); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	auth.Post("/password/reset", func(c *fiber.Ctx) error {
		var in resetPasswordRequest
		if !parseBody(c, &in) {
			return nil
		}
		if err := authService.ResetPassword(c.UserContext(), in.Token, in.Password); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	// 🔐 Secured
	secured := auth.Group("", middleware.RequireAuth(authService))

	secured.Post("/signout", func(c *fiber.Ctx) error {
		token, _ := c.Locals(middleware.LocalToken).(string)
		if err := authService.SignOut(c.UserContext(), token); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(middleware.CurrentUser(c))
	})
}
