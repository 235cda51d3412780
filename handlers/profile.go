package handlers

import (
	"scout-platform/middleware"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app fiber.Router, sessions middleware.SessionValidator,
	profileService *services.ProfileService, badgeService *services.BadgeService) {
	profile := app.Group("/profile", middleware.RequireAuth(sessions))

	profile.Get("/", func(c *fiber.Ctx) error {
		view, err := profileService.GetProfile(c.UserContext(), c.Locals(middleware.LocalUserID).(string))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(view)
	})

	profile.Patch("/", func(c *fiber.Ctx) error {
		var in services.ProfileUpdate
		if !parseBody(c, &in) {
			return nil
		}
		user, err := profileService.UpdateProfile(c.UserContext(), c.Locals(middleware.LocalUserID).(string), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"user": user, "completion": services.CompletionPercentage(user)})
	})

	profile.Post("/image", func(c *fiber.Ctx) error {
		upload, f, err := formUpload(c, "image")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "file-required")
		}
		defer f.Close()

		user, err := profileService.UploadProfileImage(c.UserContext(), c.Locals(middleware.LocalUserID).(string), *upload)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(user)
	})

	profile.Get("/badges", func(c *fiber.Ctx) error {
		badges, err := badgeService.ListUserBadges(c.UserContext(), c.Locals(middleware.LocalUserID).(string))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(badges)
	})
}
