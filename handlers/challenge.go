package handlers

import (
	"scout-platform/middleware"
	"scout-platform/models"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app fiber.Router, sessions middleware.SessionValidator, challengeService *services.ChallengeService) {
	secured := app.Group("/challenges", middleware.RequireAuth(sessions))

	secured.Get("/", func(c *fiber.Ctx) error {
		f := services.ChallengeFilter{
			Level:    c.QueryInt("level"),
			Category: c.Query("category"),
			Position: c.Query("position"),
			AgeGroup: c.Query("age_group"),
			Sort:     c.Query("sort"),
			All:      queryBool(c, "all"),
		}
		list, err := challengeService.List(c.UserContext(), f, middleware.CurrentUser(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	secured.Get("/recommended", middleware.RequireRole(models.RolePlayer), func(c *fiber.Ctx) error {
		ranked, err := challengeService.Recommended(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.QueryInt("limit", 10))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(ranked)
	})

	secured.Get("/progress", middleware.RequireRole(models.RolePlayer), func(c *fiber.Ctx) error {
		overview, err := challengeService.Overview(c.UserContext(), c.Locals(middleware.LocalUserID).(string))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(overview)
	})

	secured.Get("/submissions", middleware.RequireRole(models.RolePlayer), func(c *fiber.Ctx) error {
		page, size := pageParams(c)
		res, err := challengeService.ListSubmissions(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Query("status"), page, size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		view, err := challengeService.Get(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(view)
	})

	// multipart: video, attempts, successes, reps, seconds, upload_id
	secured.Post("/:id/submissions", middleware.RequireRole(models.RolePlayer), func(c *fiber.Ctx) error {
		upload, f, err := formUpload(c, "video")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "file-required")
		}
		defer f.Close()

		m := models.SubmissionMetrics{
			Attempts:  formInt(c, "attempts"),
			Successes: formInt(c, "successes"),
			Reps:      formInt(c, "reps"),
			Seconds:   formInt(c, "seconds"),
		}
		sub, err := challengeService.SubmitChallenge(c.UserContext(), c.Locals(middleware.LocalUserID).(string),
			c.Params("id"), m, *upload, c.FormValue("upload_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	// 🛡️ Admin
	admin := app.Group("/admin/challenges", middleware.RequireAuth(sessions), middleware.RequireRole(models.RoleAdmin))

	admin.Post("/", func(c *fiber.Ctx) error {
		var in services.ChallengeInput
		if !parseBody(c, &in) {
			return nil
		}
		ch, err := challengeService.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ch)
	})

	admin.Put("/:id", func(c *fiber.Ctx) error {
		var in services.ChallengeInput
		if !parseBody(c, &in) {
			return nil
		}
		ch, err := challengeService.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(ch)
	})

	admin.Delete("/:id", func(c *fiber.Ctx) error {
		if err := challengeService.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Get("/submissions", func(c *fiber.Ctx) error {
		page, size := pageParams(c)
		status := c.Query("status", models.SubmissionStatusPending)
		res, err := challengeService.ListSubmissions(c.UserContext(), "", status, page, size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	admin.Post("/submissions/:id/review", func(c *fiber.Ctx) error {
		var in services.ReviewInput
		if !parseBody(c, &in) {
			return nil
		}
		sub, err := challengeService.ReviewSubmission(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sub)
	})
}
