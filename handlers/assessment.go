package handlers

import (
	"scout-platform/middleware"
	"scout-platform/models"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
)

type scoreRequest struct {
	Score *float64 `json:"score" validate:"required"`
}

func SetupAssessmentRoutes(app fiber.Router, sessions middleware.SessionValidator, assessmentService *services.AssessmentService) {
	player := app.Group("/assessment", middleware.RequireAuth(sessions), middleware.RequireRole(models.RolePlayer))

	player.Post("/start", func(c *fiber.Ctx) error {
		a, err := assessmentService.StartAssessment(c.UserContext(), c.Locals(middleware.LocalUserID).(string))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(a)
	})

	player.Get("/", func(c *fiber.Ctx) error {
		a, err := assessmentService.GetAssessment(c.UserContext(), c.Locals(middleware.LocalUserID).(string))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(a)
	})

	// multipart: exercise_type, video, upload_id (optional)
	player.Post("/submissions", func(c *fiber.Ctx) error {
		exercise := c.FormValue("exercise_type")
		if exercise == "" {
			return fail(c, fiber.StatusBadRequest, "invalid-exercise")
		}
		upload, f, err := formUpload(c, "video")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "file-required")
		}
		defer f.Close()

		sub, err := assessmentService.SubmitAssessmentVideo(c.UserContext(),
			c.Locals(middleware.LocalUserID).(string), exercise, *upload, c.FormValue("upload_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	// 🛡️ Admin scoring
	admin := app.Group("/admin/assessments", middleware.RequireAuth(sessions), middleware.RequireRole(models.RoleAdmin))

	admin.Get("/submissions", func(c *fiber.Ctx) error {
		page, size := pageParams(c)
		subs, total, err := assessmentService.PendingSubmissions(c.UserContext(), page, size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"submissions": subs, "total_items": total})
	})

	admin.Post("/submissions/:id/score", func(c *fiber.Ctx) error {
		var in scoreRequest
		if !parseBody(c, &in) {
			return nil
		}
		a, err := assessmentService.ScoreAssessmentSubmission(c.UserContext(),
			c.Locals(middleware.LocalUserID).(string), c.Params("id"), *in.Score)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(a)
	})
}
