package handlers

import (
	"scout-platform/middleware"
	"scout-platform/models"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
)

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func SetupVideoRoutes(app fiber.Router, sessions middleware.SessionValidator, videoService *services.VideoService) {
	// 🔓 Public feed; a signed-in owner/admin also sees unapproved videos
	public := app.Group("/videos", middleware.OptionalAuth(sessions))

	public.Get("/", func(c *fiber.Ctx) error {
		page, size := pageParams(c)
		f := services.VideoFilter{
			ExerciseType: c.Query("exercise_type"),
			AgeGroup:     c.Query("age_group"),
			Position:     c.Query("position"),
			OwnerID:      c.Query("owner_id"),
			Status:       c.Query("status"),
			Sort:         c.Query("sort"),
			Page:         page,
			Size:         size,
		}
		res, err := videoService.List(c.UserContext(), f, middleware.CurrentUser(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	public.Get("/uploads/:uploadId/progress", func(c *fiber.Ctx) error {
		pct, err := videoService.UploadProgress(c.UserContext(), c.Params("uploadId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"upload_id": c.Params("uploadId"), "percent": pct})
	})

	public.Get("/:id", func(c *fiber.Ctx) error {
		v, err := videoService.Get(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	})

	public.Get("/:id/download", func(c *fiber.Ctx) error {
		url, err := videoService.DownloadURL(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	})

	// 🔐 Secured; registered after the public routes so they stay anonymous
	secured := app.Group("/videos", middleware.RequireAuth(sessions))

	// multipart: video, thumbnail (optional), title, description, exercise_type, age_group, position, upload_id
	secured.Post("/", middleware.RequireRole(models.RolePlayer), func(c *fiber.Ctx) error {
		upload, f, err := formUpload(c, "video")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "file-required")
		}
		defer f.Close()

		var thumb *services.Upload
		if t, tf, err := formUpload(c, "thumbnail"); err == nil {
			defer tf.Close()
			thumb = t
		}

		var meta services.VideoMeta
		if err := c.BodyParser(&meta); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid-json")
		}
		v, err := videoService.Upload(c.UserContext(), c.Locals(middleware.LocalUserID).(string), meta, *upload, thumb)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	})

	secured.Post("/:id/like", func(c *fiber.Ctx) error {
		v, err := videoService.Like(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	})

	secured.Delete("/:id/like", func(c *fiber.Ctx) error {
		v, err := videoService.Unlike(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	})

	secured.Delete("/:id", func(c *fiber.Ctx) error {
		if err := videoService.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// 🛡️ Moderation
	admin := app.Group("/admin/videos", middleware.RequireAuth(sessions), middleware.RequireRole(models.RoleAdmin))

	admin.Get("/pending", func(c *fiber.Ctx) error {
		page, size := pageParams(c)
		res, err := videoService.ListPending(c.UserContext(), page, size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	admin.Post("/:id/approve", func(c *fiber.Ctx) error {
		v, err := videoService.Approve(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	})

	admin.Post("/:id/reject", func(c *fiber.Ctx) error {
		var in rejectRequest
		if !parseBody(c, &in) {
			return nil
		}
		v, err := videoService.Reject(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("id"), in.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	})

	admin.Put("/:id/categories", func(c *fiber.Ctx) error {
		var in services.VideoCategories
		if !parseBody(c, &in) {
			return nil
		}
		v, err := videoService.Recategorize(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	})
}
