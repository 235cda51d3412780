package handlers

import (
	"scout-platform/middleware"
	"scout-platform/models"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCategoryRoutes(app fiber.Router, sessions middleware.SessionValidator, categoryService *services.CategoryService) {
	// 🔓 Public
	app.Get("/categories", func(c *fiber.Ctx) error {
		cats, err := categoryService.List(c.UserContext(), c.Query("kind"), false)
		if err != nil {
			return respondError(c, err)
		}
		lang := middleware.Lang(c)
		out := make([]fiber.Map, len(cats))
		for i, cat := range cats {
			out[i] = fiber.Map{
				"id":         cat.ID,
				"kind":       cat.Kind,
				"slug":       cat.Slug,
				"name":       cat.Name(lang),
				"name_he":    cat.NameHe,
				"name_en":    cat.NameEn,
				"sort_order": cat.SortOrder,
			}
		}
		return c.JSON(out)
	})

	// 🛡️ Admin
	admin := app.Group("/admin/categories", middleware.RequireAuth(sessions), middleware.RequireRole(models.RoleAdmin))

	admin.Get("/", func(c *fiber.Ctx) error {
		cats, err := categoryService.List(c.UserContext(), c.Query("kind"), true)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cats)
	})

	admin.Post("/", func(c *fiber.Ctx) error {
		var in services.CategoryInput
		if !parseBody(c, &in) {
			return nil
		}
		cat, err := categoryService.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	})

	admin.Put("/:id", func(c *fiber.Ctx) error {
		var in services.CategoryInput
		if !parseBody(c, &in) {
			return nil
		}
		cat, err := categoryService.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cat)
	})

	admin.Delete("/:id", func(c *fiber.Ctx) error {
		if err := categoryService.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
