package handlers

import (
	"context"
	"time"

	"scout-platform/metrics"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupHealthRoutes(app fiber.Router, db *gorm.DB, cache *services.CacheService) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{"database": "ok", "cache": "disabled"}
		code := fiber.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status["database"] = err.Error()
			code = fiber.StatusServiceUnavailable
		}
		if cache.Enabled() {
			if err := cache.Ping(ctx); err != nil {
				status["cache"] = err.Error()
			} else {
				status["cache"] = "ok"
			}
		}
		return c.Status(code).JSON(status)
	})

	app.Get("/metrics", metrics.Handler())
}
