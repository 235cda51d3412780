package handlers

import (
	"bufio"
	"context"

	"scout-platform/middleware"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func SetupNotificationRoutes(app fiber.Router, sessions middleware.SessionValidator, notificationService *services.NotificationService) {
	// 📡 SSE; EventSource passes the token as ?token=
	app.Get("/notifications/stream", middleware.SSEAuthMiddleware(sessions), func(c *fiber.Ctx) error {
		userID := c.Locals(middleware.LocalUserID).(string)

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // nginx

		reqCtx := c.Context()
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				select {
				case <-reqCtx.Done():
					cancel()
				case <-ctx.Done():
				}
			}()
			notificationService.Stream(ctx, userID, w)
			log.Debug().Str("user_id", userID).Msg("[SSE] stream closed")
		})
		return nil
	})

	secured := app.Group("/notifications", middleware.RequireAuth(sessions))

	secured.Get("/", func(c *fiber.Ctx) error {
		page, size := pageParams(c)
		res, err := notificationService.List(c.UserContext(), c.Locals(middleware.LocalUserID).(string), queryBool(c, "unread"), page, size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	secured.Post("/read-all", func(c *fiber.Ctx) error {
		n, err := notificationService.MarkAllRead(c.UserContext(), c.Locals(middleware.LocalUserID).(string))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"updated": n})
	})

	secured.Post("/:id/read", func(c *fiber.Ctx) error {
		if err := notificationService.MarkRead(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
