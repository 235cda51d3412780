package handlers

import (
	"scout-platform/middleware"
	"scout-platform/models"
	"scout-platform/services"

	"github.com/gofiber/fiber/v2"
)

type watchlistRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

func SetupScoutRoutes(app fiber.Router, sessions middleware.SessionValidator, scoutService *services.ScoutService) {
	// Player pages are open to every signed-in user; only scout views count.
	players := app.Group("/players", middleware.RequireAuth(sessions))

	players.Get("/", middleware.RequireRole(models.RoleScout, models.RoleAdmin), func(c *fiber.Ctx) error {
		page, size := pageParams(c)
		f := services.PlayerFilter{
			Query:        c.Query("q"),
			Position:     c.Query("position"),
			City:         c.Query("city"),
			MinLevel:     c.QueryInt("min_level"),
			MaxLevel:     c.QueryInt("max_level"),
			MinAge:       c.QueryInt("min_age"),
			MaxAge:       c.QueryInt("max_age"),
			AssessedOnly: queryBool(c, "assessed"),
			Sort:         c.Query("sort"),
			Page:         page,
			Size:         size,
		}
		res, err := scoutService.BrowsePlayers(c.UserContext(), f)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	players.Get("/:id", func(c *fiber.Ctx) error {
		details, err := scoutService.ViewPlayer(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(details)
	})

	// 👀 Watchlist
	watchlist := app.Group("/watchlist", middleware.RequireAuth(sessions), middleware.RequireRole(models.RoleScout))

	watchlist.Get("/", func(c *fiber.Ctx) error {
		items, err := scoutService.Watchlist(c.UserContext(), c.Locals(middleware.LocalUserID).(string))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	})

	watchlist.Post("/:playerId", func(c *fiber.Ctx) error {
		var in watchlistRequest
		if len(c.Body()) > 0 && !parseBody(c, &in) {
			return nil
		}
		entry, err := scoutService.AddToWatchlist(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("playerId"), in.Note)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	watchlist.Patch("/:playerId", func(c *fiber.Ctx) error {
		var in watchlistRequest
		if !parseBody(c, &in) {
			return nil
		}
		entry, err := scoutService.UpdateWatchlistNote(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("playerId"), in.Note)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entry)
	})

	watchlist.Delete("/:playerId", func(c *fiber.Ctx) error {
		if err := scoutService.RemoveFromWatchlist(c.UserContext(), c.Locals(middleware.LocalUserID).(string), c.Params("playerId")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
