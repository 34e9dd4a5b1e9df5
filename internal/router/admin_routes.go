package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RegisterAdmin registers ADMIN-scoped catalog management endpoints
// under /v1/admin.  All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, ch *handler.CatalogHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Movies ----
	g.POST("/movies", ch.CreateMovie)

	// ---- Theaters and screens ----
	g.POST("/theaters", ch.CreateTheater)
	g.POST("/theaters/:id/screens", ch.CreateScreen)

	// ---- Showtimes ----
	g.POST("/showtimes", ch.CreateShowtime)
	g.POST("/showtimes/:id/cancel", ch.CancelShowtime)

	// ---- Seat maintenance ----
	g.POST("/showtimes/:id/seats/:seat_id/block", ch.BlockSeat)
	g.POST("/showtimes/:id/seats/:seat_id/unblock", ch.UnblockSeat)
}
