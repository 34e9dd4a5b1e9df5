package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RegisterBooking registers the seat hold and booking endpoints under
// /v1.  All routes require a valid JWT with the USER or ADMIN role.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)

	// Interactive seat selection: hold seats while the user decides,
	// release them when they change their mind.
	g.POST("/showtimes/:id/holds", b.HoldSeats)
	g.DELETE("/showtimes/:id/holds", b.ReleaseSeats)

	// Booking lifecycle.
	g.POST("/bookings", b.CreateBooking)
	g.POST("/bookings/:id/payment", b.ConfirmPayment)
	g.POST("/bookings/:id/cancel", b.CancelBooking)
	g.GET("/bookings/:id", b.GetBooking)
	g.GET("/bookings", b.ListBookings)
}
