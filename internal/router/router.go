package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, which load balancers and
// monitoring use to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes.  Register and
// login live under /v1/auth and need no token; /v1/me requires a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers the public browse endpoints.  These are
// unauthenticated and sit behind the response cache and rate limiter
// when those are enabled; mws is applied in order before the handlers.
func RegisterCatalog(e *echo.Echo, ch *handler.CatalogHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)
	g.GET("/movies", ch.ListMovies)
	g.GET("/movies/:id", ch.GetMovie)
	g.GET("/movies/:id/showtimes", ch.ListShowtimes)
	g.GET("/theaters", ch.ListTheaters)
	g.GET("/showtimes/:id", ch.GetShowtime)
}

// RegisterSeats registers the live seat endpoints.  The snapshot and
// the websocket event stream are public so guests can watch a seat map
// before logging in.  Neither goes through the response cache: seat
// state changes sub-second and stale data defeats the point.
func RegisterSeats(e *echo.Echo, sh *handler.SeatsHandler) {
	e.GET("/v1/showtimes/:id/seats", sh.Snapshot)
	e.GET("/v1/showtimes/:id/events", sh.Events)
}
