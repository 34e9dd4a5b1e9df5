package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// CatalogHandler serves the public browse endpoints and the admin
// catalog management endpoints.  Admin writes that change seat
// availability go through the inventory engine as well so live viewers
// see them immediately.
type CatalogHandler struct {
	Movies    *repository.MovieRepo
	Theaters  *repository.TheaterRepo
	Showtimes *repository.ShowtimeRepo
	Engine    *inventory.Engine
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(movies *repository.MovieRepo, theaters *repository.TheaterRepo, showtimes *repository.ShowtimeRepo, engine *inventory.Engine) *CatalogHandler {
	return &CatalogHandler{Movies: movies, Theaters: theaters, Showtimes: showtimes, Engine: engine}
}

// ListMovies handles GET /v1/movies.  The optional status query
// filters by movie status (upcoming, now_showing, ended).
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.ListActive(ctx, c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list movies"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
	}
	return c.JSON(http.StatusOK, movie)
}

// ListTheaters handles GET /v1/theaters.  The optional city query
// filters by city.
func (h *CatalogHandler) ListTheaters(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	theaters, err := h.Theaters.ListActive(ctx, c.QueryParam("city"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list theaters"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": theaters})
}

// ListShowtimes handles GET /v1/movies/:id/showtimes and returns the
// upcoming active showtimes for a movie.
func (h *CatalogHandler) ListShowtimes(c echo.Context) error {
	movieID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	showtimes, err := h.Showtimes.ListUpcoming(ctx, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list showtimes"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": showtimes})
}

// GetShowtime handles GET /v1/showtimes/:id.
func (h *CatalogHandler) GetShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	showtime, err := h.Showtimes.Showtime(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtime"})
	}
	return c.JSON(http.StatusOK, showtime)
}

// createMovieReq carries the admin payload for creating a movie.
type createMovieReq struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
	Languages     []string `json:"languages"`
	DurationMin   uint32   `json:"duration_min"`
	Certification string   `json:"certification"`
	ReleaseDate   string   `json:"release_date"`
	Formats       []string `json:"formats"`
	Status        string   `json:"status"`
}

// CreateMovie handles POST /v1/admin/movies.
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title == "" || len(req.Title) > 100 || req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and duration_min are required"})
	}
	release, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "release_date must be YYYY-MM-DD"})
	}
	status := req.Status
	if status == "" {
		status = model.MovieUpcoming
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movie := &model.Movie{
		Title:         req.Title,
		Description:   req.Description,
		Genres:        req.Genres,
		Languages:     req.Languages,
		DurationMin:   req.DurationMin,
		Certification: req.Certification,
		ReleaseDate:   release,
		Formats:       req.Formats,
		Status:        status,
		IsActive:      true,
	}
	id, err := h.Movies.Create(ctx, movie)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create movie"})
	}
	movie.ID = id
	return c.JSON(http.StatusCreated, movie)
}

// createTheaterReq carries the admin payload for creating a theater.
type createTheaterReq struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// CreateTheater handles POST /v1/admin/theaters.
func (h *CatalogHandler) CreateTheater(c echo.Context) error {
	var req createTheaterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and city are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	theater := &model.Theater{Name: req.Name, City: req.City, Address: req.Address, IsActive: true}
	id, err := h.Theaters.Create(ctx, theater)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create theater"})
	}
	theater.ID = id
	return c.JSON(http.StatusCreated, theater)
}

// screenSeatReq is one seat of a screen layout.
type screenSeatReq struct {
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	Class      string `json:"class"`
}

// createScreenReq carries the admin payload for creating a screen with
// its seat layout in one call.
type createScreenReq struct {
	Name  string          `json:"name"`
	Seats []screenSeatReq `json:"seats"`
}

var validSeatClasses = map[string]bool{
	string(inventory.ClassClassic):  true,
	string(inventory.ClassPremium):  true,
	string(inventory.ClassRecliner): true,
}

// CreateScreen handles POST /v1/admin/theaters/:id/screens.  It creates
// the screen and its full seat layout.
func (h *CatalogHandler) CreateScreen(c echo.Context) error {
	theaterID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	var req createScreenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and seats are required"})
	}
	seen := make(map[string]bool, len(req.Seats))
	seats := make([]model.TheaterSeat, 0, len(req.Seats))
	for _, s := range req.Seats {
		if s.RowLabel == "" || s.SeatNumber == 0 || !validSeatClasses[s.Class] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each seat needs row_label, seat_number and a valid class"})
		}
		key := fmt.Sprintf("%s-%d", s.RowLabel, s.SeatNumber)
		if seen[key] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate seat in layout"})
		}
		seen[key] = true
		seats = append(seats, model.TheaterSeat{
			RowLabel:   s.RowLabel,
			SeatNumber: s.SeatNumber,
			Class:      s.Class,
			IsActive:   true,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Theaters.GetByID(ctx, theaterID); err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load theater"})
	}
	screenID, err := h.Theaters.CreateScreen(ctx, theaterID, req.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create screen"})
	}
	if err := h.Theaters.CreateSeatsBulk(ctx, screenID, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create seats"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"screen_id":  screenID,
		"theater_id": theaterID,
		"name":       req.Name,
		"seat_count": len(seats),
	})
}

// createShowtimeReq carries the admin payload for scheduling a showtime.
type createShowtimeReq struct {
	MovieID            uint64 `json:"movie_id"`
	TheaterID          uint64 `json:"theater_id"`
	ScreenID           uint64 `json:"screen_id"`
	StartsAt           string `json:"starts_at"`
	Language           string `json:"language"`
	Format             string `json:"format"`
	PriceClassicCents  uint32 `json:"price_classic_cents"`
	PricePremiumCents  uint32 `json:"price_premium_cents"`
	PriceReclinerCents uint32 `json:"price_recliner_cents"`
}

// CreateShowtime handles POST /v1/admin/showtimes.  On success the
// showtime's seat layout is registered with the inventory engine so
// seats are sellable immediately.
func (h *CatalogHandler) CreateShowtime(c echo.Context) error {
	var req createShowtimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MovieID == 0 || req.TheaterID == 0 || req.ScreenID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, theater_id and screen_id are required"})
	}
	if req.PriceClassicCents == 0 || req.PricePremiumCents == 0 || req.PriceReclinerCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all class prices are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	if !startsAt.After(time.Now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Movies.GetByID(ctx, req.MovieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
	}

	showtime := &model.Showtime{
		MovieID:            req.MovieID,
		TheaterID:          req.TheaterID,
		ScreenID:           req.ScreenID,
		StartsAt:           startsAt.UTC(),
		Language:           req.Language,
		Format:             req.Format,
		PriceClassicCents:  req.PriceClassicCents,
		PricePremiumCents:  req.PricePremiumCents,
		PriceReclinerCents: req.PriceReclinerCents,
		Status:             model.ShowtimeScheduled,
		IsActive:           true,
	}
	id, err := h.Showtimes.Create(ctx, showtime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create showtime"})
	}
	showtime.ID = id

	layout, err := h.Showtimes.SeatLayout(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat layout"})
	}
	if err := h.Engine.Register(id, layout); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register showtime"})
	}
	return c.JSON(http.StatusCreated, showtime)
}

// CancelShowtime handles POST /v1/admin/showtimes/:id/cancel.  It marks
// the showtime cancelled and removes it from the inventory engine so no
// further holds or bookings are possible.
func (h *CatalogHandler) CancelShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Showtimes.UpdateStatus(ctx, id, model.ShowtimeCancelled); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel showtime"})
	}
	h.Engine.Unregister(id)
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": id, "status": model.ShowtimeCancelled})
}

// BlockSeat handles POST /v1/admin/showtimes/:id/seats/:seat_id/block.
// Only seats in the available state can be blocked.
func (h *CatalogHandler) BlockSeat(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	seatID, ok := pathID(c, "seat_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	if err := h.Engine.BlockSeat(showtimeID, seatID); err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": showtimeID, "seat_id": seatID, "state": inventory.StatusBlocked})
}

// UnblockSeat handles POST /v1/admin/showtimes/:id/seats/:seat_id/unblock.
func (h *CatalogHandler) UnblockSeat(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	seatID, ok := pathID(c, "seat_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	if err := h.Engine.UnblockSeat(showtimeID, seatID); err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": showtimeID, "seat_id": seatID, "state": inventory.StatusAvailable})
}
