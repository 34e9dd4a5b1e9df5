package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// BookingHandler exposes seat holds and the booking saga over HTTP.
// Interactive seat selection uses the hold/release endpoints directly;
// creating a booking re-holds the same seats (idempotent for the same
// user, extending the TTL) and opens the payment order.
type BookingHandler struct {
	Engine      *inventory.Engine
	Coordinator *booking.Coordinator
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(engine *inventory.Engine, co *booking.Coordinator) *BookingHandler {
	if engine == nil || co == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Coordinator: co}
}

// seatError maps an inventory/booking error to an HTTP response.  The
// typed errors carry the offending seat IDs which are included so the
// client can highlight exactly the seats at fault.
func seatError(c echo.Context, err error) error {
	var unavailable *inventory.UnavailableSeatsError
	if errors.As(err, &unavailable) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable.SeatIDs,
		})
	}
	var stale *inventory.HoldExpiredError
	if errors.As(err, &stale) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "hold expired or missing",
			"seats": stale.SeatIDs,
		})
	}
	var invalid *inventory.InvalidSelectionError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": invalid.Error(),
		})
	}
	switch {
	case errors.Is(err, inventory.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable"})
	case errors.Is(err, inventory.ErrShowtimeNotFound), errors.Is(err, repository.ErrShowtimeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	case errors.Is(err, booking.ErrShowtimeNotBookable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "showtime not bookable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// HoldSeats handles POST /v1/showtimes/:id/holds.  The body carries a
// "seat_ids" array; each seat is claimed for the configured hold TTL.
// All-or-nothing: if any seat cannot be claimed, seats held in this
// request are released and the unavailable ones are reported.
func (h *BookingHandler) HoldSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}

	ttl := h.Coordinator.HoldTTL()
	var held []uint64
	for _, seatID := range body.SeatIDs {
		if err := h.Engine.AttemptHold(showtimeID, seatID, userID, ttl); err != nil {
			for _, id := range held {
				_ = h.Engine.ReleaseHold(showtimeID, id, userID)
			}
			return seatError(c, err)
		}
		held = append(held, seatID)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"seat_ids":    held,
		"ttl_seconds": int(ttl.Seconds()),
	})
}

// ReleaseSeats handles DELETE /v1/showtimes/:id/holds.  It releases the
// listed seats held by the current user; seats the user does not hold
// are skipped silently (release is idempotent).
func (h *BookingHandler) ReleaseSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	for _, seatID := range body.SeatIDs {
		if err := h.Engine.ReleaseHold(showtimeID, seatID, userID); err != nil {
			return seatError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"released": len(body.SeatIDs)})
}

// CreateBooking handles POST /v1/bookings.  It runs the first half of
// the saga: hold the seats, price them, open a payment order and
// persist a pending booking.  The response carries the order reference
// the client passes to the payment provider.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ShowtimeID uint64          `json:"showtime_id"`
		SeatIDs    []uint64        `json:"seat_ids"`
		Contact    booking.Contact `json:"contact"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowtimeID == 0 || len(body.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id and seat_ids are required"})
	}
	if body.Contact.Email == "" || body.Contact.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contact email and phone are required"})
	}

	b, err := h.Coordinator.Create(c.Request().Context(), userID, body.ShowtimeID, body.SeatIDs, body.Contact)
	if err != nil {
		return seatError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// ConfirmPayment handles POST /v1/bookings/:id/payment.  The body
// carries the provider callback (payment id and signature).  On
// success the seats become booked and the booking is confirmed; a hold
// that expired mid-payment yields 409 and the booking is marked failed.
func (h *BookingHandler) ConfirmPayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := c.Param("id")
	var body struct {
		PaymentID string `json:"payment_id"`
		Signature string `json:"signature"`
	}
	if err := c.Bind(&body); err != nil || body.PaymentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_id and signature are required"})
	}

	b, err := h.Coordinator.ConfirmPayment(c.Request().Context(), userID, bookingID, body.PaymentID, body.Signature)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, booking.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, booking.ErrBookingNotPending):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
		case errors.Is(err, booking.ErrPaymentRejected):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment rejected"})
		case errors.Is(err, booking.ErrSeatsNoLongerAvailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seats no longer available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  It releases the
// held seats and marks the booking cancelled.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	b, err := h.Coordinator.Cancel(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, booking.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, booking.ErrBookingNotPending):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// GetBooking handles GET /v1/bookings/:id for the booking's owner.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	b, err := h.Coordinator.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) || errors.Is(err, booking.ErrForbidden) {
			// Hide other users' bookings behind 404.
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// ListBookings handles GET /v1/bookings and returns the user's
// bookings, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Coordinator.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
