package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Coordinator errors surfaced to handlers alongside the inventory
// sentinels.
var (
	// ErrShowtimeNotBookable is returned when the showtime is cancelled,
	// inactive or already started.
	ErrShowtimeNotBookable = errors.New("showtime not bookable")
	// ErrBookingNotPending is returned when a confirm or cancel targets
	// a booking that has already reached a terminal state.
	ErrBookingNotPending = errors.New("booking is not pending")
	// ErrForbidden is returned when a user operates on a booking owned
	// by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrPaymentRejected is returned when the provider denies the payment.
	ErrPaymentRejected = errors.New("payment rejected")
	// ErrSeatsNoLongerAvailable is returned when the holds expired while
	// the payment was in flight; the payment must be refunded by the
	// provider, not by this service.
	ErrSeatsNoLongerAvailable = errors.New("seats no longer available")
)

// Fee policy applied by the plumbing on top of the catalog seat prices.
// The engine itself never computes money.
const (
	convenienceFeePct = 5  // percent of the seat total
	feeTaxPct         = 18 // percent tax on the convenience fee
)

// Contact carries the customer details attached to the ticket.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Coordinator runs the booking saga against the inventory engine and
// the external collaborators.  One coordinator serves all showtimes.
type Coordinator struct {
	engine   *inventory.Engine
	catalog  Catalog
	store    Store
	payments PaymentProvider
	pub      Publisher
	holdTTL  time.Duration
	now      func() time.Time
}

// NewCoordinator wires the saga's dependencies.  pub may be nil when no
// message broker is configured.
func NewCoordinator(engine *inventory.Engine, catalog Catalog, store Store, payments PaymentProvider, pub Publisher, holdTTL time.Duration) *Coordinator {
	if engine == nil || catalog == nil || store == nil || payments == nil {
		panic("nil dependency passed to NewCoordinator")
	}
	if holdTTL <= 0 {
		holdTTL = 5 * time.Minute
	}
	return &Coordinator{
		engine:   engine,
		catalog:  catalog,
		store:    store,
		payments: payments,
		pub:      pub,
		holdTTL:  holdTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// HoldTTL returns the configured hold lifetime.
func (co *Coordinator) HoldTTL() time.Duration { return co.holdTTL }

// Create starts the saga: it validates the request, holds every
// requested seat, opens a payment order and persists a pending booking
// whose deadline equals the hold TTL.  If any seat cannot be held, all
// holds acquired in this attempt are released and the error names the
// unavailable seats.  Any later failure also releases the holds; the
// saga never leaves partial holds behind.
func (co *Coordinator) Create(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64, contact Contact) (*model.Booking, error) {
	if len(seatIDs) == 0 {
		return nil, &inventory.InvalidSelectionError{Reason: "no seats selected"}
	}
	if len(seatIDs) > 10 {
		return nil, &inventory.InvalidSelectionError{Reason: "at most 10 seats per booking"}
	}
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if _, dup := seen[id]; dup {
			return nil, &inventory.InvalidSelectionError{SeatIDs: []uint64{id}, Reason: "duplicate seat ids"}
		}
		seen[id] = struct{}{}
	}

	show, err := co.catalog.Showtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if !show.Bookable(co.now()) {
		return nil, ErrShowtimeNotBookable
	}

	// Hold each seat; on the first failure release what we already
	// acquired in this attempt and report the unavailable seats.
	var held []uint64
	release := func() {
		for _, id := range held {
			if rerr := co.engine.ReleaseHold(showtimeID, id, userID); rerr != nil {
				log.Printf("booking: release of seat %d on showtime %d failed: %v", id, showtimeID, rerr)
			}
		}
	}
	var unavailable []uint64
	for _, id := range seatIDs {
		if err := co.engine.AttemptHold(showtimeID, id, userID, co.holdTTL); err != nil {
			if errors.Is(err, inventory.ErrSeatUnavailable) {
				unavailable = append(unavailable, id)
				continue
			}
			release()
			return nil, err
		}
		held = append(held, id)
	}
	if len(unavailable) > 0 {
		release()
		return nil, &inventory.UnavailableSeatsError{SeatIDs: unavailable}
	}

	// From here on every failure path must release the holds.
	committed := false
	defer func() {
		if !committed {
			release()
		}
	}()

	seats, total, err := co.pricedSeats(showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}
	fee := total * convenienceFeePct / 100
	taxes := fee * feeTaxPct / 100

	b := &model.Booking{
		ID:                  newBookingID(co.now()),
		UserID:              userID,
		ShowtimeID:          showtimeID,
		Seats:               seats,
		TotalAmountCents:    total,
		ConvenienceFeeCents: fee,
		TaxesCents:          taxes,
		FinalAmountCents:    total + fee + taxes,
		Status:              model.BookingPending,
		ContactEmail:        contact.Email,
		ContactPhone:        contact.Phone,
		HoldExpiresAt:       co.now().Add(co.holdTTL),
	}

	orderID, err := co.payments.CreateOrder(ctx, b.ID, b.FinalAmountCents)
	if err != nil {
		return nil, fmt.Errorf("create payment order: %w", err)
	}
	b.OrderID = orderID

	if err := co.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("persist booking: %w", err)
	}
	committed = true
	return b, nil
}

// ConfirmPayment completes the saga after the provider reports a
// payment.  The signature is verified first; then the seats are
// confirmed through the engine's all-or-nothing check, the single
// chokepoint that makes double selling impossible.  A confirm that
// fails because the holds expired marks the booking failed and reports
// ErrSeatsNoLongerAvailable; voiding the charge is the provider's job.
func (co *Coordinator) ConfirmPayment(ctx context.Context, userID uint64, bookingID, paymentID, signature string) (*model.Booking, error) {
	b, err := co.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status != model.BookingPending {
		return nil, ErrBookingNotPending
	}

	ok, err := co.payments.VerifyPayment(ctx, b.OrderID, paymentID, signature)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !ok {
		return nil, ErrPaymentRejected
	}

	if err := co.engine.ConfirmBooking(b.ShowtimeID, b.SeatIDs(), b.UserID); err != nil {
		if errors.Is(err, inventory.ErrHoldExpiredOrMissing) {
			b.Status = model.BookingFailed
			if uerr := co.store.Update(ctx, b); uerr != nil {
				log.Printf("booking: marking %s failed: %v", b.ID, uerr)
			}
			return nil, ErrSeatsNoLongerAvailable
		}
		return nil, err
	}

	b.Status = model.BookingConfirmed
	b.PaymentRef = &paymentID
	if err := co.store.Update(ctx, b); err != nil {
		// Seats are booked; the record is repaired on the next read path
		// rather than un-booking sold seats.
		log.Printf("booking: confirmed %s but update failed: %v", b.ID, err)
	}

	if co.pub != nil {
		if perr := co.pub.BookingConfirmed(ctx, b); perr != nil {
			log.Printf("booking: publish confirmed event for %s failed: %v", b.ID, perr)
		}
	}
	return b, nil
}

// Cancel abandons a pending booking: every held seat is released and
// the record is marked cancelled.  Cancelling is idempotent from the
// seat engine's point of view: seats already expired or re-held by
// someone else are left untouched.
func (co *Coordinator) Cancel(ctx context.Context, userID uint64, bookingID string) (*model.Booking, error) {
	b, err := co.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status != model.BookingPending {
		return nil, ErrBookingNotPending
	}

	for _, id := range b.SeatIDs() {
		if rerr := co.engine.ReleaseHold(b.ShowtimeID, id, b.UserID); rerr != nil {
			log.Printf("booking: cancel %s: release seat %d failed: %v", b.ID, id, rerr)
		}
	}
	b.Status = model.BookingCancelled
	if err := co.store.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns one of the user's bookings.
func (co *Coordinator) Get(ctx context.Context, userID uint64, bookingID string) (*model.Booking, error) {
	b, err := co.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

// ListForUser returns the user's bookings, newest first.
func (co *Coordinator) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return co.store.ListByUser(ctx, userID)
}

// pricedSeats resolves the layout entry and price of every requested
// seat from the engine's registered layout.
func (co *Coordinator) pricedSeats(showtimeID uint64, seatIDs []uint64) ([]model.BookingSeat, uint32, error) {
	views, _, err := co.engine.Snapshot(showtimeID)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uint64]inventory.Seat, len(views))
	for _, v := range views {
		byID[v.Seat.ID] = v.Seat
	}
	seats := make([]model.BookingSeat, 0, len(seatIDs))
	total := uint32(0)
	for _, id := range seatIDs {
		s, ok := byID[id]
		if !ok {
			return nil, 0, &inventory.InvalidSelectionError{SeatIDs: []uint64{id}, Reason: "unknown seat"}
		}
		seats = append(seats, model.BookingSeat{
			SeatID:     s.ID,
			Row:        s.Row,
			Number:     s.Number,
			Class:      string(s.Class),
			PriceCents: s.PriceCents,
		})
		total += s.PriceCents
	}
	return seats, total, nil
}

// newBookingID builds a public booking identifier: "BMS", the last six
// digits of the unix-millisecond timestamp, then six random base36
// characters, matching the ticket numbers customers already know.
func newBookingID(now time.Time) string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for ID generation.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return "BMS" + ts + string(buf)
}
