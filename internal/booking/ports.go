// Package booking orchestrates the purchase saga: hold the requested
// seats, create a pending booking, await the payment provider's
// verdict, then finalize the seats or roll everything back.  It is the
// only package that talks to the external collaborators (catalog,
// persistence, payment, message queue); seat state itself is mutated
// exclusively through the inventory engine.
package booking

import (
	"context"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Catalog is the read-only view of the showtime catalog the
// coordinator needs: whether a showtime can still be booked.  Seat
// layouts and prices live in the inventory engine once a showtime is
// registered.
type Catalog interface {
	// Showtime returns the showtime record or repository.ErrShowtimeNotFound.
	Showtime(ctx context.Context, showtimeID uint64) (*model.Showtime, error)
}

// Store is the durable upsert store for booking records.  Bookings are
// derived audit state: the engine's seat map remains the source of
// truth for seat availability, so the store needs no transactional
// coupling to seat mutations.
type Store interface {
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// PaymentProvider is the opaque order-creation and verification
// interface.  The coordinator supplies an amount and only needs a
// confirm/deny back; refunds for failed confirmations are the
// provider's responsibility, not this package's.
type PaymentProvider interface {
	// CreateOrder opens a payment order for the amount and returns the
	// provider's order reference.
	CreateOrder(ctx context.Context, bookingID string, amountCents uint32) (string, error)
	// VerifyPayment checks a payment callback against the order.  A
	// false return with nil error means the payment was rejected.
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error)
}

// Publisher announces confirmed bookings to downstream consumers.
// Publish failures are logged and ignored; confirmation must not
// depend on the broker being up.
type Publisher interface {
	BookingConfirmed(ctx context.Context, b *model.Booking) error
}
