package model

import "time"

// BookingStatus is the lifecycle state of a booking record.  A booking
// is pending from creation until the payment provider confirms it;
// cancellation, payment timeout or a hold that expired mid-payment are
// terminal failures.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingFailed    BookingStatus = "failed"
)

// BookingSeat is one seat purchased in a booking, captured with its
// label and price at booking time so the record stays meaningful even
// if the catalog changes later.
type BookingSeat struct {
	SeatID     uint64 `json:"seat_id"`
	Row        string `json:"row"`
	Number     uint32 `json:"number"`
	Class      string `json:"class"`
	PriceCents uint32 `json:"price_cents"`
}

// Booking records a user's purchase attempt for a showtime.  Seat state
// is owned by the inventory engine; the booking is derived and audit
// state persisted for listing, receipts and reconciliation.
//
// Fields:
//
//	ID                  – public booking identifier ("BMS..." format).
//	UserID              – purchasing user.
//	ShowtimeID          – showtime the seats belong to.
//	Seats               – seats with prices captured at booking time.
//	TotalAmountCents    – sum of seat prices.
//	ConvenienceFeeCents – platform fee added on top of the seat total.
//	TaxesCents          – taxes on the convenience fee.
//	FinalAmountCents    – total charged to the customer.
//	OrderID             – payment-provider order reference.
//	PaymentRef          – payment-provider payment reference, set on confirm.
//	Status              – pending, confirmed, cancelled or failed.
//	ContactEmail        – customer email for the ticket.
//	ContactPhone        – customer phone for the ticket.
//	HoldExpiresAt       – deadline by which payment must confirm.
//	CreatedAt           – creation timestamp.
//	UpdatedAt           – last update timestamp.
type Booking struct {
	ID                  string        `json:"id"`
	UserID              uint64        `json:"user_id"`
	ShowtimeID          uint64        `json:"showtime_id"`
	Seats               []BookingSeat `json:"seats"`
	TotalAmountCents    uint32        `json:"total_amount_cents"`
	ConvenienceFeeCents uint32        `json:"convenience_fee_cents"`
	TaxesCents          uint32        `json:"taxes_cents"`
	FinalAmountCents    uint32        `json:"final_amount_cents"`
	OrderID             string        `json:"order_id"`
	PaymentRef          *string       `json:"payment_ref,omitempty"`
	Status              BookingStatus `json:"status"`
	ContactEmail        string        `json:"contact_email"`
	ContactPhone        string        `json:"contact_phone"`
	HoldExpiresAt       time.Time     `json:"hold_expires_at"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// SeatIDs returns the IDs of the booked seats in order.
func (b *Booking) SeatIDs() []uint64 {
	ids := make([]uint64, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.SeatID)
	}
	return ids
}
