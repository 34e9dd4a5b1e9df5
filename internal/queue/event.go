// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// BookingConfirmedEvent is published when a booking is confirmed by the
// payment provider.  It carries enough context for downstream consumers
// to log, notify or feed analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID        string   `json:"booking_id"`
	UserID           uint64   `json:"user_id"`
	ShowtimeID       uint64   `json:"showtime_id"`
	MovieTitle       string   `json:"movie_title"`
	TheaterName      string   `json:"theater_name"`
	StartsAt         string   `json:"starts_at"`
	SeatLabels       []string `json:"seats"`
	FinalAmountCents uint32   `json:"final_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}
