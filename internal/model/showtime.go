package model

import "time"

// Showtime schedules a movie on a screen at a given time with pricing
// per seat class.  Seat-level state for a showtime lives in the
// inventory engine, not the database; this record only carries the
// catalog facts the engine and the browse endpoints need.
//
// Fields:
//
//	ID                 – primary key identifier.
//	MovieID            – scheduled movie.
//	TheaterID          – owning theater.
//	ScreenID           – screen whose seat layout this showtime uses.
//	StartsAt           – scheduled start, UTC.
//	Language           – audio language of this screening.
//	Format             – projection format (2D, 3D, 4DX, IMAX, MX4D).
//	PriceClassicCents  – price for classic seats.
//	PricePremiumCents  – price for premium seats.
//	PriceReclinerCents – price for recliner seats.
//	Status             – scheduled, ongoing, completed or cancelled.
//	IsActive           – soft-delete flag.
//	CreatedAt          – creation timestamp.
//	UpdatedAt          – last update timestamp.
type Showtime struct {
	ID                 uint64    `json:"id"`
	MovieID            uint64    `json:"movie_id"`
	TheaterID          uint64    `json:"theater_id"`
	ScreenID           uint64    `json:"screen_id"`
	StartsAt           time.Time `json:"starts_at"`
	Language           string    `json:"language"`
	Format             string    `json:"format"`
	PriceClassicCents  uint32    `json:"price_classic_cents"`
	PricePremiumCents  uint32    `json:"price_premium_cents"`
	PriceReclinerCents uint32    `json:"price_recliner_cents"`
	Status             string    `json:"status"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Showtime status values.
const (
	ShowtimeScheduled = "scheduled"
	ShowtimeOngoing   = "ongoing"
	ShowtimeCompleted = "completed"
	ShowtimeCancelled = "cancelled"
)

// Bookable reports whether customers may hold and book seats for this
// showtime: it must be active, still scheduled and not yet started.
func (s *Showtime) Bookable(now time.Time) bool {
	return s.IsActive && s.Status == ShowtimeScheduled && s.StartsAt.After(now)
}
