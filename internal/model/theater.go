package model

import "time"

// Theater is a venue with one or more screens.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – venue name shown to customers.
//	City      – city used for browsing and filtering.
//	Address   – street address.
//	IsActive  – soft-delete flag.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Theater struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Screen is one auditorium of a theater.  Its seat layout is the fixed
// grid of TheaterSeat rows that showtimes inherit.
type Screen struct {
	ID        uint64    `json:"id"`
	TheaterID uint64    `json:"theater_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TheaterSeat is one physical seat of a screen.  Class determines which
// showtime price applies (classic, premium or recliner).  IsActive
// marks seats removed from sale at the venue level.
type TheaterSeat struct {
	ID         uint64    `json:"id"`
	ScreenID   uint64    `json:"screen_id"`
	RowLabel   string    `json:"row_label"`
	SeatNumber uint32    `json:"seat_number"`
	Class      string    `json:"class"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
