package model

import "time"

// Movie describes a film available for scheduling.  Genres, languages
// and formats are stored as comma-separated lists in the database and
// exposed as slices here.
//
// Fields:
//
//	ID            – primary key identifier.
//	Title         – display title, at most 100 characters.
//	Description   – synopsis shown on the movie page.
//	Genres        – one or more of the fixed genre set (Action, Drama, ...).
//	Languages     – audio languages the movie is screened in.
//	DurationMin   – running time in minutes.
//	Certification – age certification (U, U/A, A, S).
//	ReleaseDate   – theatrical release date.
//	Formats       – projection formats (2D, 3D, 4DX, IMAX, MX4D).
//	Status        – upcoming, now_showing or ended.
//	IsActive      – soft-delete flag.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Movie struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Genres        []string  `json:"genres"`
	Languages     []string  `json:"languages"`
	DurationMin   uint32    `json:"duration_min"`
	Certification string    `json:"certification"`
	ReleaseDate   time.Time `json:"release_date"`
	Formats       []string  `json:"formats"`
	Status        string    `json:"status"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Movie status values.
const (
	MovieUpcoming   = "upcoming"
	MovieNowShowing = "now_showing"
	MovieEnded      = "ended"
)
