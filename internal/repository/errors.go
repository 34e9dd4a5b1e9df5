// Package repository implements data access to MySQL for the catalog
// (movies, theaters, screens, seats, showtimes), users and booking
// records.  Sentinel errors defined here let handlers distinguish
// failure scenarios with errors.Is and map them to HTTP statuses.
package repository

import "errors"

// ErrMovieNotFound is returned when no active movie matches the id.
var ErrMovieNotFound = errors.New("movie not found")

// ErrTheaterNotFound is returned when no active theater matches the id.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrShowtimeNotFound is returned when no showtime matches the id.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrBookingNotFound is returned when no booking matches the id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.  Handlers should translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
