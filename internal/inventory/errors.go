package inventory

// This file defines the error values returned by the seat engine.
// Sentinels allow handlers to branch with errors.Is; the typed errors
// additionally carry the seat IDs that caused the failure so callers
// can report exactly which seats were at fault.

import (
	"errors"
	"fmt"
)

// ErrSeatUnavailable is returned when a seat cannot be claimed: it is
// booked, blocked, or held by another user whose hold has not expired.
// Handlers should translate this into an HTTP 409 response.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrHoldExpiredOrMissing is returned when a confirm is attempted on a
// seat the user does not hold, or whose hold has expired.
var ErrHoldExpiredOrMissing = errors.New("hold expired or missing")

// ErrInvalidSeatSelection is returned for unknown seat IDs, duplicated
// IDs or an empty selection.
var ErrInvalidSeatSelection = errors.New("invalid seat selection")

// ErrShowtimeNotFound is returned when an operation references a
// showtime that has not been registered with the engine.
var ErrShowtimeNotFound = errors.New("showtime not found")

// UnavailableSeatsError reports the seats that lost a claim race or are
// otherwise not claimable.  It matches ErrSeatUnavailable under errors.Is.
type UnavailableSeatsError struct {
	SeatIDs []uint64
}

func (e *UnavailableSeatsError) Error() string {
	return fmt.Sprintf("seats unavailable: %v", e.SeatIDs)
}

func (e *UnavailableSeatsError) Is(target error) bool { return target == ErrSeatUnavailable }

// HoldExpiredError reports the seats that failed an all-or-nothing
// confirm check.  It matches ErrHoldExpiredOrMissing under errors.Is.
type HoldExpiredError struct {
	SeatIDs []uint64
}

func (e *HoldExpiredError) Error() string {
	return fmt.Sprintf("hold expired or missing for seats: %v", e.SeatIDs)
}

func (e *HoldExpiredError) Is(target error) bool { return target == ErrHoldExpiredOrMissing }

// InvalidSelectionError reports a malformed seat selection along with
// the offending seat IDs, if any.  It matches ErrInvalidSeatSelection
// under errors.Is.
type InvalidSelectionError struct {
	SeatIDs []uint64
	Reason  string
}

func (e *InvalidSelectionError) Error() string {
	if len(e.SeatIDs) == 0 {
		return fmt.Sprintf("invalid seat selection: %s", e.Reason)
	}
	return fmt.Sprintf("invalid seat selection: %s: %v", e.Reason, e.SeatIDs)
}

func (e *InvalidSelectionError) Is(target error) bool { return target == ErrInvalidSeatSelection }
