package inventory

// SeatEvent describes one seat state change.  Events are produced in
// mutation order for each showtime and handed to the Notifier; viewers
// subscribed to the showtime receive them over their event stream.
//
// HolderID is zero when the new state has no owner (available, blocked).
type SeatEvent struct {
	ShowtimeID uint64     `json:"showtime_id"`
	SeatID     uint64     `json:"seat_id"`
	NewState   SeatStatus `json:"new_state"`
	HolderID   uint64     `json:"holder_id,omitempty"`
}

// Notifier receives seat state change events.  Publish is called while
// the per-showtime lock is held, so implementations must never block on
// network I/O: hand the event off to per-subscriber buffers and let
// delivery happen on other goroutines.
type Notifier interface {
	Publish(showtimeID uint64, events ...SeatEvent)
}

// NopNotifier discards all events.  Useful in tests and as a default.
type NopNotifier struct{}

func (NopNotifier) Publish(uint64, ...SeatEvent) {}
