package inventory

import (
	"sort"
	"sync"
	"time"
)

// showtimeState pairs one showtime's seat map with the mutex that
// serializes every mutation on it.  Different showtimes never contend
// with each other.
type showtimeState struct {
	mu sync.Mutex
	m  *SeatMap
}

// Engine is the hold manager.  It owns all registered seat maps and is
// the single entry point for mutating seat state.  Every operation on
// one showtime runs under that showtime's mutex, which is what
// guarantees that two users racing for the same seat are resolved with
// exactly one winner and that emitted events have a total order per
// showtime.
type Engine struct {
	mu        sync.RWMutex // guards the showtimes registry only
	showtimes map[uint64]*showtimeState
	notifier  Notifier
	now       func() time.Time
}

// NewEngine constructs an engine that emits seat events to the given
// notifier.  A nil notifier disables event emission.
func NewEngine(notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		showtimes: make(map[uint64]*showtimeState),
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the seat map for a showtime from its catalog layout.
// Registering an already-registered showtime is rejected so that a
// showtime's state can never be silently reset while holds exist.
func (e *Engine) Register(showtimeID uint64, layout []Seat) error {
	m, err := NewSeatMap(showtimeID, layout)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.showtimes[showtimeID]; exists {
		return &InvalidSelectionError{Reason: "showtime already registered"}
	}
	e.showtimes[showtimeID] = &showtimeState{m: m}
	return nil
}

// Unregister drops a showtime's seat map, e.g. after the show has
// started or was cancelled.  Pending holds are discarded with it.
func (e *Engine) Unregister(showtimeID uint64) {
	e.mu.Lock()
	delete(e.showtimes, showtimeID)
	e.mu.Unlock()
}

func (e *Engine) lookup(showtimeID uint64) (*showtimeState, error) {
	e.mu.RLock()
	st, ok := e.showtimes[showtimeID]
	e.mu.RUnlock()
	if !ok {
		return nil, ErrShowtimeNotFound
	}
	return st, nil
}

// AttemptHold claims a seat for holderID with the given TTL.  The claim
// succeeds when the seat is available, already held by the same holder
// (the TTL is extended), or held by another holder whose expiry has
// passed.  On success the seat becomes held and a seat event is
// emitted; otherwise ErrSeatUnavailable or ErrInvalidSeatSelection.
func (e *Engine) AttemptHold(showtimeID, seatID, holderID uint64, ttl time.Duration) error {
	st, err := e.lookup(showtimeID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.m.attemptHold(seatID, holderID, e.now(), ttl); err != nil {
		return err
	}
	e.notifier.Publish(showtimeID, SeatEvent{
		ShowtimeID: showtimeID, SeatID: seatID, NewState: StatusHeld, HolderID: holderID,
	})
	return nil
}

// ReleaseHold returns a seat held by holderID to available.  Releasing
// a seat the holder does not own is an idempotent no-op and emits
// nothing.
func (e *Engine) ReleaseHold(showtimeID, seatID, holderID uint64) error {
	st, err := e.lookup(showtimeID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.m.releaseHold(seatID, holderID) {
		e.notifier.Publish(showtimeID, SeatEvent{
			ShowtimeID: showtimeID, SeatID: seatID, NewState: StatusAvailable,
		})
	}
	return nil
}

// ConfirmBooking transitions all of seatIDs from held-by-holderID to
// booked in one atomic step.  If any seat fails the check the whole
// confirm fails with ErrHoldExpiredOrMissing naming the offending seats
// and no seat changes state.  On success one batched event per seat is
// emitted.
func (e *Engine) ConfirmBooking(showtimeID uint64, seatIDs []uint64, holderID uint64) error {
	if len(seatIDs) == 0 {
		return &InvalidSelectionError{Reason: "no seats selected"}
	}
	if dup := duplicateIDs(seatIDs); len(dup) > 0 {
		return &InvalidSelectionError{SeatIDs: dup, Reason: "duplicate seat ids"}
	}
	st, err := e.lookup(showtimeID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.m.confirmBooking(seatIDs, holderID, e.now()); err != nil {
		return err
	}
	events := make([]SeatEvent, 0, len(seatIDs))
	for _, id := range seatIDs {
		events = append(events, SeatEvent{
			ShowtimeID: showtimeID, SeatID: id, NewState: StatusBooked, HolderID: holderID,
		})
	}
	e.notifier.Publish(showtimeID, events...)
	return nil
}

// ExpireSeat reclaims one held seat whose expiry has passed and
// reports whether the seat actually changed state.  It is a no-op when
// the seat's state changed in the interim (confirmed, released or
// re-held).  Invoked by the sweeper.
func (e *Engine) ExpireSeat(showtimeID, seatID uint64) (bool, error) {
	st, err := e.lookup(showtimeID)
	if err != nil {
		return false, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.m.expireSeat(seatID, e.now()) {
		return false, nil
	}
	e.notifier.Publish(showtimeID, SeatEvent{
		ShowtimeID: showtimeID, SeatID: seatID, NewState: StatusAvailable,
	})
	return true, nil
}

// BlockSeat administratively disables an available seat, emitting a
// blocked event.  Seats that are held or booked cannot be blocked.
func (e *Engine) BlockSeat(showtimeID, seatID uint64) error {
	st, err := e.lookup(showtimeID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.m.blockSeat(seatID); err != nil {
		return err
	}
	e.notifier.Publish(showtimeID, SeatEvent{
		ShowtimeID: showtimeID, SeatID: seatID, NewState: StatusBlocked,
	})
	return nil
}

// UnblockSeat returns a blocked seat to available.
func (e *Engine) UnblockSeat(showtimeID, seatID uint64) error {
	st, err := e.lookup(showtimeID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.m.unblockSeat(seatID) {
		e.notifier.Publish(showtimeID, SeatEvent{
			ShowtimeID: showtimeID, SeatID: seatID, NewState: StatusAvailable,
		})
	}
	return nil
}

// Snapshot returns the full seat layout with current states plus the
// available-seat count.  It acquires the same per-showtime exclusion as
// the mutating operations, so it never observes a mutation mid-flight.
// Seats are ordered by row then number for stable output.
func (e *Engine) Snapshot(showtimeID uint64) ([]SeatView, int, error) {
	st, err := e.lookup(showtimeID)
	if err != nil {
		return nil, 0, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	views := st.m.snapshot()
	sort.Slice(views, func(i, j int) bool {
		if views[i].Seat.Row != views[j].Seat.Row {
			return views[i].Seat.Row < views[j].Seat.Row
		}
		return views[i].Seat.Number < views[j].Seat.Number
	})
	return views, st.m.AvailableCount(), nil
}

// SeatPrices returns the layout price of each requested seat.  Unknown
// seat IDs yield ErrInvalidSeatSelection.
func (e *Engine) SeatPrices(showtimeID uint64, seatIDs []uint64) (map[uint64]uint32, error) {
	st, err := e.lookup(showtimeID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[uint64]uint32, len(seatIDs))
	var unknown []uint64
	for _, id := range seatIDs {
		s, ok := st.m.Seat(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out[id] = s.PriceCents
	}
	if len(unknown) > 0 {
		return nil, &InvalidSelectionError{SeatIDs: unknown, Reason: "unknown seat"}
	}
	return out, nil
}

// registered returns a point-in-time list of registered showtime IDs.
func (e *Engine) registered() []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]uint64, 0, len(e.showtimes))
	for id := range e.showtimes {
		ids = append(ids, id)
	}
	return ids
}

// duplicateIDs returns the seat IDs that appear more than once.
func duplicateIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	var dup []uint64
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			dup = append(dup, id)
			continue
		}
		seen[id] = struct{}{}
	}
	return dup
}
