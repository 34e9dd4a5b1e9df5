// Package inventory implements the seat inventory and hold engine: the
// per-showtime record of seat states, the serialized operations that
// mutate it (hold, release, confirm, expire), and the periodic sweeper
// that reclaims abandoned holds.  All mutations for one showtime run
// under a per-showtime mutex so that two users racing for the same seat
// are resolved deterministically: exactly one wins.
package inventory

import (
	"fmt"
	"log"
	"time"
)

// SeatStatus is the lifecycle state of a single seat within a showtime.
//
// Values:
//
//	StatusAvailable – the seat can be claimed by any user.
//	StatusHeld      – temporarily claimed by one user; expires automatically.
//	StatusBooked    – sold; terminal for the showtime.
//	StatusBlocked   – administratively disabled (e.g. maintenance).
type SeatStatus string

const (
	StatusAvailable SeatStatus = "available"
	StatusHeld      SeatStatus = "held"
	StatusBooked    SeatStatus = "booked"
	StatusBlocked   SeatStatus = "blocked"
)

// SeatClass categorises seats for pricing.  The set mirrors the seat
// types offered by theaters in the catalog.
type SeatClass string

const (
	ClassClassic  SeatClass = "classic"
	ClassPremium  SeatClass = "premium"
	ClassRecliner SeatClass = "recliner"
)

// Seat is one seat of a showtime's immutable layout.  The layout is
// loaded once from the catalog when the showtime is registered with the
// engine and never changes afterwards; only the seat's state does.
//
// Fields:
//
//	ID         – seat identifier, unique within the showtime.
//	Row        – row label such as "A" or "AB".
//	Number     – seat number within the row.
//	Class      – seat class used for pricing.
//	PriceCents – price of this seat for the owning showtime.
type Seat struct {
	ID         uint64    `json:"id"`
	Row        string    `json:"row"`
	Number     uint32    `json:"number"`
	Class      SeatClass `json:"class"`
	PriceCents uint32    `json:"price_cents"`
}

// seatState is the mutable per-seat record.  holderID and expiresAt are
// meaningful only while status is StatusHeld; holderID alone remains
// meaningful for StatusBooked.
type seatState struct {
	status    SeatStatus
	holderID  uint64
	expiresAt time.Time
}

// SeatView is a read-only snapshot of one seat combined with its current
// state.  ExpiresAt is zero unless the seat is held.
type SeatView struct {
	Seat      Seat       `json:"seat"`
	Status    SeatStatus `json:"status"`
	HolderID  uint64     `json:"holder_id,omitempty"`
	ExpiresAt time.Time  `json:"expires_at,omitzero"`
}

// SeatMap tracks the state of every seat for one showtime.  It is pure
// data: it performs no locking, no I/O and emits no events.  The Engine
// owns exclusive mutation rights and serializes all calls, so methods
// here assume single-writer access.
type SeatMap struct {
	showtimeID uint64
	seats      map[uint64]Seat
	states     map[uint64]seatState
	available  int
}

// NewSeatMap builds a seat map from a showtime's layout.  Every seat
// starts out available.  A duplicate seat ID in the layout is rejected
// because it would make per-seat state ambiguous.
func NewSeatMap(showtimeID uint64, layout []Seat) (*SeatMap, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("showtime %d: empty seat layout", showtimeID)
	}
	m := &SeatMap{
		showtimeID: showtimeID,
		seats:      make(map[uint64]Seat, len(layout)),
		states:     make(map[uint64]seatState, len(layout)),
	}
	for _, s := range layout {
		if _, dup := m.seats[s.ID]; dup {
			return nil, fmt.Errorf("showtime %d: duplicate seat id %d in layout", showtimeID, s.ID)
		}
		m.seats[s.ID] = s
		m.states[s.ID] = seatState{status: StatusAvailable}
	}
	m.available = len(layout)
	return m, nil
}

// ShowtimeID returns the owning showtime's identifier.
func (m *SeatMap) ShowtimeID() uint64 { return m.showtimeID }

// AvailableCount returns the cached number of available seats.
func (m *SeatMap) AvailableCount() int { return m.available }

// Seat returns the immutable layout entry for a seat ID.
func (m *SeatMap) Seat(seatID uint64) (Seat, bool) {
	s, ok := m.seats[seatID]
	return s, ok
}

// attemptHold transitions a seat to held under holderID.  The claim
// succeeds when the seat is available, already held by the same holder
// (re-hold extends the TTL), or held by another holder whose expiry has
// passed.  The expiry check and the claim are one step, so correctness
// never depends on the sweeper having run.
func (m *SeatMap) attemptHold(seatID, holderID uint64, now time.Time, ttl time.Duration) error {
	st, ok := m.states[seatID]
	if !ok {
		return &InvalidSelectionError{SeatIDs: []uint64{seatID}, Reason: "unknown seat"}
	}
	switch st.status {
	case StatusAvailable:
		m.states[seatID] = seatState{status: StatusHeld, holderID: holderID, expiresAt: now.Add(ttl)}
		m.available--
		return nil
	case StatusHeld:
		if st.holderID == holderID || !st.expiresAt.After(now) {
			// Re-hold by the owner, or claim of an expired foreign hold.
			m.states[seatID] = seatState{status: StatusHeld, holderID: holderID, expiresAt: now.Add(ttl)}
			return nil
		}
		return &UnavailableSeatsError{SeatIDs: []uint64{seatID}}
	default: // booked or blocked
		return &UnavailableSeatsError{SeatIDs: []uint64{seatID}}
	}
}

// releaseHold returns a seat held by holderID to available.  It reports
// whether a state change happened; releasing a seat not held by this
// holder is an idempotent no-op.
func (m *SeatMap) releaseHold(seatID, holderID uint64) bool {
	st, ok := m.states[seatID]
	if !ok || st.status != StatusHeld || st.holderID != holderID {
		return false
	}
	m.states[seatID] = seatState{status: StatusAvailable}
	m.available++
	return true
}

// confirmBooking transitions all of seatIDs from held-by-holderID to
// booked.  The check is all-or-nothing: if any seat is not held by this
// holder or its hold has expired, nothing is committed and the error
// names the offending seats.
func (m *SeatMap) confirmBooking(seatIDs []uint64, holderID uint64, now time.Time) error {
	var stale []uint64
	for _, id := range seatIDs {
		st, ok := m.states[id]
		if !ok || st.status != StatusHeld || st.holderID != holderID || !st.expiresAt.After(now) {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		return &HoldExpiredError{SeatIDs: stale}
	}
	for _, id := range seatIDs {
		m.states[id] = seatState{status: StatusBooked, holderID: holderID}
	}
	// No available-count change: held seats were already excluded.
	return nil
}

// expireSeat reclaims a held seat whose expiry has passed.  A seat that
// was confirmed, released or re-held in the interim is skipped.
func (m *SeatMap) expireSeat(seatID uint64, now time.Time) bool {
	st, ok := m.states[seatID]
	if !ok || st.status != StatusHeld || st.expiresAt.After(now) {
		return false
	}
	m.states[seatID] = seatState{status: StatusAvailable}
	m.available++
	return true
}

// blockSeat administratively disables an available seat.  Held and
// booked seats cannot be blocked out from under their owner.
func (m *SeatMap) blockSeat(seatID uint64) error {
	st, ok := m.states[seatID]
	if !ok {
		return &InvalidSelectionError{SeatIDs: []uint64{seatID}, Reason: "unknown seat"}
	}
	if st.status != StatusAvailable {
		return &UnavailableSeatsError{SeatIDs: []uint64{seatID}}
	}
	m.states[seatID] = seatState{status: StatusBlocked}
	m.available--
	return nil
}

// unblockSeat returns a blocked seat to available.  No-op when the seat
// is not blocked.
func (m *SeatMap) unblockSeat(seatID uint64) bool {
	st, ok := m.states[seatID]
	if !ok || st.status != StatusBlocked {
		return false
	}
	m.states[seatID] = seatState{status: StatusAvailable}
	m.available++
	return true
}

// expiredHolds lists the seat IDs whose holds have passed their expiry.
// Used by the sweeper; the returned slice is a point-in-time view.
func (m *SeatMap) expiredHolds(now time.Time) []uint64 {
	var out []uint64
	for id, st := range m.states {
		if st.status == StatusHeld && !st.expiresAt.After(now) {
			out = append(out, id)
		}
	}
	return out
}

// snapshot copies the full layout with current states.
func (m *SeatMap) snapshot() []SeatView {
	out := make([]SeatView, 0, len(m.seats))
	for id, s := range m.seats {
		st := m.states[id]
		v := SeatView{Seat: s, Status: st.status}
		if st.status == StatusHeld {
			v.HolderID = st.holderID
			v.ExpiresAt = st.expiresAt
		} else if st.status == StatusBooked {
			v.HolderID = st.holderID
		}
		out = append(out, v)
	}
	return out
}

// checkCount verifies the denormalized available-count against the
// authoritative seat states.  Drift is a programming error: it is
// logged and self-healed by recounting so the map never stays corrupt.
func (m *SeatMap) checkCount() {
	n := 0
	for _, st := range m.states {
		if st.status == StatusAvailable {
			n++
		}
	}
	if n != m.available {
		log.Printf("inventory: showtime %d available-count drift (cached=%d actual=%d); recounted",
			m.showtimeID, m.available, n)
		m.available = n
	}
}
