package inventory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier collects every published event for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []SeatEvent
}

func (r *recordingNotifier) Publish(_ uint64, events ...SeatEvent) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
}

func (r *recordingNotifier) all() []SeatEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SeatEvent, len(r.events))
	copy(out, r.events)
	return out
}

func testLayout(n int) []Seat {
	seats := make([]Seat, 0, n)
	for i := 1; i <= n; i++ {
		seats = append(seats, Seat{
			ID:         uint64(i),
			Row:        "A",
			Number:     uint32(i),
			Class:      ClassClassic,
			PriceCents: 25000,
		})
	}
	return seats
}

// newTestEngine returns an engine with one registered showtime and a
// controllable clock.
func newTestEngine(t *testing.T, showtimeID uint64, seats int, notifier Notifier) (*Engine, *time.Time) {
	t.Helper()
	e := NewEngine(notifier)
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	now := base
	e.now = func() time.Time { return now }
	require.NoError(t, e.Register(showtimeID, testLayout(seats)))
	return e, &now
}

func availableCount(t *testing.T, e *Engine, showtimeID uint64) int {
	t.Helper()
	_, n, err := e.Snapshot(showtimeID)
	require.NoError(t, err)
	return n
}

// countedAvailable recomputes the count from the snapshot states, the
// property the cached counter must always agree with.
func countedAvailable(t *testing.T, e *Engine, showtimeID uint64) int {
	t.Helper()
	views, _, err := e.Snapshot(showtimeID)
	require.NoError(t, err)
	n := 0
	for _, v := range views {
		if v.Status == StatusAvailable {
			n++
		}
	}
	return n
}

func TestRegisterRejectsDuplicateShowtime(t *testing.T) {
	e, _ := newTestEngine(t, 1, 4, nil)
	err := e.Register(1, testLayout(4))
	assert.ErrorIs(t, err, ErrInvalidSeatSelection)
}

func TestRegisterRejectsBadLayout(t *testing.T) {
	e := NewEngine(nil)
	assert.Error(t, e.Register(1, nil))

	dup := testLayout(2)
	dup[1].ID = dup[0].ID
	assert.Error(t, e.Register(1, dup))
}

func TestAttemptHoldSecondUserLoses(t *testing.T) {
	e, _ := newTestEngine(t, 1, 4, nil)

	require.NoError(t, e.AttemptHold(1, 2, 100, time.Minute))
	err := e.AttemptHold(1, 2, 200, time.Minute)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	assert.Equal(t, 3, availableCount(t, e, 1))
}

func TestAttemptHoldConcurrentSingleWinner(t *testing.T) {
	e, _ := newTestEngine(t, 1, 1, nil)

	const racers = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(holder uint64) {
			defer wg.Done()
			if err := e.AttemptHold(1, 1, holder, time.Minute); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 0, availableCount(t, e, 1))
}

func TestAttemptHoldRefreshesOwnHold(t *testing.T) {
	e, now := newTestEngine(t, 1, 2, nil)

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	*now = now.Add(50 * time.Second)
	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))

	// The refreshed hold survives past the original expiry.
	*now = now.Add(50 * time.Second)
	err := e.AttemptHold(1, 1, 200, time.Minute)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	assert.Equal(t, 1, availableCount(t, e, 1))
}

func TestAttemptHoldClaimsExpiredForeignHold(t *testing.T) {
	e, now := newTestEngine(t, 1, 2, nil)

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	*now = now.Add(2 * time.Minute)

	// No sweep has run, but the expired hold is claimable directly.
	require.NoError(t, e.AttemptHold(1, 1, 200, time.Minute))
	err := e.ConfirmBooking(1, []uint64{1}, 100)
	assert.ErrorIs(t, err, ErrHoldExpiredOrMissing)
	require.NoError(t, e.ConfirmBooking(1, []uint64{1}, 200))
}

func TestReleaseHoldIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, 1, 3, nil)

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	assert.Equal(t, 2, availableCount(t, e, 1))

	// Foreign release is a no-op.
	require.NoError(t, e.ReleaseHold(1, 1, 200))
	assert.Equal(t, 2, availableCount(t, e, 1))

	require.NoError(t, e.ReleaseHold(1, 1, 100))
	assert.Equal(t, 3, availableCount(t, e, 1))

	// Double release does not inflate the count.
	require.NoError(t, e.ReleaseHold(1, 1, 100))
	assert.Equal(t, 3, availableCount(t, e, 1))
	assert.Equal(t, countedAvailable(t, e, 1), availableCount(t, e, 1))
}

func TestConfirmBookingAllOrNothing(t *testing.T) {
	e, now := newTestEngine(t, 1, 4, nil)

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	require.NoError(t, e.AttemptHold(1, 2, 100, 10*time.Second))

	// Seat 2's hold lapses while seat 1's is still live.
	*now = now.Add(30 * time.Second)

	err := e.ConfirmBooking(1, []uint64{1, 2}, 100)
	require.ErrorIs(t, err, ErrHoldExpiredOrMissing)
	var hx *HoldExpiredError
	require.ErrorAs(t, err, &hx)
	assert.Equal(t, []uint64{2}, hx.SeatIDs)

	// Nothing was committed: seat 1 is still just held.
	views, _, err := e.Snapshot(1)
	require.NoError(t, err)
	for _, v := range views {
		if v.Seat.ID == 1 {
			assert.Equal(t, StatusHeld, v.Status)
		}
	}
}

func TestConfirmBookingSuccessEmitsBatch(t *testing.T) {
	rec := &recordingNotifier{}
	e, _ := newTestEngine(t, 7, 4, rec)

	require.NoError(t, e.AttemptHold(7, 1, 100, time.Minute))
	require.NoError(t, e.AttemptHold(7, 2, 100, time.Minute))
	require.NoError(t, e.ConfirmBooking(7, []uint64{1, 2}, 100))

	events := rec.all()
	require.Len(t, events, 4) // two held, two booked
	assert.Equal(t, StatusBooked, events[2].NewState)
	assert.Equal(t, StatusBooked, events[3].NewState)
	assert.Equal(t, uint64(100), events[2].HolderID)

	// Booked is terminal: no hold, no re-confirm.
	assert.ErrorIs(t, e.AttemptHold(7, 1, 200, time.Minute), ErrSeatUnavailable)
	assert.ErrorIs(t, e.ConfirmBooking(7, []uint64{1}, 100), ErrHoldExpiredOrMissing)
}

func TestConfirmBookingRejectsBadInput(t *testing.T) {
	e, _ := newTestEngine(t, 1, 4, nil)

	assert.ErrorIs(t, e.ConfirmBooking(1, nil, 100), ErrInvalidSeatSelection)
	assert.ErrorIs(t, e.ConfirmBooking(1, []uint64{1, 1}, 100), ErrInvalidSeatSelection)
	assert.ErrorIs(t, e.ConfirmBooking(99, []uint64{1}, 100), ErrShowtimeNotFound)
}

func TestExpireSeatOnlyWhenDue(t *testing.T) {
	e, now := newTestEngine(t, 1, 2, nil)

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))

	expired, err := e.ExpireSeat(1, 1)
	require.NoError(t, err)
	assert.False(t, expired, "live hold must not expire")

	*now = now.Add(2 * time.Minute)
	expired, err = e.ExpireSeat(1, 1)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, 2, availableCount(t, e, 1))

	// Second expiry of the same seat is a no-op.
	expired, err = e.ExpireSeat(1, 1)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestBlockAndUnblockSeat(t *testing.T) {
	e, _ := newTestEngine(t, 1, 3, nil)

	require.NoError(t, e.BlockSeat(1, 1))
	assert.Equal(t, 2, availableCount(t, e, 1))
	assert.ErrorIs(t, e.AttemptHold(1, 1, 100, time.Minute), ErrSeatUnavailable)

	// Held seats cannot be blocked out from under their holder.
	require.NoError(t, e.AttemptHold(1, 2, 100, time.Minute))
	assert.ErrorIs(t, e.BlockSeat(1, 2), ErrSeatUnavailable)

	require.NoError(t, e.UnblockSeat(1, 1))
	assert.Equal(t, 1, availableCount(t, e, 1))
	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
}

func TestSnapshotOrderedByRowAndNumber(t *testing.T) {
	e := NewEngine(nil)
	layout := []Seat{
		{ID: 3, Row: "B", Number: 1, Class: ClassPremium, PriceCents: 40000},
		{ID: 1, Row: "A", Number: 2, Class: ClassClassic, PriceCents: 25000},
		{ID: 2, Row: "A", Number: 1, Class: ClassClassic, PriceCents: 25000},
	}
	require.NoError(t, e.Register(5, layout))

	views, n, err := e.Snapshot(5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, views, 3)
	assert.Equal(t, uint64(2), views[0].Seat.ID)
	assert.Equal(t, uint64(1), views[1].Seat.ID)
	assert.Equal(t, uint64(3), views[2].Seat.ID)
}

func TestSeatPrices(t *testing.T) {
	e, _ := newTestEngine(t, 1, 3, nil)

	prices, err := e.SeatPrices(1, []uint64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]uint32{1: 25000, 3: 25000}, prices)

	_, err = e.SeatPrices(1, []uint64{1, 42})
	assert.ErrorIs(t, err, ErrInvalidSeatSelection)
}

func TestUnregisterDropsShowtime(t *testing.T) {
	e, _ := newTestEngine(t, 1, 2, nil)
	e.Unregister(1)
	assert.ErrorIs(t, e.AttemptHold(1, 1, 100, time.Minute), ErrShowtimeNotFound)
	_, _, err := e.Snapshot(1)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

// TestHoldLifecycleWalk drives one seat through the full cycle and
// checks the cached count against the recomputed one at every step.
func TestHoldLifecycleWalk(t *testing.T) {
	e, now := newTestEngine(t, 1, 5, nil)
	check := func() {
		assert.Equal(t, countedAvailable(t, e, 1), availableCount(t, e, 1))
	}

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	check()
	require.NoError(t, e.ReleaseHold(1, 1, 100))
	check()

	require.NoError(t, e.AttemptHold(1, 1, 200, time.Minute))
	check()
	*now = now.Add(2 * time.Minute)
	_, err := e.ExpireSeat(1, 1)
	require.NoError(t, err)
	check()

	require.NoError(t, e.AttemptHold(1, 1, 300, time.Minute))
	require.NoError(t, e.ConfirmBooking(1, []uint64{1}, 300))
	check()
	assert.Equal(t, 4, availableCount(t, e, 1))
}
