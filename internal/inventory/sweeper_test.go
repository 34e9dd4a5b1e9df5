package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiredReclaimsDueHolds(t *testing.T) {
	rec := &recordingNotifier{}
	e, now := newTestEngine(t, 1, 4, rec)

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	require.NoError(t, e.AttemptHold(1, 2, 100, time.Minute))
	require.NoError(t, e.AttemptHold(1, 3, 200, time.Hour))

	*now = now.Add(10 * time.Minute)

	assert.Equal(t, 2, e.SweepExpired())
	assert.Equal(t, 3, availableCount(t, e, 1))

	// The long hold survived the sweep.
	views, _, err := e.Snapshot(1)
	require.NoError(t, err)
	for _, v := range views {
		if v.Seat.ID == 3 {
			assert.Equal(t, StatusHeld, v.Status)
		}
	}

	// Exactly one available event per reclaimed seat.
	released := map[uint64]int{}
	for _, ev := range rec.all() {
		if ev.NewState == StatusAvailable {
			released[ev.SeatID]++
		}
	}
	assert.Equal(t, map[uint64]int{1: 1, 2: 1}, released)
}

func TestSweepExpiredSecondPassIsNoop(t *testing.T) {
	e, now := newTestEngine(t, 1, 2, nil)

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	*now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, e.SweepExpired())
	assert.Equal(t, 0, e.SweepExpired())
}

func TestSweepExpiredSkipsReclaimedSeat(t *testing.T) {
	e, now := newTestEngine(t, 1, 2, nil)

	// Seat expired, then claimed by a new holder before any sweep ran.
	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	*now = now.Add(5 * time.Minute)
	require.NoError(t, e.AttemptHold(1, 1, 200, time.Hour))

	assert.Equal(t, 0, e.SweepExpired())
	require.NoError(t, e.ConfirmBooking(1, []uint64{1}, 200))
}

func TestSweepExpiredSpansShowtimes(t *testing.T) {
	e, now := newTestEngine(t, 1, 2, nil)
	require.NoError(t, e.Register(2, testLayout(2)))

	require.NoError(t, e.AttemptHold(1, 1, 100, time.Minute))
	require.NoError(t, e.AttemptHold(2, 1, 100, time.Minute))
	*now = now.Add(5 * time.Minute)

	assert.Equal(t, 2, e.SweepExpired())
	assert.Equal(t, 2, availableCount(t, e, 1))
	assert.Equal(t, 2, availableCount(t, e, 2))
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	e, _ := newTestEngine(t, 1, 1, nil)
	s := NewSweeper(e, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestNewSweeperDefaultsInterval(t *testing.T) {
	e := NewEngine(nil)
	s := NewSweeper(e, 0)
	assert.Equal(t, DefaultSweepInterval, s.interval)
}
