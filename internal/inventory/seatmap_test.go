package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeatMapValidation(t *testing.T) {
	_, err := NewSeatMap(1, nil)
	assert.Error(t, err)

	layout := testLayout(3)
	layout[2].ID = layout[0].ID
	_, err = NewSeatMap(1, layout)
	assert.Error(t, err)

	m, err := NewSeatMap(1, testLayout(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.ShowtimeID())
	assert.Equal(t, 3, m.AvailableCount())
}

func TestSeatMapCheckCountSelfHeals(t *testing.T) {
	m, err := NewSeatMap(1, testLayout(4))
	require.NoError(t, err)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, m.attemptHold(1, 100, now, time.Minute))

	// Corrupt the cached counter and verify the check repairs it.
	m.available = 99
	m.checkCount()
	assert.Equal(t, 3, m.AvailableCount())
}

func TestSeatMapSnapshotStates(t *testing.T) {
	m, err := NewSeatMap(1, testLayout(3))
	require.NoError(t, err)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, m.attemptHold(1, 100, now, time.Minute))
	require.NoError(t, m.attemptHold(2, 200, now, time.Minute))
	require.NoError(t, m.confirmBooking([]uint64{2}, 200, now))

	byID := map[uint64]SeatView{}
	for _, v := range m.snapshot() {
		byID[v.Seat.ID] = v
	}
	assert.Equal(t, StatusHeld, byID[1].Status)
	assert.Equal(t, uint64(100), byID[1].HolderID)
	assert.Equal(t, now.Add(time.Minute), byID[1].ExpiresAt)
	assert.Equal(t, StatusBooked, byID[2].Status)
	assert.Equal(t, uint64(200), byID[2].HolderID)
	assert.True(t, byID[2].ExpiresAt.IsZero())
	assert.Equal(t, StatusAvailable, byID[3].Status)
	assert.Zero(t, byID[3].HolderID)
}
