package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
)

func seatEvent(showtimeID, seatID uint64, state inventory.SeatStatus) inventory.SeatEvent {
	return inventory.SeatEvent{ShowtimeID: showtimeID, SeatID: seatID, NewState: state}
}

func TestPublishDeliversInOrder(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(1)
	b := h.Subscribe(1)

	h.Publish(1,
		seatEvent(1, 10, inventory.StatusHeld),
		seatEvent(1, 11, inventory.StatusHeld),
	)
	h.Publish(1, seatEvent(1, 10, inventory.StatusBooked))

	for _, sub := range []*Subscriber{a, b} {
		assert.Equal(t, uint64(10), (<-sub.Events()).SeatID)
		assert.Equal(t, uint64(11), (<-sub.Events()).SeatID)
		ev := <-sub.Events()
		assert.Equal(t, uint64(10), ev.SeatID)
		assert.Equal(t, inventory.StatusBooked, ev.NewState)
	}
}

func TestPublishScopedToShowtime(t *testing.T) {
	h := NewHub()
	one := h.Subscribe(1)
	two := h.Subscribe(2)

	h.Publish(1, seatEvent(1, 10, inventory.StatusHeld))

	assert.Equal(t, uint64(10), (<-one.Events()).SeatID)
	select {
	case ev := <-two.Events():
		t.Fatalf("subscriber of showtime 2 received event %+v", ev)
	default:
	}
}

func TestPublishDropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	slow := h.Subscribe(1)
	fast := h.Subscribe(1)

	// Keep the fast subscriber drained while the slow one never reads.
	drained := make(chan int)
	go func() {
		n := 0
		for range fast.Events() {
			n++
		}
		drained <- n
	}()

	total := DefaultBuffer + 1
	for i := 0; i < total; i++ {
		h.Publish(1, seatEvent(1, uint64(i), inventory.StatusHeld))
	}

	// The slow subscriber's buffer overflowed: it was dropped and its
	// channel closed after the buffered events.
	got := 0
	for range slow.Events() {
		got++
	}
	assert.Equal(t, DefaultBuffer, got)
	assert.Equal(t, 1, h.SubscriberCount(1))

	fast.Close()
	assert.GreaterOrEqual(t, <-drained, DefaultBuffer)
	assert.Equal(t, 0, h.SubscriberCount(1))
}

func TestSubscriberCloseIsIdempotent(t *testing.T) {
	h := NewHub()
	s := h.Subscribe(1)
	require.Equal(t, 1, h.SubscriberCount(1))

	s.Close()
	s.Close()
	assert.Equal(t, 0, h.SubscriberCount(1))

	_, open := <-s.Events()
	assert.False(t, open)

	// Publishing after the last unsubscribe is a no-op.
	h.Publish(1, seatEvent(1, 10, inventory.StatusHeld))
}
