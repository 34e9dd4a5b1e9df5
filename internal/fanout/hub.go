// Package fanout delivers seat state change events to every viewer
// subscribed to a showtime.  Delivery is independent per viewer: a slow
// or disconnected subscriber is dropped rather than allowed to delay
// anyone else, and events for one showtime reach each subscriber in the
// order the engine produced them.
package fanout

import (
	"log"
	"sync"

	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
)

// DefaultBuffer is the per-subscriber event buffer.  A subscriber that
// falls this many events behind is considered dead and dropped.
const DefaultBuffer = 64

// Subscriber is one viewer's ordered event feed for a single showtime.
// Events are read from Events(); the channel is closed when the
// subscriber is dropped or Close is called.
type Subscriber struct {
	hub        *Hub
	showtimeID uint64
	ch         chan inventory.SeatEvent
	closed     bool // guarded by hub.mu
}

// Events returns the subscriber's event channel.  It is closed exactly
// once, on unsubscribe or when the hub drops a slow subscriber.
func (s *Subscriber) Events() <-chan inventory.SeatEvent { return s.ch }

// ShowtimeID returns the showtime this subscriber watches.
func (s *Subscriber) ShowtimeID() uint64 { return s.showtimeID }

// Close unsubscribes the viewer and closes its event channel.  Safe to
// call more than once.
func (s *Subscriber) Close() {
	s.hub.mu.Lock()
	s.hub.dropLocked(s)
	s.hub.mu.Unlock()
}

// Hub maintains the per-showtime subscriber sets.  It implements
// inventory.Notifier: Publish only moves events into per-subscriber
// buffers and never blocks, so it is safe to call while the engine
// holds a showtime's lock.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]map[*Subscriber]struct{}
	buffer int
}

// NewHub creates an empty hub with the default subscriber buffer.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[uint64]map[*Subscriber]struct{}),
		buffer: DefaultBuffer,
	}
}

// Subscribe registers a new viewer for the given showtime and returns
// its event feed.
func (h *Hub) Subscribe(showtimeID uint64) *Subscriber {
	s := &Subscriber{
		hub:        h,
		showtimeID: showtimeID,
		ch:         make(chan inventory.SeatEvent, h.buffer),
	}
	h.mu.Lock()
	set := h.subs[showtimeID]
	if set == nil {
		set = make(map[*Subscriber]struct{})
		h.subs[showtimeID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish delivers events to every current subscriber of the showtime.
// A subscriber whose buffer is full is dropped so that it can never
// stall delivery to the others.
func (h *Hub) Publish(showtimeID uint64, events ...inventory.SeatEvent) {
	if len(events) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[showtimeID]
	if !ok {
		return
	}
	var dead []*Subscriber
	for s := range set {
		ok := true
		for _, ev := range events {
			select {
			case s.ch <- ev:
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if !ok {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		log.Printf("fanout: dropping slow subscriber for showtime %d", showtimeID)
		h.dropLocked(s)
	}
}

// SubscriberCount reports how many viewers currently watch a showtime.
func (h *Hub) SubscriberCount(showtimeID uint64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[showtimeID])
}

// dropLocked removes a subscriber and closes its channel.  Caller must
// hold h.mu.  Idempotent so that Close racing a slow-subscriber drop is
// harmless.
func (h *Hub) dropLocked(s *Subscriber) {
	if s.closed {
		return
	}
	s.closed = true
	if set, ok := h.subs[s.showtimeID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.showtimeID)
		}
	}
	close(s.ch)
}
