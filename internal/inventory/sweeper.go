package inventory

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically reclaims expired holds across every registered
// showtime.  The hot path (AttemptHold) already treats expired holds as
// claimable, so the sweeper only affects how quickly viewers see a seat
// return to available, never correctness.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
}

// DefaultSweepInterval is used when no interval is configured.  Holds
// live for minutes, so sweeping twice a minute keeps the seat view
// fresh without meaningful load.
const DefaultSweepInterval = 30 * time.Second

// NewSweeper builds a sweeper over the given engine.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{engine: engine, interval: interval}
}

// Run blocks, sweeping on a fixed interval until the context is
// cancelled.  Intended to be started as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("sweeper: started (interval=%s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			s.engine.SweepExpired()
		}
	}
}

// SweepExpired runs one sweep pass over all registered showtimes and
// returns the number of holds reclaimed.  Failures on one showtime are
// isolated: they are logged and the sweep moves on to the next.
func (e *Engine) SweepExpired() int {
	total := 0
	for _, showtimeID := range e.registered() {
		total += e.sweepShowtime(showtimeID)
	}
	return total
}

// sweepShowtime expires every due hold of one showtime.  Each seat is
// expired through ExpireSeat so a seat reclaimed between enumeration
// and expiry is silently skipped.  A panic here must not take down the
// sweep loop for other showtimes.
func (e *Engine) sweepShowtime(showtimeID uint64) (reclaimed int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("sweeper: showtime %d sweep panicked: %v", showtimeID, r)
		}
	}()

	st, err := e.lookup(showtimeID)
	if err != nil {
		// Unregistered between enumeration and sweep; nothing to do.
		return 0
	}

	st.mu.Lock()
	due := st.m.expiredHolds(e.now())
	st.m.checkCount()
	st.mu.Unlock()

	for _, seatID := range due {
		expired, err := e.ExpireSeat(showtimeID, seatID)
		if err != nil {
			log.Printf("sweeper: showtime %d seat %d expire failed: %v", showtimeID, seatID, err)
			continue
		}
		if expired {
			reclaimed++
		}
	}
	if reclaimed > 0 {
		log.Printf("sweeper: released %d expired seat holds for showtime %d", reclaimed, showtimeID)
	}
	return reclaimed
}
