package registry

import (
	"time"

	"go.uber.org/atomic"
)

// RenewalsRateMeter is a sliding one-minute counter of successful renewals
// (spec §2.5), feeding the self-preservation circuit breaker (§4.8).
//
// It keeps two lock-free counters: the bucket currently accumulating
// increments, and the previous minute's final count. A background ticker
// swaps them once a minute. go.uber.org/atomic gives typed, zero-value-ready
// counters without the sync/atomic boilerplate of manual pointer casts.
type RenewalsRateMeter struct {
	current atomic.Int64
	last    atomic.Int64

	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewRenewalsRateMeter constructs a meter that rolls its window every
// interval (normally one minute).
func NewRenewalsRateMeter(interval time.Duration) *RenewalsRateMeter {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RenewalsRateMeter{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Increment records one successful renewal.
func (m *RenewalsRateMeter) Increment() {
	m.current.Inc()
}

// LastMinuteCount returns the number of renewals recorded in the last
// completed window.
func (m *RenewalsRateMeter) LastMinuteCount() int64 {
	return m.last.Load()
}

// Start runs the window-swap loop in a new goroutine.
func (m *RenewalsRateMeter) Start() {
	go m.run()
}

func (m *RenewalsRateMeter) run() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.last.Store(m.current.Swap(0))
		}
	}
}

// Stop cancels the window-swap loop and waits for it to exit.
func (m *RenewalsRateMeter) Stop() {
	close(m.stop)
	<-m.done
}
