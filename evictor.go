package registry

import (
	"time"

	"github.com/discoveryhub/registry-core/internal/corelog"
)

// Sweeper is the periodic eviction task (spec §2.8, §4.8). It runs on a
// fixed interval; when self-preservation has tripped, it logs at debug
// level and returns — spec §7's designed degraded mode, not an error.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	log      *corelog.Entry
}

// NewSweeper constructs a sweeper over registry, ticking every interval.
func NewSweeper(registry *Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		log:      corelog.Get("evictor"),
	}
}

// Start runs the sweeper loop in a new goroutine.
func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep scans every lease once and cancels the ones that have expired. It
// never holds the registry's global lock across the whole scan — each
// victim is cancelled through Registry.Cancel, which takes the read lock at
// the correct, per-instance granularity (spec §5 "Cancel already acquires
// the read lock per victim, which is the correct granularity").
func (s *Sweeper) sweep(now time.Time) {
	if !s.registry.LeaseExpirationEnabled() {
		s.log.Debug("self-preservation active, skipping eviction sweep")
		return
	}

	r := s.registry
	r.keyLock.RLock()
	apps := make([]*applicationInstances, 0, len(r.apps))
	for _, app := range r.apps {
		apps = append(apps, app)
	}
	r.keyLock.RUnlock()

	evicted := 0
	for _, app := range apps {
		app.mu.RLock()
		expired := make([]string, 0)
		for id, lease := range app.instances {
			if lease.IsExpired(now, r.cfg.ClockSkewMultiplier) {
				expired = append(expired, id)
			}
		}
		app.mu.RUnlock()

		for _, id := range expired {
			if r.Cancel(app.name, id, false, now) {
				evicted++
			}
		}
	}

	if evicted > 0 {
		s.log.WithField("evicted", evicted).Info("eviction sweep cancelled expired leases")
	}
}

// Stop cancels the sweeper loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}
