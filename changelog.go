package registry

import (
	"container/list"
	"sync"
	"time"

	"github.com/discoveryhub/registry-core/internal/corelog"
)

// DefaultDeltaRetention is the typical retention window for the change log
// (spec §3, §4.10): three minutes.
const DefaultDeltaRetention = 3 * time.Minute

// ChangeLogEntry is one recently-mutated lease, timestamped at append time.
type ChangeLogEntry struct {
	Lease         *Lease
	UpdateTimestamp int64
}

// ChangeLog is the bounded, time-windowed change stream driving delta reads
// (spec §3 "Change log", §4.10). It is append-only at the tail; the pruner
// drops from the head. container/list is the exact structural fit for
// append-tail/prune-head FIFO semantics — no pack repo offers a closer
// third-party queue for this (see DESIGN.md).
type ChangeLog struct {
	mu          sync.Mutex
	entries     *list.List
	retentionMs int64
	log         *corelog.Entry
}

// NewChangeLog constructs a change log retaining entries for retention.
func NewChangeLog(retention time.Duration) *ChangeLog {
	if retention <= 0 {
		retention = DefaultDeltaRetention
	}
	return &ChangeLog{
		entries:     list.New(),
		retentionMs: retention.Milliseconds(),
		log:         corelog.Get("changelog"),
	}
}

// Append records lease as changed at now (§I5: every mutator appends
// exactly one record).
func (c *ChangeLog) Append(lease *Lease, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.PushBack(&ChangeLogEntry{Lease: lease, UpdateTimestamp: now.UnixMilli()})
}

// Snapshot returns a copy of all currently retained entries, oldest first.
// Callers building a delta read take the registry's write lock before
// calling this (spec §5) so the snapshot is consistent with "no writer is
// concurrently appending".
func (c *ChangeLog) Snapshot() []*ChangeLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChangeLogEntry, 0, c.entries.Len())
	for e := c.entries.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*ChangeLogEntry))
	}
	return out
}

// Prune drops entries from the head whose UpdateTimestamp is older than
// now - retentionMs, stopping at the first retained entry since the log is
// ordered by append time (spec §4.10).
func (c *ChangeLog) Prune(now time.Time) int {
	cutoff := now.UnixMilli() - c.retentionMs
	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := 0
	for {
		front := c.entries.Front()
		if front == nil {
			break
		}
		entry := front.Value.(*ChangeLogEntry)
		if entry.UpdateTimestamp >= cutoff {
			break
		}
		c.entries.Remove(front)
		pruned++
	}
	if pruned > 0 {
		c.log.WithFields(map[string]interface{}{"pruned": pruned}).Debug("pruned change log entries")
	}
	return pruned
}

// Len reports the number of currently retained entries.
func (c *ChangeLog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Pruner runs the change-log pruner on a fixed interval until Stop is
// called (spec §4.10).
type Pruner struct {
	log      *ChangeLog
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewPruner constructs a pruner for log, firing every interval.
func NewPruner(log *ChangeLog, interval time.Duration) *Pruner {
	if interval <= 0 {
		interval = DefaultDeltaRetention / 3
	}
	return &Pruner{
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the pruner loop in a new goroutine.
func (p *Pruner) Start() {
	go p.run()
}

func (p *Pruner) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case now := <-ticker.C:
			p.log.Prune(now)
		}
	}
}

// Stop cancels the pruner and waits for its goroutine to exit.
func (p *Pruner) Stop() {
	close(p.stop)
	<-p.done
}
