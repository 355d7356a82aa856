package registry

import (
	"container/ring"
	"fmt"
	"sync"
	"time"
)

// DefaultActivityRingCapacity is the default capacity of the
// recently-registered / recently-cancelled rings (spec §2.3, §4.11).
const DefaultActivityRingCapacity = 1000

// ActivityRing is a fixed-capacity FIFO of operational activity strings.
// container/ring is the exact structural fit for a bounded circular buffer
// (see DESIGN.md); each ring is guarded by its own mutex, per spec §5 "the
// recent-activity rings are guarded by per-ring monitors".
type ActivityRing struct {
	mu       sync.Mutex
	r        *ring.Ring
	size     int
	capacity int
}

// NewActivityRing constructs a ring holding at most capacity entries.
func NewActivityRing(capacity int) *ActivityRing {
	if capacity <= 0 {
		capacity = DefaultActivityRingCapacity
	}
	return &ActivityRing{r: ring.New(capacity), capacity: capacity}
}

// Add records an activity line, evicting the oldest entry first once the
// ring is at capacity (spec §4.11).
func (a *ActivityRing) Add(now time.Time, appName, id string) {
	entry := fmt.Sprintf("%d - %s(%s)", now.UnixMilli(), appName, id)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.r.Value = entry
	a.r = a.r.Next()
	if a.size < a.capacity {
		a.size++
	}
}

// Snapshot returns the recorded activity, most-recent first (spec §4.11).
func (a *ActivityRing) Snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, a.size)
	cur := a.r.Prev()
	for i := 0; i < a.size; i++ {
		if cur.Value != nil {
			out = append(out, cur.Value.(string))
		}
		cur = cur.Prev()
	}
	return out
}
