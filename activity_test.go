package registry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// P8: after K > capacity inserts, the ring holds exactly capacity entries,
// most-recent-first.
func TestActivityRingBoundAndOrder(t *testing.T) {
	ring := NewActivityRing(3)
	now := time.Unix(0, 0)

	for i := 0; i < 5; i++ {
		ring.Add(now.Add(time.Duration(i)*time.Second), "A", fmt.Sprintf("%d", i))
	}

	snapshot := ring.Snapshot()
	require.Len(t, snapshot, 3)

	// Most recent first: ids 4, 3, 2 survive; 0 and 1 were evicted.
	require.Contains(t, snapshot[0], "(4)")
	require.Contains(t, snapshot[1], "(3)")
	require.Contains(t, snapshot[2], "(2)")
}

func TestActivityRingUnderCapacity(t *testing.T) {
	ring := NewActivityRing(5)
	now := time.Unix(0, 0)
	ring.Add(now, "A", "1")
	ring.Add(now, "A", "2")

	snapshot := ring.Snapshot()
	require.Len(t, snapshot, 2)
	require.Contains(t, snapshot[0], "(2)")
	require.Contains(t, snapshot[1], "(1)")
}
