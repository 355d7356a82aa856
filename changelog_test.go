package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// P4: every change appears in the delta read for at least retentionMs - ε;
// no change remains after 2*retentionMs.
func TestChangeLogRetentionWindow(t *testing.T) {
	retention := 100 * time.Millisecond
	cl := NewChangeLog(retention)

	start := time.Now()
	lease := NewLease(&InstanceInfo{AppName: "A", ID: "1"}, 30_000, start)
	cl.Append(lease, start)

	cl.Prune(start.Add(retention / 2))
	require.Equal(t, 1, cl.Len(), "entry must still be retained before retentionMs elapses")

	cl.Prune(start.Add(2 * retention))
	require.Equal(t, 0, cl.Len(), "entry must be gone after 2*retentionMs")
}

func TestChangeLogSnapshotPreservesAppendOrder(t *testing.T) {
	// Scenario 5 (spec §8): register then cancel produces two change-log
	// entries, oldest (registration) first.
	cl := NewChangeLog(time.Minute)
	now := time.Now()

	registered := NewLease(&InstanceInfo{AppName: "A", ID: "1", ActionType: ActionAdded}, 30_000, now)
	cl.Append(registered, now)

	cancelled := NewLease(&InstanceInfo{AppName: "A", ID: "1", ActionType: ActionDeleted}, 30_000, now)
	cl.Append(cancelled, now.Add(time.Second))

	entries := cl.Snapshot()
	require.Len(t, entries, 2)
	require.Equal(t, ActionAdded, entries[0].Lease.Holder.ActionType)
	require.Equal(t, ActionDeleted, entries[1].Lease.Holder.ActionType)
	require.LessOrEqual(t, entries[0].UpdateTimestamp, entries[1].UpdateTimestamp)
}
