package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetApplicationsFullSnapshot(t *testing.T) {
	r, _ := newTestRegistry(t)
	now := time.Now()

	r.Register(&InstanceInfo{AppName: "A", ID: "1", Status: StatusUp}, 30, false, now)
	r.Register(&InstanceInfo{AppName: "A", ID: "2", Status: StatusDown}, 30, false, now)
	r.Register(&InstanceInfo{AppName: "B", ID: "1", Status: StatusUp}, 30, false, now)

	apps := r.GetApplications()
	require.Len(t, apps.Applications, 2)
	require.NotEmpty(t, apps.AppsHashCode)
}

func TestGetApplicationDeltasIncludesRecentChanges(t *testing.T) {
	r, _ := newTestRegistry(t)
	now := time.Now()

	r.Register(&InstanceInfo{AppName: "A", ID: "1", Status: StatusUp}, 30, false, now)
	r.Cancel("A", "1", false, now.Add(time.Second))

	delta := r.GetApplicationDeltasFromMultipleRegions(context.Background(), nil, nil)
	require.Len(t, delta.Applications, 1)
	require.Len(t, delta.Applications[0].Instances, 2)
}

func remoteHandle(name string, apps *Applications) *RemoteRegionRegistry {
	return &RemoteRegionRegistry{
		Name: name,
		GetApplicationFunc: func(appName string) *Application {
			for _, a := range apps.Applications {
				if a.Name == appName {
					return a
				}
			}
			return nil
		},
		GetApplicationsFunc: func() *Applications { return apps },
		GetDeltasFunc:       func() *Applications { return apps },
	}
}

// Scenario 6 (spec §8): getApplication("B", true) falls back to the remote
// region; disableTransparentFallbackToOtherRegion=true suppresses it.
func TestGetApplicationRemoteFallback(t *testing.T) {
	remoteApps := &Applications{Applications: []*Application{
		{Name: "B", Instances: []*InstanceInfo{{AppName: "B", ID: "1", Status: StatusUp}}},
	}}
	aggregator := NewRemoteRegionAggregator(map[string]*RemoteRegionRegistry{
		"east": remoteHandle("east", remoteApps),
	}, nil, false)

	r, _ := newTestRegistry(t)
	r.Register(&InstanceInfo{AppName: "A", ID: "1", Status: StatusUp}, 30, false, time.Now())

	app := r.GetApplication("B", true, aggregator)
	require.NotNil(t, app)
	require.Equal(t, "B", app.Name)

	cfg := DefaultConfig()
	cfg.DisableTransparentFallbackToOtherRegion = true
	r2 := New(cfg, nil, nil)
	t.Cleanup(r2.Stop)
	require.Nil(t, r2.GetApplication("B", true, aggregator))
}

// P7: a per-region whitelist excluding app A hides it from that region's
// union; an absent per-region whitelist falls back to the global one.
func TestRemoteRegionWhitelistFiltering(t *testing.T) {
	remoteApps := &Applications{Applications: []*Application{
		{Name: "A", Instances: []*InstanceInfo{{AppName: "A", ID: "1"}}},
		{Name: "B", Instances: []*InstanceInfo{{AppName: "B", ID: "1"}}},
	}}

	regions := map[string]*RemoteRegionRegistry{
		"east": remoteHandle("east", remoteApps),
		"west": remoteHandle("west", remoteApps),
	}

	whitelist := map[string][]string{
		"east": {"B"}, // per-region: only B
		"":     {"A", "B"},
	}
	aggregator := NewRemoteRegionAggregator(regions, whitelist, false)

	r, _ := newTestRegistry(t)
	result := r.GetApplicationsFromMultipleRegions(context.Background(), []string{"east", "west"}, aggregator)

	var eastHasA, westHasA bool
	_ = eastHasA
	union := aggregator.Union(context.Background(), []string{"east", "west"}, false)
	for _, name := range union["east"].Applications {
		if name.Name == "A" {
			eastHasA = true
		}
	}
	for _, name := range union["west"].Applications {
		if name.Name == "A" {
			westHasA = true
		}
	}
	require.False(t, eastHasA, "east's own whitelist excludes A")
	require.True(t, westHasA, "west falls back to the global whitelist, which allows A")
	require.NotNil(t, result)
}
