package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoteRegionAggregatorFirstHitDisabled(t *testing.T) {
	remoteApps := &Applications{Applications: []*Application{
		{Name: "B", Instances: []*InstanceInfo{{AppName: "B", ID: "1"}}},
	}}
	aggregator := NewRemoteRegionAggregator(map[string]*RemoteRegionRegistry{
		"east": remoteHandle("east", remoteApps),
	}, nil, true)

	require.Nil(t, aggregator.FirstHit("B"))
}

func TestRemoteRegionAggregatorUnionOmitsUnknownRegions(t *testing.T) {
	remoteApps := &Applications{Applications: []*Application{
		{Name: "B", Instances: []*InstanceInfo{{AppName: "B", ID: "1"}}},
	}}
	aggregator := NewRemoteRegionAggregator(map[string]*RemoteRegionRegistry{
		"east": remoteHandle("east", remoteApps),
	}, nil, false)

	result := aggregator.Union(context.Background(), []string{"east", "nonexistent"}, false)
	require.Len(t, result, 1)
	require.Contains(t, result, "east")
}

func TestRemoteRegionAggregatorAllowedDefaultsToAllowAll(t *testing.T) {
	aggregator := NewRemoteRegionAggregator(nil, nil, false)
	require.True(t, aggregator.allowed("anywhere", "anything"))
}
