package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconcileHashStableForEquivalentDistributions(t *testing.T) {
	a := &Applications{Applications: []*Application{
		{Name: "A", Instances: []*InstanceInfo{{Status: StatusUp}, {Status: StatusUp}}},
		{Name: "B", Instances: []*InstanceInfo{{Status: StatusDown}}},
	}}
	b := &Applications{Applications: []*Application{
		{Name: "B", Instances: []*InstanceInfo{{Status: StatusDown}}},
		{Name: "A", Instances: []*InstanceInfo{{Status: StatusUp}, {Status: StatusUp}}},
	}}

	require.Equal(t, ReconcileHash(a), ReconcileHash(b))
}

func TestReconcileHashDiffersOnDifferentDistribution(t *testing.T) {
	a := &Applications{Applications: []*Application{
		{Name: "A", Instances: []*InstanceInfo{{Status: StatusUp}}},
	}}
	b := &Applications{Applications: []*Application{
		{Name: "A", Instances: []*InstanceInfo{{Status: StatusDown}}},
	}}

	require.NotEqual(t, ReconcileHash(a), ReconcileHash(b))
}
