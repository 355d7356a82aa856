package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOverridesPutGetDelete(t *testing.T) {
	o := NewOverrides(time.Hour)

	_, ok := o.Get("1")
	require.False(t, ok)

	o.Put("1", StatusOutOfService)
	status, ok := o.Get("1")
	require.True(t, ok)
	require.Equal(t, StatusOutOfService, status)

	o.Delete("1")
	_, ok = o.Get("1")
	require.False(t, ok)
}

func TestOverridesExpireAfterTTL(t *testing.T) {
	o := NewOverrides(20 * time.Millisecond)
	o.Put("1", StatusUp)

	time.Sleep(40 * time.Millisecond)
	_, ok := o.Get("1")
	require.False(t, ok)
}
