package registryconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	contents := `
renewal_percent_threshold: 0.7
enable_self_preservation: true
overrides_ttl: 30m
remote_region_app_whitelist:
  "": ["A", "B"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.7, cfg.RenewalPercentThreshold)
	require.True(t, cfg.EnableSelfPreservation)
	require.Equal(t, []string{"A", "B"}, cfg.RemoteRegionAppWhitelist[""])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
