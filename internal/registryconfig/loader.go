// Package registryconfig loads a registry.Config from a config file on
// disk, the same viper-driven shape coredhcp uses for its own server
// config. This is a convenience for the embedding application; the registry
// core itself never loads its own configuration (spec §1 Non-goals, §6).
package registryconfig

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	registry "github.com/discoveryhub/registry-core"
)

// Load reads path (any format viper supports: yaml, json, toml, ...) and
// unmarshals it into a registry.Config, falling back to
// registry.DefaultConfig() for any field the file leaves unset.
func Load(path string) (*registry.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "registryconfig: reading config file %q", path)
	}

	cfg := registry.DefaultConfig()
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, errors.Wrap(err, "registryconfig: decoding config")
	}
	return &cfg, nil
}
