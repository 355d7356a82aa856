package registry

import "time"

// Config enumerates the options the registry core consumes (spec §6). The
// embedding application owns loading it (see internal/registryconfig for a
// viper-based convenience); the core itself is always constructed from a
// plain Config value, per §9's "package as an explicitly constructed
// dependency, not as process-wide state".
type Config struct {
	// RenewalPercentThreshold is the fraction of expected renewals the
	// observed rate must meet to keep eviction enabled (I6).
	RenewalPercentThreshold float64 `mapstructure:"renewal_percent_threshold"`

	// EnableSelfPreservation gates the self-preservation circuit breaker
	// entirely; when false, LeaseExpirationEnabled always reports true.
	EnableSelfPreservation bool `mapstructure:"enable_self_preservation"`

	// EvictionIntervalMs is the eviction sweeper's tick interval.
	EvictionIntervalMs int64 `mapstructure:"eviction_interval_ms"`

	// DeltaRetentionIntervalMs is the change-log pruner's tick interval.
	DeltaRetentionIntervalMs int64 `mapstructure:"delta_retention_interval_ms"`

	// RetentionTimeInMSInDeltaQueue is how long a change-log entry survives
	// before the pruner drops it (spec §3, §4.10).
	RetentionTimeInMSInDeltaQueue time.Duration `mapstructure:"retention_time_in_ms_in_delta_queue"`

	// ClockSkewMultiplier is the factor applied to a lease's duration before
	// it is considered expired (spec §4.1, §9 open question). Defaults to
	// DefaultClockSkewMultiplier; preserved verbatim, never silently changed
	// — see DESIGN.md for the open-question resolution.
	ClockSkewMultiplier int64 `mapstructure:"clock_skew_multiplier"`

	// OverridesTTL is the access-expiring grace window operator overrides
	// survive for (spec §3, §9).
	OverridesTTL time.Duration `mapstructure:"overrides_ttl"`

	// RecentActivityRingCapacity bounds the recently-registered /
	// recently-cancelled activity rings (spec §2.3, §4.11).
	RecentActivityRingCapacity int `mapstructure:"recent_activity_ring_capacity"`

	// RemoteRegionUrlsWithName maps region name -> URL, for the embedding
	// application's transport layer to dial; the registry core only cares
	// about the region names as aggregator keys.
	RemoteRegionUrlsWithName map[string]string `mapstructure:"remote_region_urls_with_name"`

	// RemoteRegionAppWhitelist maps region name -> allowed app names. The
	// empty-string key is the global whitelist, used when a region has none
	// of its own (spec §2.10, P7).
	RemoteRegionAppWhitelist map[string][]string `mapstructure:"remote_region_app_whitelist"`

	// DisableTransparentFallbackToOtherRegion disables getApplication's
	// cross-region fallback (spec §4.9).
	DisableTransparentFallbackToOtherRegion bool `mapstructure:"disable_transparent_fallback_to_other_region"`
}

// DefaultConfig returns a Config with every field set to its documented
// default.
func DefaultConfig() Config {
	return Config{
		RenewalPercentThreshold:       0.85,
		EnableSelfPreservation:        true,
		EvictionIntervalMs:            60_000,
		DeltaRetentionIntervalMs:      int64(DefaultDeltaRetention / 3 / time.Millisecond),
		RetentionTimeInMSInDeltaQueue: DefaultDeltaRetention,
		ClockSkewMultiplier:           DefaultClockSkewMultiplier,
		OverridesTTL:                  DefaultOverridesTTL,
		RecentActivityRingCapacity:    DefaultActivityRingCapacity,
	}
}

// withDefaults fills any zero-valued field of cfg with DefaultConfig's
// value, so callers can construct a Config literal naming only the fields
// they care about. Booleans are left untouched — false is a valid,
// deliberate choice for EnableSelfPreservation and
// DisableTransparentFallbackToOtherRegion, not distinguishable from "unset".
// Callers who want the documented defaults start from DefaultConfig() and
// override individual fields instead of a bare Config{}.
func (cfg Config) withDefaults() Config {
	d := DefaultConfig()
	if cfg.RenewalPercentThreshold == 0 {
		cfg.RenewalPercentThreshold = d.RenewalPercentThreshold
	}
	if cfg.EvictionIntervalMs == 0 {
		cfg.EvictionIntervalMs = d.EvictionIntervalMs
	}
	if cfg.DeltaRetentionIntervalMs == 0 {
		cfg.DeltaRetentionIntervalMs = d.DeltaRetentionIntervalMs
	}
	if cfg.RetentionTimeInMSInDeltaQueue == 0 {
		cfg.RetentionTimeInMSInDeltaQueue = d.RetentionTimeInMSInDeltaQueue
	}
	if cfg.ClockSkewMultiplier == 0 {
		cfg.ClockSkewMultiplier = d.ClockSkewMultiplier
	}
	if cfg.OverridesTTL == 0 {
		cfg.OverridesTTL = d.OverridesTTL
	}
	if cfg.RecentActivityRingCapacity == 0 {
		cfg.RecentActivityRingCapacity = d.RecentActivityRingCapacity
	}
	return cfg
}
