package registry

import "time"

// DefaultClockSkewMultiplier is the factor applied to a lease's configured
// duration before it is considered expired. Eureka doubles the duration as
// an undocumented, inherited clock-skew allowance (spec §4.1, §9 open
// question "eviction window"); we preserve the value verbatim and surface it
// as Config.ClockSkewMultiplier rather than guess at a replacement.
const DefaultClockSkewMultiplier = 2

// Lease wraps one InstanceInfo with its registration, renewal and eviction
// timing. The Registry exclusively owns every Lease it hands out; reads
// never receive the Lease itself, only a decorated InstanceInfo copy built
// from it (§3 Ownership, §4.9).
type Lease struct {
	Holder     *InstanceInfo
	DurationMs int64

	RegistrationTimestamp int64
	LastRenewalTimestamp  int64
	EvictionTimestamp     int64
	ServiceUpTimestamp    int64
}

// NewLease creates a lease for holder, registered and last-renewed at now.
func NewLease(holder *InstanceInfo, durationMs int64, now time.Time) *Lease {
	ts := now.UnixMilli()
	return &Lease{
		Holder:                holder,
		DurationMs:            durationMs,
		RegistrationTimestamp: ts,
		LastRenewalTimestamp:  ts,
	}
}

// Renew extends the lease from now.
func (l *Lease) Renew(now time.Time) {
	l.LastRenewalTimestamp = now.UnixMilli()
}

// Cancel marks the lease evicted at now. A cancelled lease is expired
// regardless of its renewal timing.
func (l *Lease) Cancel(now time.Time) {
	l.EvictionTimestamp = now.UnixMilli()
}

// ServiceUp records the first transition to UP; subsequent calls are no-ops
// (§4.1).
func (l *Lease) ServiceUp(now time.Time) {
	if l.ServiceUpTimestamp == 0 {
		l.ServiceUpTimestamp = now.UnixMilli()
	}
}

// IsExpired reports whether the lease should be considered dead at now.
// clockSkewMultiplier is normally DefaultClockSkewMultiplier, threaded in
// from Config so the constant stays a single, named, grep-able symbol
// instead of a bare "2" scattered through the codebase.
func (l *Lease) IsExpired(now time.Time, clockSkewMultiplier int64) bool {
	if l.EvictionTimestamp != 0 {
		return true
	}
	if clockSkewMultiplier <= 0 {
		clockSkewMultiplier = DefaultClockSkewMultiplier
	}
	return now.UnixMilli() > l.LastRenewalTimestamp+clockSkewMultiplier*l.DurationMs
}

// Info builds the LeaseInfo summary handed back alongside a decorated
// InstanceInfo (§4.9).
func (l *Lease) Info() LeaseInfo {
	durationSec := int32(l.DurationMs / 1000)
	return LeaseInfo{
		RegistrationTimestamp: l.RegistrationTimestamp,
		LastRenewalTimestamp:  l.LastRenewalTimestamp,
		ServiceUpTimestamp:    l.ServiceUpTimestamp,
		EvictionTimestamp:     l.EvictionTimestamp,
		RenewalIntervalInSecs: durationSec,
		DurationInSecs:        durationSec,
	}
}
