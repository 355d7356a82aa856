package registry

import (
	"sync"
	"time"

	"github.com/discoveryhub/registry-core/internal/corelog"
)

// applicationInstances is the inner, per-application map of the two-level
// registry mapping (spec §3 "Registry map"). Its mutex is independent of the
// Registry's process-wide rwlock: it only has to serialize concurrent
// mutations of this one application's instances, the same narrow scope
// coredhcp's per-client storage.Mutex covers.
type applicationInstances struct {
	mu        sync.RWMutex
	name      string
	instances map[string]*Lease
}

func newApplicationInstances(name string) *applicationInstances {
	return &applicationInstances{name: name, instances: make(map[string]*Lease)}
}

// Registry is the two-level (appName -> id -> Lease) mapping at the heart of
// the service-discovery control plane (spec §2.7).
//
// Locking discipline (spec §5), preserved verbatim because it is deliberate:
//   - keyLock guards structural changes to the top-level apps map (inserting
//     or removing an application entry). This is narrower than, and
//     independent from, mu below — mirrors coredhcp's LeaseStore.keyLock,
//     which exists for exactly the same reason ("handles synchronizing the
//     global map state... to avoid deadlocks, you must not try to take this
//     lock while holding an element lock").
//   - mu is the process-wide read/write lock spec §5 describes. All
//     single-instance mutators (Register, Cancel, StatusUpdate,
//     DeleteStatusOverride) take mu's READ lock, so they run in parallel
//     with each other; the delta-snapshot reader takes mu's WRITE lock, so it
//     alone sees a quiescent change log. Renew, point reads and full
//     snapshots take no lock on mu at all.
//   - renewsLock is the fine-grained lock serializing updates to
//     expectedRenewsPerMin and its derived threshold (I6).
type Registry struct {
	keyLock sync.RWMutex
	apps    map[string]*applicationInstances

	mu sync.RWMutex

	renewsLock                    sync.Mutex
	expectedRenewsPerMin          int64
	numberOfRenewsPerMinThreshold int64

	overrides        *Overrides
	changeLog        *ChangeLog
	recentRegistered *ActivityRing
	recentCancelled  *ActivityRing
	renewalsMeter    *RenewalsRateMeter

	cache ResponseCache
	asg   ASGOracle
	cfg   Config

	selfPreservationForced *bool // test-only escape hatch; nil in production

	log *corelog.Entry
}

// New constructs a Registry from cfg, cache and asg. cache and asg may be
// nil; a nil cache degrades to a no-op, and a nil asg oracle makes the ASG
// branch of the Status Arbiter unreachable (ASGName is simply ignored).
func New(cfg Config, cache ResponseCache, asg ASGOracle) *Registry {
	cfg = cfg.withDefaults()
	if cache == nil {
		cache = noopCache{}
	}
	r := &Registry{
		apps:             make(map[string]*applicationInstances),
		overrides:        NewOverrides(cfg.OverridesTTL),
		changeLog:        NewChangeLog(cfg.RetentionTimeInMSInDeltaQueue),
		recentRegistered: NewActivityRing(cfg.RecentActivityRingCapacity),
		recentCancelled:  NewActivityRing(cfg.RecentActivityRingCapacity),
		renewalsMeter:    NewRenewalsRateMeter(time.Minute),
		cache:            cache,
		asg:              asg,
		cfg:              cfg,
		log:              corelog.Get("registry"),
	}
	r.renewalsMeter.Start()
	return r
}

func (r *Registry) appEntry(appName string, createIfAbsent bool) *applicationInstances {
	r.keyLock.RLock()
	app, ok := r.apps[appName]
	r.keyLock.RUnlock()
	if ok || !createIfAbsent {
		return app
	}

	r.keyLock.Lock()
	defer r.keyLock.Unlock()
	if app, ok = r.apps[appName]; ok {
		return app
	}
	app = newApplicationInstances(appName)
	r.apps[appName] = app
	return app
}

// Register upserts the lease for (info.AppName, info.ID) (spec §4.3).
func (r *Registry) Register(info *InstanceInfo, leaseDurationSec int32, isReplication bool, now time.Time) bool {
	if info == nil || info.AppName == "" || info.ID == "" {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	app := r.appEntry(info.AppName, true)

	app.mu.Lock()
	existing := app.instances[info.ID]
	if existing != nil && existing.Holder != nil && existing.Holder.LastDirtyTimestamp > info.LastDirtyTimestamp {
		// I3: rebase the incoming dirty timestamp upward, never regress it.
		info.LastDirtyTimestamp = existing.Holder.LastDirtyTimestamp
	}
	if existing == nil {
		r.bumpExpectedRenewsPerMin(2)
	}

	durationMs := int64(leaseDurationSec) * 1000
	lease := NewLease(info, durationMs, now)
	if existing != nil {
		lease.ServiceUpTimestamp = existing.ServiceUpTimestamp
	}

	// Seed overrides from the incoming instance, then pull the live override
	// (if any) back onto it (spec §4.3).
	if info.OverriddenStatus != "" && info.OverriddenStatus != StatusUnknown {
		if _, ok := r.overrides.Get(info.ID); !ok {
			r.overrides.Put(info.ID, info.OverriddenStatus)
		}
	}
	if override, ok := r.overrides.Get(info.ID); ok {
		info.OverriddenStatus = override
	}

	resolved := ResolveStatus(info.ID, info.Status, info.ASGName, existing, isReplication, r.overrides, r.asg)
	info.Status = resolved
	if resolved == StatusUp {
		lease.ServiceUp(now)
	}

	info.ActionType = ActionAdded
	info.LastUpdatedTimestamp = now.UnixMilli()

	app.instances[info.ID] = lease
	app.mu.Unlock()

	r.recentRegistered.Add(now, info.AppName, info.ID)
	r.changeLog.Append(lease, now)
	r.cache.Invalidate(info.AppName, info.VipAddress, info.SecureVipAddress)
	return true
}

// Renew extends the lease for (appName, id) (spec §4.4). isReplication is
// threaded through to the Status Arbiter exactly as Register's (spec §4.2
// branch 4, "server sticks to its own opinion" only applies to non-replicated
// calls). It returns false (the caller should translate that to 404) when the
// lease is absent, or when the arbitrated status resolves to UNKNOWN —
// signalling the client must re-register because its override was deleted.
func (r *Registry) Renew(appName, id string, isReplication bool, now time.Time) bool {
	app := r.appEntry(appName, false)
	if app == nil {
		return false
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	lease, ok := app.instances[id]
	if !ok || lease.Holder == nil {
		return false
	}

	resolved := ResolveStatus(id, lease.Holder.Status, lease.Holder.ASGName, lease, isReplication, r.overrides, r.asg)
	if resolved == StatusUnknown {
		return false
	}
	if resolved != lease.Holder.Status {
		lease.Holder.Status = resolved
	}

	r.renewalsMeter.Increment()
	lease.Renew(now)
	return true
}

// Cancel removes the lease for (appName, id) (spec §4.5). isReplication
// mirrors Register's and Renew's parameter so a replication transport can
// call all three consistently; Cancel itself never consults the Status
// Arbiter, so the flag carries no branching here today.
func (r *Registry) Cancel(appName, id string, isReplication bool, now time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app := r.appEntry(appName, false)
	if app == nil {
		return false
	}

	app.mu.Lock()
	lease, ok := app.instances[id]
	if ok {
		delete(app.instances, id)
	}
	app.mu.Unlock()

	r.recentCancelled.Add(now, appName, id)
	r.overrides.Delete(id)

	if !ok {
		return false
	}

	if lease.Holder != nil {
		lease.Holder.ActionType = ActionDeleted
		lease.Holder.LastUpdatedTimestamp = now.UnixMilli()
	}
	lease.Cancel(now)
	r.changeLog.Append(lease, now)
	if lease.Holder != nil {
		r.cache.Invalidate(lease.Holder.AppName, lease.Holder.VipAddress, lease.Holder.SecureVipAddress)
	}
	return true
}

// StatusUpdate installs an operator-imposed status override (spec §4.6).
func (r *Registry) StatusUpdate(appName, id string, newStatus Status, lastDirtyTimestamp int64, now time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app := r.appEntry(appName, false)
	if app == nil {
		return false
	}

	app.mu.Lock()
	lease, ok := app.instances[id]
	if !ok {
		app.mu.Unlock()
		return false
	}

	lease.Renew(now)
	r.overrides.Put(id, newStatus)

	holder := lease.Holder
	holder.OverriddenStatus = newStatus
	if lastDirtyTimestamp > holder.LastDirtyTimestamp {
		holder.LastDirtyTimestamp = lastDirtyTimestamp
	}
	holder.Status = newStatus
	holder.ActionType = ActionModified
	holder.LastUpdatedTimestamp = now.UnixMilli()
	app.mu.Unlock()

	r.changeLog.Append(lease, now)
	r.cache.Invalidate(holder.AppName, holder.VipAddress, holder.SecureVipAddress)
	return true
}

// DeleteStatusOverride removes the operator override for (appName, id) and
// adopts newStatus as the effective status (spec §4.7).
func (r *Registry) DeleteStatusOverride(appName, id string, newStatus Status, lastDirtyTimestamp int64, now time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app := r.appEntry(appName, false)
	if app == nil {
		return false
	}

	app.mu.Lock()
	lease, ok := app.instances[id]
	if !ok {
		app.mu.Unlock()
		return false
	}

	lease.Renew(now)
	r.overrides.Delete(id)

	holder := lease.Holder
	holder.OverriddenStatus = StatusUnknown
	if lastDirtyTimestamp > holder.LastDirtyTimestamp {
		holder.LastDirtyTimestamp = lastDirtyTimestamp
	}
	holder.Status = newStatus
	holder.ActionType = ActionModified
	holder.LastUpdatedTimestamp = now.UnixMilli()
	app.mu.Unlock()

	r.changeLog.Append(lease, now)
	r.cache.Invalidate(holder.AppName, holder.VipAddress, holder.SecureVipAddress)
	return true
}

// bumpExpectedRenewsPerMin increments the expected-renews counter by delta
// and recomputes the self-preservation threshold (I6), serialized by
// renewsLock (spec §5). Callers must not hold renewsLock already.
func (r *Registry) bumpExpectedRenewsPerMin(delta int64) {
	r.renewsLock.Lock()
	defer r.renewsLock.Unlock()
	r.expectedRenewsPerMin += delta
	r.recomputeThresholdLocked()
}

func (r *Registry) recomputeThresholdLocked() {
	r.numberOfRenewsPerMinThreshold = int64(float64(r.expectedRenewsPerMin) * r.cfg.RenewalPercentThreshold)
}

// LeaseExpirationEnabled implements the self-preservation circuit breaker
// (spec §4.8): eviction is disabled whenever the observed renewal rate falls
// below the expected threshold, interpreting that drop as "we are the
// partitioned side, don't evict the world".
func (r *Registry) LeaseExpirationEnabled() bool {
	if r.selfPreservationForced != nil {
		return *r.selfPreservationForced
	}
	if !r.cfg.EnableSelfPreservation {
		return true
	}

	r.renewsLock.Lock()
	threshold := r.numberOfRenewsPerMinThreshold
	r.renewsLock.Unlock()

	if threshold <= 0 {
		return true
	}
	return r.renewalsMeter.LastMinuteCount() >= threshold
}

// Stop halts background goroutines owned directly by the registry (the
// renewals meter). The eviction Sweeper and change-log Pruner are
// constructed and stopped independently (spec §5 "cancellable on shutdown").
func (r *Registry) Stop() {
	r.renewalsMeter.Stop()
}
