package registry

import (
	"context"
	"time"
)

// decorate builds the read-view copy of holder handed back to callers:
// a fresh LeaseInfo summary plus the coordinating-server flag (spec §4.9).
// The authoritative InstanceInfo stays under the Registry's control; only
// this decorated copy ever leaves it.
func decorate(lease *Lease) *InstanceInfo {
	if lease == nil || lease.Holder == nil {
		return nil
	}
	cp := lease.Holder.Clone()
	cp.LeaseInfo = lease.Info()
	cp.IsCoordinatingDiscoveryServer = true
	return cp
}

// GetApplication returns the named application's local instances. When the
// local registry has nothing under appName and includeRemote is set, it
// falls back to the first non-null result across configured remote regions
// (spec §4.9).
func (r *Registry) GetApplication(appName string, includeRemote bool, remote *RemoteRegionAggregator) *Application {
	app := r.appEntry(appName, false)
	if app != nil {
		if local := r.snapshotApplication(app, now()); local != nil && len(local.Instances) > 0 {
			return local
		}
	}

	if includeRemote && remote != nil && !r.cfg.DisableTransparentFallbackToOtherRegion {
		return remote.FirstHit(appName)
	}
	return nil
}

func (r *Registry) snapshotApplication(app *applicationInstances, asOf time.Time) *Application {
	app.mu.RLock()
	defer app.mu.RUnlock()

	out := &Application{Name: app.name}
	for _, lease := range app.instances {
		if r.LeaseExpirationEnabled() && lease.IsExpired(asOf, r.cfg.ClockSkewMultiplier) {
			continue
		}
		out.Instances = append(out.Instances, decorate(lease))
	}
	return out
}

// GetInstanceByAppAndId returns the single instance (appName, id), skipping
// an expired lease when expiration is enabled (spec §4.9).
func (r *Registry) GetInstanceByAppAndId(appName, id string) *InstanceInfo {
	app := r.appEntry(appName, false)
	if app == nil {
		return nil
	}
	app.mu.RLock()
	defer app.mu.RUnlock()

	lease, ok := app.instances[id]
	if !ok {
		return nil
	}
	if r.LeaseExpirationEnabled() && lease.IsExpired(now(), r.cfg.ClockSkewMultiplier) {
		return nil
	}
	return decorate(lease)
}

// GetInstancesById scans every application for instances carrying id,
// skipping expired leases when expiration is enabled (spec §4.9).
func (r *Registry) GetInstancesById(id string) []*InstanceInfo {
	r.keyLock.RLock()
	apps := make([]*applicationInstances, 0, len(r.apps))
	for _, app := range r.apps {
		apps = append(apps, app)
	}
	r.keyLock.RUnlock()

	asOf := now()
	var out []*InstanceInfo
	for _, app := range apps {
		app.mu.RLock()
		lease, ok := app.instances[id]
		if ok && !(r.LeaseExpirationEnabled() && lease.IsExpired(asOf, r.cfg.ClockSkewMultiplier)) {
			out = append(out, decorate(lease))
		}
		app.mu.RUnlock()
	}
	return out
}

// GetApplications returns the full local snapshot: every application, every
// non-expired instance (spec §4.9 getApplications, without the remote-region
// union — see GetApplicationsFromMultipleRegions for that).
func (r *Registry) GetApplications() *Applications {
	r.keyLock.RLock()
	apps := make([]*applicationInstances, 0, len(r.apps))
	for _, app := range r.apps {
		apps = append(apps, app)
	}
	r.keyLock.RUnlock()

	asOf := now()
	snapshot := &Applications{Version: r.cache.GetVersionDelta()}
	for _, app := range apps {
		a := r.snapshotApplication(app, asOf)
		if len(a.Instances) > 0 {
			snapshot.Applications = append(snapshot.Applications, a)
		}
	}
	snapshot.AppsHashCode = ReconcileHash(snapshot)
	return snapshot
}

// GetApplicationsFromMultipleRegions builds the full local snapshot, then
// for each requested region merges in that region's whitelist-filtered
// instances, creating application entries on demand (spec §4.9). The
// returned AppsHashCode is the reconcile hash over the resulting union.
func (r *Registry) GetApplicationsFromMultipleRegions(ctx context.Context, regions []string, remote *RemoteRegionAggregator) *Applications {
	snapshot := r.GetApplications()
	if remote == nil || len(regions) == 0 {
		return snapshot
	}

	byName := make(map[string]*Application, len(snapshot.Applications))
	for _, app := range snapshot.Applications {
		byName[app.Name] = app
	}

	regional := remote.Union(ctx, regions, false)
	for _, apps := range regional {
		if apps == nil {
			continue
		}
		for _, remoteApp := range apps.Applications {
			local, ok := byName[remoteApp.Name]
			if !ok {
				local = &Application{Name: remoteApp.Name}
				byName[remoteApp.Name] = local
				snapshot.Applications = append(snapshot.Applications, local)
			}
			local.Instances = append(local.Instances, remoteApp.Instances...)
		}
	}

	snapshot.AppsHashCode = ReconcileHash(snapshot)
	return snapshot
}

// GetApplicationDeltasFromMultipleRegions builds a delta read over the
// change log (spec §4.9, §5). It takes the registry's WRITE lock while
// snapshotting the change log, guaranteeing a consistent, quiescent view
// with nothing concurrently appended (spec §5's "delta-snapshot reader
// takes the WRITE lock"). Per the §9 open question "delta hash over full
// snapshot", the returned AppsHashCode is computed from the full current
// union snapshot over the same region set, NOT from the delta's own
// contents — preserved verbatim for wire compatibility even though this
// looks, at first glance, like it should hash the delta.
func (r *Registry) GetApplicationDeltasFromMultipleRegions(ctx context.Context, regions []string, remote *RemoteRegionAggregator) *Applications {
	r.mu.Lock()
	entries := r.changeLog.Snapshot()
	r.mu.Unlock()

	delta := &Applications{Version: r.cache.GetVersionDeltaWithRegions()}
	byName := make(map[string]*Application)
	for _, entry := range entries {
		if entry.Lease == nil || entry.Lease.Holder == nil {
			continue
		}
		appName := entry.Lease.Holder.AppName
		app, ok := byName[appName]
		if !ok {
			app = &Application{Name: appName}
			byName[appName] = app
			delta.Applications = append(delta.Applications, app)
		}
		app.Instances = append(app.Instances, decorate(entry.Lease))
	}

	if remote != nil && len(regions) > 0 {
		regional := remote.Union(ctx, regions, true)
		for _, apps := range regional {
			if apps == nil {
				continue
			}
			for _, remoteApp := range apps.Applications {
				app, ok := byName[remoteApp.Name]
				if !ok {
					app = &Application{Name: remoteApp.Name}
					byName[remoteApp.Name] = app
					delta.Applications = append(delta.Applications, app)
				}
				app.Instances = append(app.Instances, remoteApp.Instances...)
			}
		}
	}

	// §9 open question: hash the full union snapshot, not the delta.
	full := r.GetApplicationsFromMultipleRegions(ctx, regions, remote)
	delta.AppsHashCode = full.AppsHashCode
	return delta
}

// now is a seam over time.Now so tests can't be tempted to depend on wall
// clock skew across a slow CI box; production always calls time.Now.
var now = time.Now
