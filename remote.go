package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/discoveryhub/registry-core/internal/corelog"
)

// RemoteRegionRegistry is the external collaborator contract for a peer
// registry in another region (spec §6). The registry core never implements
// it, only consumes it.
type RemoteRegionRegistry struct {
	// Name is the region name this handle represents, as used as a key in
	// RemoteRegionAggregator and in Config.RemoteRegionUrlsWithName.
	Name string

	GetApplicationFunc  func(appName string) *Application
	GetApplicationsFunc func() *Applications
	GetDeltasFunc       func() *Applications
}

func (r *RemoteRegionRegistry) getApplication(appName string) *Application {
	if r == nil || r.GetApplicationFunc == nil {
		return nil
	}
	return r.GetApplicationFunc(appName)
}

func (r *RemoteRegionRegistry) getApplications() *Applications {
	if r == nil || r.GetApplicationsFunc == nil {
		return nil
	}
	return r.GetApplicationsFunc()
}

func (r *RemoteRegionRegistry) getDeltas() *Applications {
	if r == nil || r.GetDeltasFunc == nil {
		return nil
	}
	return r.GetDeltasFunc()
}

// RemoteRegionAggregator holds the region-name -> remote-registry-handle map
// and the per-region/global application whitelists applied when unioning
// remote data into a local read view (spec §2.10).
type RemoteRegionAggregator struct {
	regions map[string]*RemoteRegionRegistry

	// whitelist maps region name -> allowed app names. A region absent from
	// this map falls back to globalWhitelist; an empty or absent
	// globalWhitelist allows everything.
	whitelist       map[string]map[string]struct{}
	globalWhitelist map[string]struct{}

	disableTransparentFallback bool

	log *corelog.Entry
}

// NewRemoteRegionAggregator constructs an aggregator over regions, keyed by
// region name.
func NewRemoteRegionAggregator(regions map[string]*RemoteRegionRegistry, whitelist map[string][]string, disableTransparentFallback bool) *RemoteRegionAggregator {
	wl := make(map[string]map[string]struct{}, len(whitelist))
	var global map[string]struct{}
	for region, apps := range whitelist {
		set := toSet(apps)
		if region == "" {
			global = set
			continue
		}
		wl[region] = set
	}
	return &RemoteRegionAggregator{
		regions:                     regions,
		whitelist:                   wl,
		globalWhitelist:             global,
		disableTransparentFallback: disableTransparentFallback,
		log:                         corelog.Get("remote-aggregator"),
	}
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// allowed reports whether appName may be pulled from region, per the
// per-region whitelist, falling back to the global whitelist, falling back
// to "allow all" (spec §4.9, P7).
func (a *RemoteRegionAggregator) allowed(region, appName string) bool {
	set, ok := a.whitelist[region]
	if !ok {
		set = a.globalWhitelist
	}
	if set == nil {
		return true
	}
	_, ok = set[appName]
	return ok
}

// FirstHit returns the first non-null result of appName across every
// configured region, region-iteration order unspecified (spec §4.9
// getApplication fallback). Returns nil if disableTransparentFallback is set
// or no region has the app.
func (a *RemoteRegionAggregator) FirstHit(appName string) *Application {
	if a.disableTransparentFallback {
		return nil
	}
	for region, handle := range a.regions {
		if !a.allowed(region, appName) {
			continue
		}
		if app := handle.getApplication(appName); app != nil {
			return app
		}
	}
	return nil
}

// Union fans out getApplications (or getDeltas, when delta is true) across
// regions, in parallel via errgroup, and returns each region's filtered
// application set keyed by region name. Errors from an individual region are
// logged and that region is simply omitted — a down peer must not fail the
// whole union read (spec §1 AP system, §7 "swallow per-entry failures").
func (a *RemoteRegionAggregator) Union(ctx context.Context, regions []string, delta bool) map[string]*Applications {
	results := make(map[string]*Applications, len(regions))
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)

	for _, region := range regions {
		region := region
		handle, ok := a.regions[region]
		if !ok {
			continue
		}
		g.Go(func() error {
			var apps *Applications
			if delta {
				apps = handle.getDeltas()
			} else {
				apps = handle.getApplications()
			}
			if apps == nil {
				return nil
			}
			filtered := a.filter(region, apps)
			mu.Lock()
			results[region] = filtered
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.log.WithError(err).Warn("remote region fan-out reported an error")
	}
	return results
}

func (a *RemoteRegionAggregator) filter(region string, apps *Applications) *Applications {
	out := &Applications{Version: apps.Version, AppsHashCode: apps.AppsHashCode}
	for _, app := range apps.Applications {
		if !a.allowed(region, app.Name) {
			continue
		}
		out.Applications = append(out.Applications, app)
	}
	return out
}
