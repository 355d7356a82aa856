package registry

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultOverridesTTL is the access-expiring grace window operator
// overrides survive for (§3, §9): one hour, long enough for an operator
// action to outlive a client restart and re-registration.
const DefaultOverridesTTL = time.Hour

// Overrides is the id -> operator-imposed-status map (§3). Entries expire
// after an access-TTL; a successful Get bumps that TTL, per §9's "any
// replacement must preserve per-entry access-bump-on-read behavior".
//
// Built on hashicorp/golang-lru's expirable LRU: Add re-inserts with a fresh
// expiry, so Get-then-re-Add on a hit gives the sliding-TTL semantics the
// spec asks for, without hand-rolling a second timer-driven map alongside
// the registry's own change-log pruner and eviction sweeper.
type Overrides struct {
	cache *lru.LRU[string, Status]
}

// NewOverrides constructs an overrides map with the given access-TTL. Size 0
// means the cache is bounded purely by TTL, never by entry count.
func NewOverrides(ttl time.Duration) *Overrides {
	if ttl <= 0 {
		ttl = DefaultOverridesTTL
	}
	return &Overrides{cache: lru.NewLRU[string, Status](0, nil, ttl)}
}

// Get returns the override for id, if one is still live, bumping its TTL on
// a hit.
func (o *Overrides) Get(id string) (Status, bool) {
	status, ok := o.cache.Get(id)
	if !ok {
		return "", false
	}
	o.cache.Add(id, status)
	return status, true
}

// Put installs or replaces the override for id, resetting its TTL.
func (o *Overrides) Put(id string, status Status) {
	o.cache.Add(id, status)
}

// Delete removes any override for id.
func (o *Overrides) Delete(id string) {
	o.cache.Remove(id)
}

// Len reports the number of live overrides, for operator introspection.
func (o *Overrides) Len() int {
	return o.cache.Len()
}
