package registry

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ReconcileHash computes the reconcile hash (spec §4.9, §9 open question
// "delta hash over full snapshot", GLOSSARY "Reconcile hash"): a fingerprint
// over the (status -> count) distribution of a full snapshot. Clients
// compare this against their own locally-applied state to detect drift
// after applying a delta.
//
// Per the open question, this MUST be computed from the full current union
// snapshot even when the caller only needed a delta — preserved verbatim for
// wire compatibility.
func ReconcileHash(apps *Applications) string {
	counts := make(map[Status]int)
	for _, app := range apps.Applications {
		for _, inst := range app.Instances {
			counts[inst.Status]++
		}
	}

	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	var sb strings.Builder
	for _, s := range statuses {
		sb.WriteString(s)
		sb.WriteByte('_')
		sb.WriteString(strconv.Itoa(counts[Status(s)]))
		sb.WriteByte('_')
	}

	sum := xxhash.Sum64String(sb.String())
	return strconv.FormatUint(sum, 16)
}
