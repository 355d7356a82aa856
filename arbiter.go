package registry

// OverrideLookup resolves an operator-imposed status override for an
// instance id, if one exists. Satisfied by *Overrides.
type OverrideLookup interface {
	Get(id string) (Status, bool)
}

// ASGOracle answers whether an autoscaling group is enabled. It is an
// external collaborator (§6); the registry never implements it.
type ASGOracle interface {
	IsASGEnabled(asgName string) bool
}

// ResolveStatus is the Status Arbiter (spec §4.2): a pure, side-effect-free
// function choosing the effective status of an instance from
// {reported, override, ASG-derived, previous-lease} with a fixed
// precedence:
//
//  1. If reported is neither UP nor OUT_OF_SERVICE, trust it (STARTING and
//     DOWN are always believed).
//  2. Else, an override registered for id wins.
//  3. Else, if the instance carries an ASG name, OUT_OF_SERVICE when the ASG
//     is disabled, else UP.
//  4. Else, if this is not a replication call and existingLease already has
//     status UP or OUT_OF_SERVICE, the server sticks to its own opinion.
//  5. Else, reported.
func ResolveStatus(id string, reported Status, asgName string, existingLease *Lease, isReplication bool, overrides OverrideLookup, asg ASGOracle) Status {
	if reported != StatusUp && reported != StatusOutOfService {
		return reported
	}

	if overrides != nil {
		if override, ok := overrides.Get(id); ok {
			return override
		}
	}

	if asgName != "" && asg != nil {
		if asg.IsASGEnabled(asgName) {
			return StatusUp
		}
		return StatusOutOfService
	}

	if !isReplication && existingLease != nil && existingLease.Holder != nil {
		if s := existingLease.Holder.Status; s == StatusUp || s == StatusOutOfService {
			return s
		}
	}

	return reported
}
