package reservation

import "github.com/opsframework/corescheduler/offer"

// ExpectedSet is the set of reservation identifiers (resourceId or
// persistenceId) the caller still expects to be holding. Both
// accessors in offer.Resource are checked against this single set, per
// spec.md §4.B — a persistent volume's resourceId and persistenceId
// are typically equal, but the Cleaner only cares about set
// membership, not which accessor produced the id.
type ExpectedSet map[string]struct{}

// NewExpectedSet builds an ExpectedSet from a list of ids.
func NewExpectedSet(ids ...string) ExpectedSet {
	s := make(ExpectedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ExpectedSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clean computes the ordered list of release operations required to
// return every reservation on offers that is not present in expected.
//
// The algorithm is two passes over offers in strict order, to honour
// the resource lifecycle ordering invariant (every DESTROY must
// precede every UNRESERVE within a single accept call):
//
//  1. For each offer in input order, for each resource whose
//     persistenceId is absent from expected, emit DESTROY.
//  2. For each offer in input order, for each resource whose
//     resourceId is absent from expected, emit UNRESERVE.
//
// A persistent volume that is unexpected therefore generates both a
// DESTROY and an UNRESERVE. Clean is total: an empty expected set
// means every reserved resource is unexpected, and an empty offer list
// produces an empty result.
func Clean(expected ExpectedSet, offers []offer.Offer) []offer.Recommendation {
	var recs []offer.Recommendation

	for _, o := range offers {
		for _, r := range o.Resources {
			pid, ok := offer.PersistenceIDOf(r)
			if ok && !expected.has(pid) {
				recs = append(recs, offer.Recommendation{
					Offer:     o,
					Operation: offer.Operation{Type: offer.Destroy, Resource: r},
				})
			}
		}
	}

	for _, o := range offers {
		for _, r := range o.Resources {
			rid, ok := offer.ResourceIDOf(r)
			if ok && !expected.has(rid) {
				recs = append(recs, offer.Recommendation{
					Offer:     o,
					Operation: offer.Operation{Type: offer.Unreserve, Resource: r},
				})
			}
		}
	}

	return recs
}
