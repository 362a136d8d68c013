// Package reservation implements the Reservation Inventory and the
// Resource Cleaner (spec.md §4.A, §4.B): pure, I/O-free functions that
// classify reserved resources on a batch of offers and compute the
// release operations required to return unexpected reservations.
package reservation

import "github.com/opsframework/corescheduler/offer"

// ServiceOffer is the per-offer slice of resources attributed to a
// single bucket (a service name, or the malformed bucket).
type ServiceOffer struct {
	Offer     offer.Offer
	Resources []offer.Resource
}

// Classification is the result of walking a batch of offers once:
// reserved resources bucketed by owning service name, and reserved
// resources that carry no serviceName at all (malformed). Plain
// unreserved records are dropped.
//
// ByService/Malformed are keyed by offerId for convenient lookup, but
// Go map iteration order is randomized, so ByServiceOrder/
// MalformedOrder record each bucket's offerIds in the order they were
// first seen — callers that need to reconstruct an ordered offer
// slice from a bucket (e.g. before handing it to the Resource
// Cleaner) must walk the *Order slice, not range the map directly.
type Classification struct {
	ByService      map[string]map[string]ServiceOffer
	ByServiceOrder map[string][]string
	Malformed      map[string]ServiceOffer
	MalformedOrder []string
}

// Classify walks each offer's resources exactly once, in offer order,
// bucketing reserved-with-serviceName resources under the owning
// service and reserved-without-serviceName resources into Malformed.
// Plain unreserved records are dropped. The function is deterministic,
// order-preserving within each bucket, and performs no I/O.
func Classify(offers []offer.Offer) Classification {
	c := Classification{
		ByService:      make(map[string]map[string]ServiceOffer),
		ByServiceOrder: make(map[string][]string),
		Malformed:      make(map[string]ServiceOffer),
	}

	for _, o := range offers {
		for _, r := range o.Resources {
			if !r.IsReserved() {
				continue
			}

			if r.ServiceName == "" {
				if appendResource(c.Malformed, o, r) {
					c.MalformedOrder = append(c.MalformedOrder, o.ID)
				}
				continue
			}

			bucket, ok := c.ByService[r.ServiceName]
			if !ok {
				bucket = make(map[string]ServiceOffer)
				c.ByService[r.ServiceName] = bucket
			}
			if appendResource(bucket, o, r) {
				c.ByServiceOrder[r.ServiceName] = append(c.ByServiceOrder[r.ServiceName], o.ID)
			}
		}
	}

	return c
}

// appendResource records r against o within bucket, returning true the
// first time o.ID is seen in this bucket so callers can track order.
func appendResource(bucket map[string]ServiceOffer, o offer.Offer, r offer.Resource) bool {
	so, ok := bucket[o.ID]
	firstSeen := !ok
	if !ok {
		so = ServiceOffer{Offer: o}
	}
	so.Resources = append(so.Resources, r)
	bucket[o.ID] = so
	return firstSeen
}

// OrderedOffers returns a bucket's ServiceOffers in the order recorded
// by order (first-seen offer order), ignoring any offerId in order
// that is absent from bucket.
func OrderedOffers(bucket map[string]ServiceOffer, order []string) []ServiceOffer {
	out := make([]ServiceOffer, 0, len(order))
	for _, id := range order {
		if so, ok := bucket[id]; ok {
			out = append(out, so)
		}
	}
	return out
}
