// Package multiplexer implements the Event Router (spec.md §4.I): the
// single-pass offer fan-out across runs, the unexpected-resource
// sub-protocol, and per-run/framework uninstall coordination.
package multiplexer

import (
	log "github.com/sirupsen/logrus"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/reservation"
	"github.com/opsframework/corescheduler/run"
	"github.com/opsframework/corescheduler/uninstall"
)

// Manager is the narrow Run Manager surface the Multiplexer drives.
// Declared here, at the point of use.
type Manager interface {
	LockForRead()
	Unlock()
	// SnapshotLocked must not itself acquire the read lock: callers
	// always invoke it between LockForRead and Unlock, and a second
	// RLock from the same goroutine on the same sync.RWMutex can
	// self-deadlock against a pending writer.
	SnapshotLocked() []run.Run
	StartUninstall(names []string)
	Remove(names []string) int
}

// Multiplexer is the heart of the core: it owns a Run Manager, an
// optional framework-uninstall step, and the callback invoked once a
// run has fully uninstalled.
type Multiplexer struct {
	manager            Manager
	uninstallCallback  func(name string)
	frameworkDeregister *uninstall.DeregisterStep
}

// New builds a Multiplexer. frameworkDeregister is nil unless the
// framework itself is in uninstall mode.
func New(manager Manager, uninstallCallback func(name string), frameworkDeregister *uninstall.DeregisterStep) *Multiplexer {
	return &Multiplexer{
		manager:             manager,
		uninstallCallback:   uninstallCallback,
		frameworkDeregister: frameworkDeregister,
	}
}

// HandleOffers fans offers out across every run in insertion order
// (spec.md §4.I.1), reducing the residual set as runs consume offers,
// then classifies whatever is left via the Reservation Inventory and
// Resource Cleaner before deciding PROCESSED/NOT_READY/UNINSTALLED.
func (m *Multiplexer) HandleOffers(offers []offer.Offer) (run.Result, []offer.Recommendation) {
	m.manager.LockForRead()
	runs := m.manager.SnapshotLocked()

	remaining := append([]offer.Offer(nil), offers...)
	var allRecs []offer.Recommendation
	var finished, uninstalled []string
	anyNotReady := false
	noClients := len(runs) == 0

	unexpectedByRun := make(map[string]run.Run, len(runs))

	for _, r := range runs {
		result, recs := r.Offers(remaining)
		if len(recs) > 0 {
			remaining = subtractConsumed(remaining, recs)
		}
		allRecs = append(allRecs, recs...)

		switch result {
		case run.Finished:
			finished = append(finished, r.Name())
		case run.Uninstalled:
			uninstalled = append(uninstalled, r.Name())
		case run.NotReady:
			anyNotReady = true
		}
		unexpectedByRun[r.Name()] = r
	}
	m.manager.Unlock()

	if len(finished) > 0 {
		m.manager.StartUninstall(finished)
	}

	if len(uninstalled) > 0 {
		remainingCount := m.manager.Remove(uninstalled)
		if remainingCount == 0 {
			noClients = true
		}
		for _, name := range uninstalled {
			if m.uninstallCallback != nil {
				m.uninstallCallback(name)
			}
		}
	}

	cleanupRecs, anyFailed := m.cleanupResiduals(remaining, unexpectedByRun)
	allRecs = append(allRecs, cleanupRecs...)

	switch {
	case noClients && m.frameworkDeregister != nil:
		return run.Uninstalled, allRecs
	case noClients || anyNotReady || anyFailed:
		return run.NotReady, allRecs
	default:
		return run.Processed, allRecs
	}
}

// subtractConsumed removes every offer consumed by recs from
// remaining, preserving the relative order of the survivors.
func subtractConsumed(remaining []offer.Offer, recs []offer.Recommendation) []offer.Offer {
	consumed := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		consumed[rec.Offer.ID] = struct{}{}
	}

	survivors := make([]offer.Offer, 0, len(remaining))
	for _, o := range remaining {
		if _, gone := consumed[o.ID]; !gone {
			survivors = append(survivors, o)
		}
	}
	return survivors
}

// cleanupResiduals classifies whatever offers survived the fan-out
// (spec.md §4.I.3): the malformed bucket is cleaned unconditionally,
// and each known service is asked, via the unexpected-resources
// sub-protocol, which of its own residual reservations it agrees to
// give up before the Cleaner computes the release operations.
func (m *Multiplexer) cleanupResiduals(remaining []offer.Offer, runsByName map[string]run.Run) ([]offer.Recommendation, bool) {
	classification := reservation.Classify(remaining)

	var recs []offer.Recommendation
	anyFailed := false

	malformedOffers := offersFromBucket(classification.Malformed, classification.MalformedOrder)
	recs = append(recs, reservation.Clean(reservation.NewExpectedSet(), malformedOffers)...)

	for serviceName, byOffer := range classification.ByService {
		order := classification.ByServiceOrder[serviceName]
		r, known := runsByName[serviceName]
		if !known {
			log.WithField("service", serviceName).Warn("residual reservation for unknown service, treating as malformed")
			recs = append(recs, reservation.Clean(reservation.NewExpectedSet(), offersFromBucket(byOffer, order))...)
			continue
		}

		synthetic := offersFromBucket(byOffer, order)
		result, agreed := r.UnexpectedResources(synthetic)
		if result == run.Failed {
			log.WithField("service", serviceName).Warn("unexpectedResources failed; releasing identified subset conservatively")
			anyFailed = true
		}

		stillExpected := reservation.NewExpectedSet()
		for _, o := range synthetic {
			for _, res := range o.Resources {
				if rid, ok := offer.ResourceIDOf(res); ok {
					stillExpected[rid] = struct{}{}
				}
				if pid, ok := offer.PersistenceIDOf(res); ok {
					stillExpected[pid] = struct{}{}
				}
			}
		}
		for _, res := range agreed {
			if rid, ok := offer.ResourceIDOf(res); ok {
				delete(stillExpected, rid)
			}
			if pid, ok := offer.PersistenceIDOf(res); ok {
				delete(stillExpected, pid)
			}
		}
		recs = append(recs, reservation.Clean(stillExpected, synthetic)...)
	}

	return recs, anyFailed
}

// offersFromBucket reconstructs an ordered offer slice from a
// Classify bucket. Map iteration order is randomized, so order must
// come from the Classification's *Order slice, not a range over
// bucket itself (see reservation.Classification's doc comment).
func offersFromBucket(bucket map[string]reservation.ServiceOffer, order []string) []offer.Offer {
	serviceOffers := reservation.OrderedOffers(bucket, order)
	offers := make([]offer.Offer, 0, len(serviceOffers))
	for _, so := range serviceOffers {
		offers = append(offers, offer.Offer{ID: so.Offer.ID, AgentID: so.Offer.AgentID, Resources: so.Resources})
	}
	return offers
}

// HandleStatus extracts the owning run from status and delegates to
// it; absent a resolvable owner, the result is UNKNOWN_TASK.
func (m *Multiplexer) HandleStatus(status run.TaskStatus, serviceNameOf func(run.TaskStatus) (string, bool)) run.Result {
	name, ok := serviceNameOf(status)
	if !ok {
		return run.UnknownTask
	}

	m.manager.LockForRead()
	defer m.manager.Unlock()

	found, ok := findByName(m.manager.SnapshotLocked(), name)
	if !ok {
		return run.UnknownTask
	}
	return found.Status(status)
}

func findByName(runs []run.Run, name string) (run.Run, bool) {
	for _, r := range runs {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// Unregistered flips the framework deregister step to COMPLETE, called
// when the resource manager confirms the framework is gone.
func (m *Multiplexer) Unregistered() error {
	if m.frameworkDeregister == nil {
		return nil
	}
	return m.frameworkDeregister.Unregistered()
}

// StartFrameworkUninstall moves the framework deregister step from
// PENDING to PREPARED.
func (m *Multiplexer) StartFrameworkUninstall() error {
	if m.frameworkDeregister == nil {
		return nil
	}
	return m.frameworkDeregister.Start()
}
