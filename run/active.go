package run

import (
	"sync"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/reservation"
)

// Scheduler is a run's PlanCoordinator surface (spec.md §1): the only
// operation the core ever calls on it is "given what's still
// available, what do you want to do next". Everything about how a
// particular service turns a spec into tasks lives behind this
// interface, out of the core's scope.
type Scheduler interface {
	NextSteps(remaining []offer.Offer) (Result, []offer.Recommendation)
}

// ActiveRun is the ACTIVE variant of the Run capability interface: a
// normally-operating hosted service that consumes offers through its
// Scheduler and tracks its own reserved-resource footprint so it can
// answer UnexpectedResources without re-deriving it each time.
type ActiveRun struct {
	mu        sync.RWMutex
	name      string
	scheduler Scheduler
	expected  reservation.ExpectedSet
	reg       bool
}

// NewActiveRun builds an ActiveRun with no reservations expected yet.
func NewActiveRun(name string, scheduler Scheduler) *ActiveRun {
	return &ActiveRun{name: name, scheduler: scheduler, expected: reservation.NewExpectedSet()}
}

func (a *ActiveRun) Name() string { return a.name }

func (a *ActiveRun) Registered(reRegistered bool) {
	a.mu.Lock()
	a.reg = true
	a.mu.Unlock()
}

// Offers delegates the decision to the Scheduler, then updates the
// run's own reservation bookkeeping from the operations it chose:
// RESERVE/CREATE/LAUNCH/LAUNCH_GROUP add to the expected set, DESTROY/
// UNRESERVE remove from it. This keeps UnexpectedResources answerable
// without the run re-deriving its footprint from scratch each round.
func (a *ActiveRun) Offers(remaining []offer.Offer) (Result, []offer.Recommendation) {
	result, recs := a.scheduler.NextSteps(remaining)

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range recs {
		applyLifecycle(a.expected, rec.Operation)
	}
	return result, recs
}

func applyLifecycle(expected reservation.ExpectedSet, op offer.Operation) {
	rid, hasRid := offer.ResourceIDOf(op.Resource)
	pid, hasPid := offer.PersistenceIDOf(op.Resource)

	switch op.Type {
	case offer.Reserve, offer.Launch, offer.LaunchGroup, offer.Create:
		if hasRid {
			expected[rid] = struct{}{}
		}
		if hasPid {
			expected[pid] = struct{}{}
		}
	case offer.Destroy, offer.Unreserve:
		if hasRid {
			delete(expected, rid)
		}
		if hasPid {
			delete(expected, pid)
		}
	}
}

// UnexpectedResources is asked only with synthetic offers containing
// this run's own resources. Anything not in the expected set is
// returned for release.
func (a *ActiveRun) UnexpectedResources(synthetic []offer.Offer) (Result, []offer.Resource) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var toRelease []offer.Resource
	for _, o := range synthetic {
		for _, r := range o.Resources {
			rid, ok := offer.ResourceIDOf(r)
			if _, present := a.expected[rid]; ok && !present {
				toRelease = append(toRelease, r)
			}
		}
	}
	return Processed, toRelease
}

func (a *ActiveRun) Status(status TaskStatus) Result {
	return Processed
}

// ToUninstall snapshots the current reservation footprint into an
// UninstallingRun; the run must release every entry in that snapshot
// before it reports UNINSTALLED.
func (a *ActiveRun) ToUninstall() Run {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snapshot := make(reservation.ExpectedSet, len(a.expected))
	for id := range a.expected {
		snapshot[id] = struct{}{}
	}
	return NewUninstallingRun(a.name, snapshot)
}

func (a *ActiveRun) StateStore() StateStore             { return nil }
func (a *ActiveRun) ConfigStore() ConfigStore           { return nil }
func (a *ActiveRun) PlanCoordinator() PlanCoordinator   { return nil }
func (a *ActiveRun) HTTPEndpoints() HTTPEndpoints       { return nil }
