package run

import (
	"sync"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/reservation"
)

// UninstallingRun is the UNINSTALLING variant of the Run capability
// interface (spec.md §4.J, §4.K). It tracks the set of reservations it
// still owes release for; once that set is empty it reports
// UNINSTALLED. The first Offers call after conversion always reports
// NOT_READY, even with nothing outstanding, since cleanup happens by
// watching the residual-offer cleaner, not by the run consuming
// offers itself — see TestHandleOffersUninstallRoundTrip in the
// multiplexer package.
type UninstallingRun struct {
	mu                sync.Mutex
	name              string
	outstanding       reservation.ExpectedSet
	convertedThisPass bool
}

// NewUninstallingRun builds an UninstallingRun that still owes release
// of every id in outstanding.
func NewUninstallingRun(name string, outstanding reservation.ExpectedSet) *UninstallingRun {
	return &UninstallingRun{name: name, outstanding: outstanding, convertedThisPass: true}
}

func (u *UninstallingRun) Name() string { return u.name }

func (u *UninstallingRun) Registered(reRegistered bool) {}

// Offers never consumes offers directly; release happens through the
// Multiplexer's unexpected-resources sub-protocol (§4.I.3), which asks
// UnexpectedResources and then runs the Cleaner over what this run
// gives up. The first pass after conversion always reports NOT_READY
// so the caller gives the cleaner a chance to run before anything is
// declared UNINSTALLED.
func (u *UninstallingRun) Offers(remaining []offer.Offer) (Result, []offer.Recommendation) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.convertedThisPass {
		u.convertedThisPass = false
		return NotReady, nil
	}

	if len(u.outstanding) == 0 {
		return Uninstalled, nil
	}
	return NotReady, nil
}

// UnexpectedResources is asked with synthetic offers built from this
// run's remaining reservations; since an uninstalling run wants
// everything it still holds released, it agrees to give up every
// resource it's handed and drops the matching ids from outstanding.
func (u *UninstallingRun) UnexpectedResources(synthetic []offer.Offer) (Result, []offer.Resource) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var toRelease []offer.Resource
	for _, o := range synthetic {
		for _, r := range o.Resources {
			toRelease = append(toRelease, r)
			if rid, ok := offer.ResourceIDOf(r); ok {
				delete(u.outstanding, rid)
			}
			if pid, ok := offer.PersistenceIDOf(r); ok {
				delete(u.outstanding, pid)
			}
		}
	}
	return Processed, toRelease
}

func (u *UninstallingRun) Status(status TaskStatus) Result {
	return Processed
}

// ToUninstall is idempotent: an already-uninstalling run returns itself.
func (u *UninstallingRun) ToUninstall() Run { return u }

func (u *UninstallingRun) StateStore() StateStore           { return nil }
func (u *UninstallingRun) ConfigStore() ConfigStore         { return nil }
func (u *UninstallingRun) PlanCoordinator() PlanCoordinator { return nil }
func (u *UninstallingRun) HTTPEndpoints() HTTPEndpoints     { return nil }
