package run

import "github.com/opsframework/corescheduler/offer"

// TaskStatus is the narrow view of a resource-manager status update the
// core needs: enough to extract the owning run and hand the rest to it
// opaquely. Raw is whatever payload the caller received; runs are free
// to type-assert it back to their own representation.
type TaskStatus struct {
	TaskID string
	Raw    interface{}
}

// StateStore, ConfigStore, PlanCoordinator and HTTPEndpoints are
// introspection surfaces used by the HTTP layer, which is out of
// scope; they are carried on the interface only so a Run can be asked
// for them, never invoked by the core itself.
type StateStore interface{}
type ConfigStore interface{}
type PlanCoordinator interface{}
type HTTPEndpoints interface{}

// Run is the narrow capability contract a hosted service must satisfy
// (spec.md §4.K). Variants in this core are ACTIVE and UNINSTALLING;
// the core treats both polymorphically through this interface and
// makes no assumption about what a run internally does.
type Run interface {
	// Name is the run's unique identifier in the Registry.
	Name() string

	// Registered is called once after framework registration, or
	// immediately if the framework is already registered.
	Registered(reRegistered bool)

	// Offers is handed the offers still unconsumed by earlier runs in
	// the current fan-out pass. It returns the operations it wants
	// performed and a result describing its own readiness.
	Offers(remaining []offer.Offer) (Result, []offer.Recommendation)

	// UnexpectedResources is asked only with synthetic offers built
	// from this run's own reserved resources found on residual offers.
	// It returns the subset it agrees should be released.
	UnexpectedResources(synthetic []offer.Offer) (Result, []offer.Resource)

	// Status routes a task status update to the run that owns it.
	Status(status TaskStatus) Result

	// ToUninstall produces the UNINSTALLING replacement for this run.
	// Idempotent: calling it on an already-UNINSTALLING run returns an
	// equivalent replacement rather than erroring.
	ToUninstall() Run

	StateStore() StateStore
	ConfigStore() ConfigStore
	PlanCoordinator() PlanCoordinator
	HTTPEndpoints() HTTPEndpoints
}
