// Package resourcemanager is the boundary to the cluster resource
// manager (spec.md §6): the Driver the core calls to accept/decline
// offers, the Callbacks surface the core implements, and a
// FrameworkInfoStore recording the framework's own identity across
// restarts.
package resourcemanager

import (
	"context"

	"github.com/opsframework/corescheduler/offer"
)

// Driver is the outbound resource-manager capability the Offer
// Accepter calls through. Exit codes on unrecoverable failures are
// owned by the caller (the scheduler wiring layer), not by the Driver
// itself.
type Driver interface {
	AcceptOffers(ctx context.Context, agentID string, offerIDs []string, ops []offer.Operation) error
	DeclineOffer(ctx context.Context, offerID string, refuseSeconds int) error
}

// FrameworkInfoStore persists the framework id the resource manager
// assigned on first registration, so a restart can re-register with
// the same identity instead of registering as a brand-new framework.
type FrameworkInfoStore interface {
	FrameworkID() (string, bool, error)
	SetFrameworkID(id string) error
}
