package resourcemanager

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/offer/processor"
	"github.com/opsframework/corescheduler/run"
)

// Callbacks is the set of resource-manager events the core implements
// (spec.md §6). registered/reregistered/resourceOffers carry real
// behavior; offerRescinded, frameworkMessage, slaveLost and
// executorLost are only logged; disconnected and error are fatal.
// There is no statusUpdate callback here: status updates are not
// routed to the Multiplexer by this type.
type Callbacks struct {
	Processor    *processor.Processor
	Manager      *run.Manager
	FrameworkIDs FrameworkInfoStore
	Exit         func(code int)
}

// New builds a Callbacks wired to the given Processor and Manager.
func New(proc *processor.Processor, manager *run.Manager, ids FrameworkInfoStore) *Callbacks {
	return &Callbacks{Processor: proc, Manager: manager, FrameworkIDs: ids, Exit: os.Exit}
}

// Registered is invoked once on first successful registration.
func (c *Callbacks) Registered(frameworkID string) {
	if err := c.FrameworkIDs.SetFrameworkID(frameworkID); err != nil {
		log.WithError(err).Error("failed to persist framework id")
	}
	c.Manager.Registered(false)
	c.Processor.MarkInitialized()
}

// Reregistered is invoked when the resource manager reconnects the
// framework using a previously persisted id.
func (c *Callbacks) Reregistered() {
	c.Manager.Registered(true)
	c.Processor.MarkInitialized()
}

// ResourceOffers enqueues a freshly received batch of offers onto the
// Offer Processor.
func (c *Callbacks) ResourceOffers(offers []offer.Offer) {
	c.Processor.Enqueue(offers)
}

// OfferRescinded logs and is otherwise a no-op. It does not call
// Queue.Remove, so a rescinded offer that is still queued stays in the
// Offer Queue and is handed to the next batch.
func (c *Callbacks) OfferRescinded(offerID string) {
	log.WithField("offerId", offerID).Debug("offer rescinded")
}

// FrameworkMessage is unsupported; logged only.
func (c *Callbacks) FrameworkMessage(executorID, agentID string, data []byte) {
	log.WithFields(log.Fields{"executorId": executorID, "agentId": agentID}).Warn("frameworkMessage unsupported, ignoring")
}

// Disconnected is FATAL: the process exits so the supervisor restarts it.
func (c *Callbacks) Disconnected() {
	log.Error("disconnected from resource manager, exiting")
	c.Exit(offer.ExitDisconnected)
}

// SlaveLost is a warning only; tasks on the lost agent will surface
// through ordinary status updates.
func (c *Callbacks) SlaveLost(agentID string) {
	log.WithField("agentId", agentID).Warn("agent lost")
}

// ExecutorLost is a warning only.
func (c *Callbacks) ExecutorLost(executorID, agentID string) {
	log.WithFields(log.Fields{"executorId": executorID, "agentId": agentID}).Warn("executor lost")
}

// Error is FATAL: an unrecoverable resource-manager error, e.g. the
// framework was removed or the driver aborted.
func (c *Callbacks) Error(message string) {
	log.WithField("message", message).Error("resource manager reported a fatal error, exiting")
	c.Exit(offer.ExitAPIServerFailure)
}
