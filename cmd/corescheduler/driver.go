package main

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/opsframework/corescheduler/config"
	"github.com/opsframework/corescheduler/offer"
)

// newMesosDriver builds the resource-manager Driver the Accepter calls
// through. The resource manager's transport and authentication are
// explicitly out of the core's scope; this entrypoint only needs
// something satisfying accepter.Driver to wire the rest of the
// pipeline together, so it logs the call it would have made. A real
// deployment replaces this with a client against the cluster's actual
// resource-manager RPC surface.
func newMesosDriver(cfg config.MesosConfig) *loggingDriver {
	return &loggingDriver{master: cfg.Master, frameworkName: cfg.FrameworkName}
}

type loggingDriver struct {
	master        string
	frameworkName string
}

func (d *loggingDriver) AcceptOffers(ctx context.Context, agentID string, offerIDs []string, ops []offer.Operation) error {
	log.WithField("agentId", agentID).WithField("offerIds", offerIDs).WithField("ops", len(ops)).
		Debug("would accept offers against resource-manager transport (out of core scope)")
	return nil
}

func (d *loggingDriver) DeclineOffer(ctx context.Context, offerID string, refuseSeconds int) error {
	log.WithField("offerId", offerID).WithField("refuseSeconds", refuseSeconds).
		Debug("would decline offer against resource-manager transport (out of core scope)")
	return nil
}
