// Package accepter implements the Offer Accepter (spec.md §4.C): it
// regroups recommendations by agent and issues one accept call per
// agent, concurrently, since the resource manager requires every
// accept call to target a single agent.
package accepter

import (
	"context"
	"sort"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opsframework/corescheduler/offer"
)

// Driver is the resource-manager boundary the Accepter calls through.
type Driver interface {
	AcceptOffers(ctx context.Context, agentID string, offerIDs []string, ops []offer.Operation) error
	DeclineOffer(ctx context.Context, offerID string, refuseSeconds int) error
}

// Accepter groups recommendations by agent and dispatches them.
type Accepter struct {
	driver Driver
}

// New builds an Accepter around driver.
func New(driver Driver) *Accepter {
	return &Accepter{driver: driver}
}

type agentGroup struct {
	offerIDs []string
	seen     map[string]struct{}
	ops      []offer.Operation
}

// Accept groups recs by agentId, then issues one accept call per agent
// concurrently. Calls are started in agentId-sorted order, but because
// they run concurrently the order in which the driver receives them is
// not defined. Returns the first error
// encountered, wrapped to identify which agent it came from; any
// driver-unavailable error is fatal for the process, per the caller's
// error-taxonomy handling.
func (a *Accepter) Accept(ctx context.Context, recs []offer.Recommendation) error {
	groups := make(map[string]*agentGroup)
	var agentIDs []string

	for _, rec := range recs {
		g, ok := groups[rec.Offer.AgentID]
		if !ok {
			g = &agentGroup{seen: make(map[string]struct{})}
			groups[rec.Offer.AgentID] = g
			agentIDs = append(agentIDs, rec.Offer.AgentID)
		}
		if _, already := g.seen[rec.Offer.ID]; !already {
			g.seen[rec.Offer.ID] = struct{}{}
			g.offerIDs = append(g.offerIDs, rec.Offer.ID)
		}
		g.ops = append(g.ops, rec.Operation)
	}

	sort.Strings(agentIDs)

	callID := uuid.New()
	eg, egCtx := errgroup.WithContext(ctx)
	for _, agentID := range agentIDs {
		agentID, g := agentID, groups[agentID]
		eg.Go(func() error {
			log.WithField("callId", callID).WithField("agentId", agentID).WithField("offers", len(g.offerIDs)).
				Debug("dispatching accept call")
			if err := a.driver.AcceptOffers(egCtx, agentID, g.offerIDs, g.ops); err != nil {
				return errors.Wrapf(err, "accept offers for agent %s (call %s)", agentID, callID)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Decline issues one decline call per offer with the given
// refuse-seconds. Declines are independent of each other and of any
// accept call; a failure on one offer does not block the rest.
func (a *Accepter) Decline(ctx context.Context, offers []offer.Offer, refuseSeconds int) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, o := range offers {
		o := o
		eg.Go(func() error {
			if err := a.driver.DeclineOffer(egCtx, o.ID, refuseSeconds); err != nil {
				return errors.Wrapf(err, "decline offer %s", o.ID)
			}
			return nil
		})
	}
	return eg.Wait()
}
