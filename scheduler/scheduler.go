// Package scheduler wires the offer/cleanup/uninstall pipeline
// together: the Offer Queue, Processor, Multiplexer, Run Manager,
// Spec Store and resource-manager Driver/Callbacks, plus the process's
// Start/Stop lifecycle and fatal-exit policy.
package scheduler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/opsframework/corescheduler/health"
	"github.com/opsframework/corescheduler/multiplexer"
	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/offer/accepter"
	"github.com/opsframework/corescheduler/offer/processor"
	"github.com/opsframework/corescheduler/offer/queue"
	"github.com/opsframework/corescheduler/resourcemanager"
	"github.com/opsframework/corescheduler/run"
	"github.com/opsframework/corescheduler/specstore"
	"github.com/opsframework/corescheduler/uninstall"
)

// Scheduler owns every long-lived component of the core and exposes
// the Start/Stop lifecycle the process entrypoint drives.
type Scheduler struct {
	Queue       *queue.Queue
	Processor   *processor.Processor
	Manager     *run.Manager
	Multiplexer *multiplexer.Multiplexer
	SpecStore   *specstore.Store
	Accepter    *accepter.Accepter
	Heartbeat   *health.Heartbeat
	Callbacks   *resourcemanager.Callbacks

	decliner *accepterDecliner
}

// Options collects the dependencies Scheduler.New wires together.
type Options struct {
	QueueCapacity      int
	Driver             accepter.Driver
	Scope              tally.Scope
	FrameworkUninstall bool
	UninstallCallback  func(name string)

	// SpecStore and Generators are optional; when both are set, New
	// recovers every previously-stored run into the Manager before
	// the pipeline starts accepting offers (spec.md §4.H recovery).
	SpecStore  *specstore.Store
	Generators run.Generators

	// FrameworkIDs backs the resourcemanager Callbacks this Scheduler
	// exposes for the process entrypoint to wire to its transport.
	FrameworkIDs resourcemanager.FrameworkInfoStore
}

// New assembles a Scheduler from Options.
func New(opts Options) *Scheduler {
	manager := run.NewManager()
	acc := accepter.New(opts.Driver)
	decliner := &accepterDecliner{accepter: acc}

	var deregister *uninstall.DeregisterStep
	if opts.FrameworkUninstall {
		deregister = uninstall.NewDeregisterStep(func(from, to uninstall.State) {
			log.WithFields(log.Fields{"from": from, "to": to}).Info("framework deregister step transitioned")
		})
	}

	mux := multiplexer.New(managerAdapter{manager}, opts.UninstallCallback, deregister)

	q := queue.New(opts.QueueCapacity)
	proc := processor.New(q, muxAdapter{mux}, decliner, scopeOrNoop(opts.Scope), nil, false)

	if opts.SpecStore != nil && opts.Generators != nil {
		recovered, err := opts.SpecStore.Recover(opts.Generators)
		if err != nil {
			log.WithError(err).Error("failed to recover runs from spec store")
		}
		for _, r := range recovered {
			if err := manager.Put(r); err != nil {
				log.WithError(err).WithField("run", r.Name()).Error("failed to register recovered run")
			}
		}
	}

	var callbacks *resourcemanager.Callbacks
	if opts.FrameworkIDs != nil {
		callbacks = resourcemanager.New(proc, manager, opts.FrameworkIDs)
	}

	s := &Scheduler{
		Queue:       q,
		Processor:   proc,
		Manager:     manager,
		Multiplexer: mux,
		SpecStore:   opts.SpecStore,
		Accepter:    acc,
		Callbacks:   callbacks,
		decliner:    decliner,
	}
	s.Heartbeat = health.New(scopeOrNoop(opts.Scope), 5*time.Second, func() bool {
		return s.Processor.AwaitProcessed(0)
	})
	return s
}

func scopeOrNoop(scope tally.Scope) tally.Scope {
	if scope == nil {
		return tally.NoopScope
	}
	return scope
}

// Start begins the background offer consumer and the liveness heartbeat.
func (s *Scheduler) Start() {
	s.Processor.Start()
	s.Heartbeat.Start()
}

// Stop halts the liveness heartbeat and closes the Offer Queue, which
// cooperatively wakes the background consumer goroutine so it exits
// cleanly instead of staying blocked forever in TakeAll (spec.md §5).
func (s *Scheduler) Stop() {
	s.Heartbeat.Stop()
	s.Queue.Close()
}

// managerAdapter narrows *run.Manager to the surface multiplexer.Manager needs.
type managerAdapter struct{ m *run.Manager }

func (a managerAdapter) LockForRead()                   { a.m.LockForRead() }
func (a managerAdapter) Unlock()                        { a.m.Unlock() }
func (a managerAdapter) SnapshotLocked() []run.Run      { return a.m.SnapshotLocked() }
func (a managerAdapter) StartUninstall(names []string)  { a.m.StartUninstall(names) }
func (a managerAdapter) Remove(names []string) int      { return a.m.Remove(names) }

// muxAdapter narrows *multiplexer.Multiplexer to the surface processor.Multiplexer needs.
type muxAdapter struct{ mux *multiplexer.Multiplexer }

func (a muxAdapter) HandleOffers(batch []offer.Offer) (run.Result, []offer.Recommendation) {
	return a.mux.HandleOffers(batch)
}

// accepterDecliner adapts the Accepter's Decline into the single-offer
// Decliner surface the Processor calls for queue-overflow rejects.
type accepterDecliner struct {
	accepter *accepter.Accepter
}

func (d *accepterDecliner) Decline(o offer.Offer, refuseSeconds int) {
	if err := d.accepter.Decline(context.Background(), []offer.Offer{o}, refuseSeconds); err != nil {
		log.WithError(err).WithField("offerId", o.ID).Warn("failed to decline overflowed offer")
	}
}
