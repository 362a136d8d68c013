// Package processor implements the Offer Processor (spec.md §4.E): the
// single consumer draining the Offer Queue and driving the
// Multiplexer, with a fatal-exit policy on any processing error.
package processor

import (
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/offer/queue"
	"github.com/opsframework/corescheduler/run"
)

// Multiplexer is the narrow surface the Processor drives. Declared
// here, at the point of use, rather than in the multiplexer package,
// so the processor depends only on what it calls.
type Multiplexer interface {
	HandleOffers(batch []offer.Offer) (run.Result, []offer.Recommendation)
}

// Decliner is how the Processor gets rid of an offer the Queue itself
// refused, before the Multiplexer ever sees it.
type Decliner interface {
	Decline(o offer.Offer, refuseSeconds int)
}

// ExitFunc lets tests observe the fatal-exit policy without actually
// killing the test binary.
type ExitFunc func(code int)

// Processor is the single consumer of an offer.queue.Queue. Exactly
// one goroutine should ever call Start; enqueue is safe to call from
// many goroutines (the resource-manager callback thread, typically).
type Processor struct {
	q            *queue.Queue
	mux          Multiplexer
	decliner     Decliner
	scope        tally.Scope
	exit         ExitFunc
	singleThread bool

	mu               sync.Mutex
	initialized      bool
	offersInProgress map[string]struct{}
}

// New builds a Processor. singleThread makes Enqueue perform the
// consumer's work inline on the caller's goroutine instead of relying
// on Start's background loop — the mode used by tests (spec.md §4.E).
func New(q *queue.Queue, mux Multiplexer, decliner Decliner, scope tally.Scope, exit ExitFunc, singleThread bool) *Processor {
	if exit == nil {
		exit = defaultExit
	}
	return &Processor{
		q:                q,
		mux:              mux,
		decliner:         decliner,
		scope:            scope,
		exit:             exit,
		singleThread:     singleThread,
		offersInProgress: make(map[string]struct{}),
	}
}

// MarkInitialized allows the consumer loop to proceed past the
// initial wait-for-registration gate.
func (p *Processor) MarkInitialized() {
	p.mu.Lock()
	p.initialized = true
	p.mu.Unlock()
}

// Enqueue adds each offer's id to offersInProgress, then pushes it
// onto the queue. If the queue refuses an offer, it is declined
// immediately with SHORT_DECLINE and only then removed from
// offersInProgress, so a concurrent awaitProcessed never observes a
// false "done" for an offer still being declined.
func (p *Processor) Enqueue(offers []offer.Offer) {
	p.mu.Lock()
	for _, o := range offers {
		p.offersInProgress[o.ID] = struct{}{}
	}
	p.mu.Unlock()

	var refused []offer.Offer
	for _, o := range offers {
		if !p.q.Offer(o) {
			refused = append(refused, o)
		}
	}

	for _, o := range refused {
		p.decliner.Decline(o, offer.ShortDeclineSeconds)
		p.mu.Lock()
		delete(p.offersInProgress, o.ID)
		p.mu.Unlock()
	}

	accepted := len(offers) - len(refused)
	if p.singleThread && accepted > 0 {
		p.drainOnce()
	}
}

// Start spawns the single background consumer goroutine. It exits on
// its own once the underlying Queue is closed (spec.md §5:
// "cancellation is cooperative... the consumer then exits cleanly
// unless a fatal error occurred").
func (p *Processor) Start() {
	go func() {
		for {
			if p.drainOnce() {
				return
			}
		}
	}()
}

// drainOnce performs one iteration of the consumer loop: take
// everything currently queued, hand it to the multiplexer, and clear
// offersInProgress for that batch. Any error from the multiplexer is
// fatal: the process exits rather than silently wedging. Returns true
// once the Queue has been closed, telling Start's loop to stop.
func (p *Processor) drainOnce() bool {
	batch := p.q.TakeAll()

	if len(batch) == 0 && p.q.Closed() {
		log.Info("offer queue closed, consumer exiting")
		return true
	}

	p.mu.Lock()
	initialized := p.initialized
	p.mu.Unlock()

	if len(batch) == 0 && !initialized {
		return false
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("offer processing panicked, exiting")
				p.exit(offer.ExitOfferProcessingFatal)
			}
		}()

		timer := p.scope.Timer("offer_batch_latency").Start()
		defer timer.Stop()
		p.mux.HandleOffers(batch)
	}()

	p.mu.Lock()
	for _, o := range batch {
		delete(p.offersInProgress, o.ID)
	}
	p.mu.Unlock()

	return false
}

// AwaitProcessed polls offersInProgress until it drains or timeout
// elapses, for tests driving the background consumer.
func (p *Processor) AwaitProcessed(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		p.mu.Lock()
		empty := len(p.offersInProgress) == 0
		p.mu.Unlock()
		if empty {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

func defaultExit(code int) {
	os.Exit(code)
}
