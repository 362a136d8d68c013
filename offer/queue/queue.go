// Package queue implements the bounded FIFO Offer Queue (spec.md §4.D):
// a single structure shared between the goroutine feeding offers in
// from the resource manager and the single consumer that drains them.
package queue

import (
	"container/list"
	"sync"

	"github.com/opsframework/corescheduler/offer"
)

// Queue is a bounded FIFO of offers. A capacity of 0 means unbounded.
// All operations are safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	capacity int
	entries  *list.List // of offer.Offer
	index    map[string]*list.Element
	closed   bool
}

// New builds a Queue with the given capacity. capacity == 0 means unbounded.
func New(capacity int) *Queue {
	q := &Queue{
		capacity: capacity,
		entries:  list.New(),
		index:    make(map[string]*list.Element),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Offer enqueues o if the queue is not full or closed. Returns false
// if rejected.
func (q *Queue) Offer(o offer.Offer) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.capacity > 0 && q.entries.Len() >= q.capacity {
		return false
	}

	el := q.entries.PushBack(o)
	q.index[o.ID] = el
	q.notEmpty.Signal()
	return true
}

// TakeAll blocks until at least one offer is available, then atomically
// drains everything currently enqueued, preserving FIFO order.
//
// Cancellation is cooperative (spec.md §5): once Close has been
// called, TakeAll returns an empty batch immediately instead of
// blocking, waking any call already in Wait, so the consumer can exit
// cleanly.
func (q *Queue) TakeAll() []offer.Offer {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.entries.Len() == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if q.closed {
		return nil
	}

	drained := make([]offer.Offer, 0, q.entries.Len())
	for el := q.entries.Front(); el != nil; el = el.Next() {
		drained = append(drained, el.Value.(offer.Offer))
	}
	q.entries.Init()
	q.index = make(map[string]*list.Element)
	return drained
}

// Close cancels the queue cooperatively: every blocked or future
// TakeAll call returns an empty batch immediately, and further Offer
// calls are rejected. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
}

// Remove drops a rescinded offer, preserving the FIFO order of the
// remaining entries. No-op if the offer was already dequeued.
func (q *Queue) Remove(offerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	el, ok := q.index[offerID]
	if !ok {
		return false
	}
	q.entries.Remove(el)
	delete(q.index, offerID)
	return true
}

// Len reports the number of offers currently enqueued. Intended for
// tests and metrics, not for synchronization decisions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.entries.Len()
}

// Closed reports whether Close has been called, letting a consumer
// that just received an empty batch from TakeAll tell a genuine
// shutdown apart from a spurious empty drain.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
