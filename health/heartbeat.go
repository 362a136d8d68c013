// Package health adapts the teacher's leader-heartbeat pattern
// (common/health/heartbeat.go) into a general process-liveness
// heartbeat: instead of reporting leadership, it periodically samples
// a caller-supplied liveness probe (e.g. "did the consumer drain a
// batch recently") and exposes the result as a metric and a boolean.
package health

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/uber-go/tally"
)

// Probe reports whether the process is currently considered healthy.
type Probe func() bool

// Heartbeat periodically samples a Probe and emits a gauge.
type Heartbeat struct {
	mu       sync.Mutex
	running  atomic.Bool
	stopChan chan struct{}

	interval time.Duration
	probe    Probe
	metric   tally.Gauge
	healthy  atomic.Bool
}

// New builds a Heartbeat under scope, ticking every interval and
// sampling probe. probe must not block.
func New(scope tally.Scope, interval time.Duration, probe Probe) *Heartbeat {
	h := &Heartbeat{
		interval: interval,
		probe:    probe,
		metric:   scope.SubScope("health").Gauge("heartbeat"),
		stopChan: make(chan struct{}),
	}
	h.healthy.Store(true)
	return h
}

// Start begins the background sampling loop. Calling Start twice is a no-op.
func (h *Heartbeat) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running.Swap(true) {
		log.Warn("heartbeat already running, no-op")
		return
	}

	go func() {
		defer h.running.Store(false)

		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
				ok := h.probe()
				h.healthy.Store(ok)
				if ok {
					h.metric.Update(1)
				} else {
					h.metric.Update(0)
					log.Warn("liveness probe reported unhealthy")
				}
			}
		}
	}()
}

// Stop ends the background loop and blocks until it has exited.
func (h *Heartbeat) Stop() {
	if !h.running.Load() {
		return
	}
	h.stopChan <- struct{}{}
	for h.running.Load() {
		time.Sleep(time.Millisecond)
	}
}

// Healthy reports the most recently sampled probe result.
func (h *Heartbeat) Healthy() bool {
	return h.healthy.Load()
}
