// Package metricsutil builds the tally root scope the scheduler
// threads through every component that reports timers and gauges.
//
// The teacher's own entrypoint (resmgr/main) wires tally through an
// internal common/metrics package (a statsd reporter plus runtime
// metrics collection) that isn't part of the retrieved fragments, so
// this builds the root scope directly against tally's own API
// instead of reconstructing that internal package from nothing.
package metricsutil

import (
	"time"

	"github.com/uber-go/tally"
)

// NewRootScope builds a tally root scope under prefix, flushing every
// reportInterval via reporter. A nil reporter builds a no-op scope,
// used in tests and single-binary local runs where nothing is
// listening for metrics.
func NewRootScope(prefix string, reporter tally.StatsReporter, reportInterval time.Duration) (tally.Scope, func()) {
	if reporter == nil {
		return tally.NoopScope, func() {}
	}

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   prefix,
		Reporter: reporter,
	}, reportInterval)

	return scope, func() { _ = closer.Close() }
}
