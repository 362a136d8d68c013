// Package run implements the Run capability interface, its ACTIVE and
// UNINSTALLING variants, and the Registry/Manager that own the
// collection of runs hosted by the core (spec.md §4.F, §4.G, §4.K).
package run

// Result is the shared verdict vocabulary returned by the Run
// capability interface and propagated by the Multiplexer. Not every
// operation can return every value; see the operation's doc comment.
type Result int

const (
	// Processed means the call was handled; the caller continues normally.
	Processed Result = iota
	// NotReady means the run cannot make progress yet (e.g. waiting on
	// its PlanCoordinator); offers it did not consume stay in play.
	NotReady
	// Finished means the run has no further work and should be moved
	// into uninstall by the Run Manager.
	Finished
	// Uninstalled means an UNINSTALLING run has released every
	// reservation and cleared its state; it can be removed from the registry.
	Uninstalled
	// Failed means a run-side operation errored; callers treat it
	// non-fatally per the error taxonomy's LOGIC_ERROR handling.
	Failed
	// UnknownTask means a status update's task identifier does not map
	// to any registered run.
	UnknownTask
)

func (r Result) String() string {
	switch r {
	case Processed:
		return "PROCESSED"
	case NotReady:
		return "NOT_READY"
	case Finished:
		return "FINISHED"
	case Uninstalled:
		return "UNINSTALLED"
	case Failed:
		return "FAILED"
	case UnknownTask:
		return "UNKNOWN_TASK"
	default:
		return "UNKNOWN"
	}
}
