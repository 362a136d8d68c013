package run

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrDuplicateRun is returned by Put when the name is already registered.
var ErrDuplicateRun = errors.New("DUPLICATE")

// Registry is a readers/writer-protected mapping runName -> Run.
// Readers get a live view of the values; the Registry enforces name
// uniqueness on insertion and preserves insertion order for snapshot
// iteration, independent of the map's own randomized order.
type Registry struct {
	mu    sync.RWMutex
	byName map[string]Run
	order  []string
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Run)}
}

// Put inserts run under run.Name(), failing with ErrDuplicateRun if
// that name is already present.
func (r *Registry) Put(run Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[run.Name()]; exists {
		return ErrDuplicateRun
	}
	r.byName[run.Name()] = run
	r.order = append(r.order, run.Name())
	return nil
}

// Replace swaps run into the Registry under name, keeping name's
// existing position in insertion order. Used by startUninstall to
// swap an ACTIVE run for its UNINSTALLING replacement in place.
func (r *Registry) Replace(name string, run Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = run
}

// Get returns the run registered under name, if any.
func (r *Registry) Get(name string) (Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.byName[name]
	return run, ok
}

// Names returns every registered name, sorted lexicographically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns every registered run in insertion order, as of the
// moment of the call.
func (r *Registry) Snapshot() []Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// SnapshotLocked is Snapshot for a caller that already holds the
// Registry's read lock via LockForRead. Calling Snapshot itself in
// that situation would RLock a second time from the same goroutine,
// which can self-deadlock against a pending writer under
// sync.RWMutex's writer-priority semantics.
func (r *Registry) SnapshotLocked() []Run {
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []Run {
	runs := make([]Run, 0, len(r.order))
	for _, name := range r.order {
		if run, ok := r.byName[name]; ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// Remove deletes names unconditionally, returning the remaining count.
func (r *Registry) Remove(names []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	toRemove := make(map[string]struct{}, len(names))
	for _, n := range names {
		toRemove[n] = struct{}{}
		delete(r.byName, n)
	}

	kept := r.order[:0]
	for _, n := range r.order {
		if _, removed := toRemove[n]; !removed {
			kept = append(kept, n)
		}
	}
	r.order = kept
	return len(r.byName)
}

// Len reports the number of registered runs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// LockForRead acquires the Registry's shared lock, for callers (the
// Multiplexer) that need to iterate a consistent snapshot across
// multiple operations without an intervening writer.
func (r *Registry) LockForRead()   { r.mu.RLock() }
func (r *Registry) UnlockRead()    { r.mu.RUnlock() }
