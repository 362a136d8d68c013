package run

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Manager is the lifecycle façade in front of the Registry (spec.md
// §4.G): it adds the hasRegistered flag and the startUninstall
// transition on top of the Registry's plain CRUD.
type Manager struct {
	registry *Registry

	// hasRegistered is read far more often than written (every put
	// checks it) so it is an atomic flag rather than a field under the
	// registry's own lock, matching the run/offer path's general
	// preference for lock-free reads on hot paths.
	hasRegistered atomic.Bool

	// mu serializes startUninstall/registered against each other; the
	// Registry's own lock still guards the map itself.
	mu sync.Mutex
}

// NewManager builds a Manager around a fresh Registry.
func NewManager() *Manager {
	return &Manager{registry: NewRegistry()}
}

// Put inserts run, immediately calling Registered(false) on it if the
// framework has already registered.
func (m *Manager) Put(r Run) error {
	if err := m.registry.Put(r); err != nil {
		return err
	}
	if m.hasRegistered.Load() {
		r.Registered(false)
	}
	return nil
}

// Get returns the run registered under name, if any.
func (m *Manager) Get(name string) (Run, bool) {
	return m.registry.Get(name)
}

// Names returns every registered name, sorted lexicographically.
func (m *Manager) Names() []string {
	return m.registry.Names()
}

// Registered flips hasRegistered and fans the callback out to every
// currently registered run.
func (m *Manager) Registered(reRegistered bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hasRegistered.Store(true)
	for _, r := range m.registry.Snapshot() {
		r.Registered(reRegistered)
	}
}

// HasRegistered reports whether the framework-level registration
// callback has fired yet.
func (m *Manager) HasRegistered() bool {
	return m.hasRegistered.Load()
}

// StartUninstall transitions each named run into its UNINSTALLING
// replacement. Names not found, or already UNINSTALLING, are logged
// and skipped.
func (m *Manager) StartUninstall(names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range names {
		r, ok := m.registry.Get(name)
		if !ok {
			log.WithField("run", name).Warn("startUninstall: run not found, skipping")
			continue
		}
		if _, already := r.(*UninstallingRun); already {
			log.WithField("run", name).Debug("startUninstall: already uninstalling, skipping")
			continue
		}

		replacement := r.ToUninstall()
		m.registry.Replace(name, replacement)
		if m.hasRegistered.Load() {
			replacement.Registered(false)
		}
	}
}

// Remove deletes names unconditionally, returning the remaining count.
func (m *Manager) Remove(names []string) int {
	return m.registry.Remove(names)
}

// LockForRead / Unlock let the Multiplexer iterate a consistent
// snapshot of runs under the Registry's shared lock.
func (m *Manager) LockForRead() { m.registry.LockForRead() }
func (m *Manager) Unlock()      { m.registry.UnlockRead() }

// Snapshot returns every registered run in insertion order.
func (m *Manager) Snapshot() []Run { return m.registry.Snapshot() }

// SnapshotLocked is Snapshot for a caller already holding the read
// lock via LockForRead; see Registry.SnapshotLocked.
func (m *Manager) SnapshotLocked() []Run { return m.registry.SnapshotLocked() }
