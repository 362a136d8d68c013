package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsframework/corescheduler/offer"
)

// fakeRun is a minimal stand-in satisfying the Run interface, used to
// exercise the Registry and Manager without any real scheduling logic.
type fakeRun struct {
	name string
}

func newFakeRun(name string) *fakeRun { return &fakeRun{name: name} }

func (f *fakeRun) Name() string             { return f.name }
func (f *fakeRun) Registered(bool)          {}
func (f *fakeRun) Offers([]offer.Offer) (Result, []offer.Recommendation) {
	return Processed, nil
}
func (f *fakeRun) UnexpectedResources([]offer.Offer) (Result, []offer.Resource) {
	return Processed, nil
}
func (f *fakeRun) Status(TaskStatus) Result { return Processed }
func (f *fakeRun) ToUninstall() Run         { return NewUninstallingRun(f.name, nil) }
func (f *fakeRun) StateStore() StateStore   { return nil }
func (f *fakeRun) ConfigStore() ConfigStore { return nil }
func (f *fakeRun) PlanCoordinator() PlanCoordinator { return nil }
func (f *fakeRun) HTTPEndpoints() HTTPEndpoints     { return nil }

func TestRegistryPutEnforcesUniqueness(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Put(newFakeRun("a")))
	err := reg.Put(newFakeRun("a"))
	assert.ErrorIs(t, err, ErrDuplicateRun)
}

func TestRegistrySnapshotIsInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Put(newFakeRun("c")))
	require.NoError(t, reg.Put(newFakeRun("a")))
	require.NoError(t, reg.Put(newFakeRun("b")))

	var names []string
	for _, r := range reg.Snapshot() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestRegistryNamesIsSorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Put(newFakeRun("c")))
	require.NoError(t, reg.Put(newFakeRun("a")))
	require.NoError(t, reg.Put(newFakeRun("b")))

	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())
}

func TestRegistryRemoveReturnsRemainingCount(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Put(newFakeRun("a")))
	require.NoError(t, reg.Put(newFakeRun("b")))

	remaining := reg.Remove([]string{"a"})
	assert.Equal(t, 1, remaining)
	assert.Equal(t, []string{"b"}, reg.Names())
}

func TestRegistryReplaceKeepsInsertionPosition(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Put(newFakeRun("a")))
	require.NoError(t, reg.Put(newFakeRun("b")))

	reg.Replace("a", newFakeRun("a"))

	var names []string
	for _, r := range reg.Snapshot() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)
}
