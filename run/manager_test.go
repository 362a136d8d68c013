package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerPutCallsRegisteredWhenAlreadyRegistered(t *testing.T) {
	m := NewManager()
	m.Registered(false)

	r := NewActiveRun("a", stubScheduler{result: Processed})
	require.NoError(t, m.Put(r))

	got, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, r, got)

	r.mu.RLock()
	registered := r.reg
	r.mu.RUnlock()
	assert.True(t, registered)
}

func TestManagerStartUninstallSwapsInReplacement(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Put(newFakeRun("a")))

	m.StartUninstall([]string{"a"})

	got, ok := m.Get("a")
	require.True(t, ok)
	_, isUninstalling := got.(*UninstallingRun)
	assert.True(t, isUninstalling)
}

func TestManagerStartUninstallSkipsUnknownAndAlreadyUninstalling(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Put(newFakeRun("a")))

	m.StartUninstall([]string{"missing", "a", "a"})

	got, ok := m.Get("a")
	require.True(t, ok)
	_, isUninstalling := got.(*UninstallingRun)
	assert.True(t, isUninstalling)
}

func TestManagerRemoveReturnsRemainingCount(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Put(newFakeRun("a")))
	require.NoError(t, m.Put(newFakeRun("b")))

	remaining := m.Remove([]string{"a"})
	assert.Equal(t, 1, remaining)
}

func TestManagerNamesSorted(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Put(newFakeRun("b")))
	require.NoError(t, m.Put(newFakeRun("a")))

	assert.Equal(t, []string{"a", "b"}, m.Names())
}
