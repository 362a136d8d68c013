package specstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/run"
)

func TestStoreAndGetSpecID(t *testing.T) {
	s := New(NewFakePersister())

	specID, err := s.Store("svc-a", []byte("payload"), "widget")
	require.NoError(t, err)
	assert.Contains(t, specID, "widget-")

	got, ok, err := s.GetSpecID("svc-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, specID, got)
}

func TestStoreIsContentAddressedAcrossRuns(t *testing.T) {
	s := New(NewFakePersister())

	id1, err := s.Store("svc-a", []byte("same"), "widget")
	require.NoError(t, err)
	id2, err := s.Store("svc-b", []byte("same"), "widget")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
}

func TestStoreRejectsEmptyTypeOrNilData(t *testing.T) {
	s := New(NewFakePersister())

	_, err := s.Store("svc-a", []byte("x"), "")
	assert.Error(t, err)

	_, err = s.Store("svc-a", nil, "widget")
	assert.Error(t, err)
}

func TestStoreDetectsMismatchAsLogicError(t *testing.T) {
	persister := NewFakePersister()
	s := New(persister)

	specID, err := s.Store("svc-a", []byte("payload"), "widget")
	require.NoError(t, err)

	// Tamper with the persisted data directly to simulate a collision.
	require.NoError(t, persister.BatchPut(specNamespace(specID), map[string][]byte{dataKey: []byte("tampered")}))

	_, err = s.Store("svc-b", []byte("payload"), "widget")
	assert.ErrorIs(t, err, ErrLogicError)
}

func TestGetSpecIDNotFound(t *testing.T) {
	s := New(NewFakePersister())
	_, ok, err := s.GetSpecID("svc-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeGenerator struct {
	generated []string
}

func (g *fakeGenerator) Generate(name string, data []byte, uninstalling bool) (run.Run, error) {
	g.generated = append(g.generated, name)
	return run.NewActiveRun(name, stubScheduler{}), nil
}

type stubScheduler struct{}

func (stubScheduler) NextSteps(remaining []offer.Offer) (run.Result, []offer.Recommendation) {
	return run.Processed, nil
}

func TestRecoverReconstructsRuns(t *testing.T) {
	s := New(NewFakePersister())
	_, err := s.Store("svc-a", []byte("payload"), "widget")
	require.NoError(t, err)

	gen := &fakeGenerator{}
	runs, err := s.Recover(run.Generators{"widget": gen})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "svc-a", runs[0].Name())
}

func TestRecoverFailsLogicErrorOnUnknownType(t *testing.T) {
	s := New(NewFakePersister())
	_, err := s.Store("svc-a", []byte("payload"), "widget")
	require.NoError(t, err)

	_, err = s.Recover(run.Generators{})
	assert.ErrorIs(t, err, ErrLogicError)
}

func TestRecoverFailsLogicErrorOnMissingSpecID(t *testing.T) {
	persister := NewFakePersister()
	require.NoError(t, persister.BatchPut(runNamespace("svc-a"), map[string][]byte{"unrelated": []byte("x")}))
	s := New(persister)

	_, err := s.Recover(run.Generators{})
	assert.ErrorIs(t, err, ErrLogicError)
}
