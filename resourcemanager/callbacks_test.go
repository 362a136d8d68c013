package resourcemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/offer/processor"
	"github.com/opsframework/corescheduler/offer/queue"
	"github.com/opsframework/corescheduler/run"
)

type fakeFrameworkIDs struct {
	id  string
	set bool
}

func (f *fakeFrameworkIDs) FrameworkID() (string, bool, error) { return f.id, f.set, nil }
func (f *fakeFrameworkIDs) SetFrameworkID(id string) error {
	f.id = id
	f.set = true
	return nil
}

type noopMultiplexer struct{}

func (noopMultiplexer) HandleOffers(batch []offer.Offer) (run.Result, []offer.Recommendation) {
	return run.Processed, nil
}

type noopDecliner struct{}

func (noopDecliner) Decline(offer.Offer, int) {}

func TestCallbacksRegisteredPersistsFrameworkIDAndInitializes(t *testing.T) {
	q := queue.New(0)
	proc := processor.New(q, noopMultiplexer{}, noopDecliner{}, tally.NoopScope, nil, true)
	manager := run.NewManager()
	ids := &fakeFrameworkIDs{}

	cb := New(proc, manager, ids)
	var exitCode int
	cb.Exit = func(code int) { exitCode = code }

	cb.Registered("fw-123")

	gotID, found, err := ids.FrameworkID()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "fw-123", gotID)
	assert.True(t, manager.HasRegistered())
	assert.Equal(t, 0, exitCode)
}

func TestCallbacksDisconnectedExitsWithDisconnectedCode(t *testing.T) {
	q := queue.New(0)
	proc := processor.New(q, noopMultiplexer{}, noopDecliner{}, tally.NoopScope, nil, true)
	manager := run.NewManager()
	cb := New(proc, manager, &fakeFrameworkIDs{})

	var exitCode int
	cb.Exit = func(code int) { exitCode = code }

	cb.Disconnected()
	assert.Equal(t, offer.ExitDisconnected, exitCode)
}
