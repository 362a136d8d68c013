package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsframework/corescheduler/offer"
)

type fakeDriver struct {
	accepted int
	declined int
}

func (f *fakeDriver) AcceptOffers(ctx context.Context, agentID string, offerIDs []string, ops []offer.Operation) error {
	f.accepted++
	return nil
}

func (f *fakeDriver) DeclineOffer(ctx context.Context, offerID string, refuseSeconds int) error {
	f.declined++
	return nil
}

func TestSchedulerEndToEndSingleOfferBatch(t *testing.T) {
	driver := &fakeDriver{}
	s := New(Options{QueueCapacity: 10, Driver: driver})
	s.Processor.MarkInitialized()
	s.Start()
	defer s.Stop()

	s.Processor.Enqueue([]offer.Offer{{ID: "o1", AgentID: "a1"}})

	require.True(t, s.Processor.AwaitProcessed(time.Second))
}

func TestSchedulerHeartbeatReflectsProcessorIdle(t *testing.T) {
	driver := &fakeDriver{}
	s := New(Options{QueueCapacity: 10, Driver: driver})
	s.Processor.MarkInitialized()

	assert.True(t, s.Heartbeat.Healthy())
}
