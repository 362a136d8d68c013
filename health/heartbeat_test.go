package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uber-go/tally"
)

func TestHeartbeatSamplesProbe(t *testing.T) {
	h := New(tally.NoopScope, 5*time.Millisecond, func() bool { return false })
	h.Start()
	defer h.Stop()

	assert.Eventually(t, func() bool { return !h.Healthy() }, time.Second, time.Millisecond)
}

func TestHeartbeatStartTwiceIsNoop(t *testing.T) {
	h := New(tally.NoopScope, 5*time.Millisecond, func() bool { return true })
	h.Start()
	h.Start()
	h.Stop()
}

func TestHeartbeatDefaultsHealthy(t *testing.T) {
	h := New(tally.NoopScope, time.Second, func() bool { return true })
	assert.True(t, h.Healthy())
}
