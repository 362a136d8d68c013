package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsframework/corescheduler/offer"
)

func TestOfferAndTakeAllPreservesFIFO(t *testing.T) {
	q := New(0)
	require.True(t, q.Offer(offer.Offer{ID: "o1"}))
	require.True(t, q.Offer(offer.Offer{ID: "o2"}))
	require.True(t, q.Offer(offer.Offer{ID: "o3"}))

	got := q.TakeAll()
	var ids []string
	for _, o := range got {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"o1", "o2", "o3"}, ids)
	assert.Equal(t, 0, q.Len())
}

func TestOfferRejectsWhenFull(t *testing.T) {
	q := New(2)
	require.True(t, q.Offer(offer.Offer{ID: "o1"}))
	require.True(t, q.Offer(offer.Offer{ID: "o2"}))
	assert.False(t, q.Offer(offer.Offer{ID: "o3"}))
}

func TestRemoveRescindsPreservingOrder(t *testing.T) {
	q := New(0)
	q.Offer(offer.Offer{ID: "o1"})
	q.Offer(offer.Offer{ID: "o2"})
	q.Offer(offer.Offer{ID: "o3"})

	assert.True(t, q.Remove("o2"))
	assert.False(t, q.Remove("o2"))

	got := q.TakeAll()
	var ids []string
	for _, o := range got {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"o1", "o3"}, ids)
}

func TestCloseWakesBlockedTakeAllWithEmptyBatch(t *testing.T) {
	q := New(0)
	done := make(chan []offer.Offer, 1)

	go func() {
		done <- q.TakeAll()
	}()

	select {
	case <-done:
		t.Fatal("TakeAll returned before Close")
	case <-time.After(50 * time.Millisecond):
	}

	q.Close()

	select {
	case got := <-done:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("TakeAll did not unblock after Close")
	}

	assert.True(t, q.Closed())
}

func TestTakeAllAfterCloseReturnsEmptyImmediately(t *testing.T) {
	q := New(0)
	q.Offer(offer.Offer{ID: "o1"})
	q.Close()

	assert.Empty(t, q.TakeAll())
}

func TestOfferRejectedAfterClose(t *testing.T) {
	q := New(0)
	q.Close()
	assert.False(t, q.Offer(offer.Offer{ID: "o1"}))
}

func TestCloseIsIdempotent(t *testing.T) {
	q := New(0)
	q.Close()
	q.Close()
	assert.True(t, q.Closed())
}

func TestTakeAllBlocksUntilOffered(t *testing.T) {
	q := New(0)
	done := make(chan []offer.Offer, 1)

	go func() {
		done <- q.TakeAll()
	}()

	select {
	case <-done:
		t.Fatal("TakeAll returned before any offer was enqueued")
	case <-time.After(50 * time.Millisecond):
	}

	q.Offer(offer.Offer{ID: "o1"})

	select {
	case got := <-done:
		require.Len(t, got, 1)
		assert.Equal(t, "o1", got[0].ID)
	case <-time.After(time.Second):
		t.Fatal("TakeAll did not unblock after offer")
	}
}
