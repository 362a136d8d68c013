package run

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/reservation"
)

func TestUninstallingRunFirstPassAlwaysNotReady(t *testing.T) {
	u := NewUninstallingRun("svc", reservation.NewExpectedSet())

	result, recs := u.Offers(nil)
	assert.Equal(t, NotReady, result)
	assert.Empty(t, recs)
}

func TestUninstallingRunReportsUninstalledOnceOutstandingEmpty(t *testing.T) {
	u := NewUninstallingRun("svc", reservation.NewExpectedSet())
	u.Offers(nil) // first pass: always NOT_READY

	result, _ := u.Offers(nil)
	assert.Equal(t, Uninstalled, result)
}

func TestUninstallingRunStaysNotReadyWithOutstanding(t *testing.T) {
	u := NewUninstallingRun("svc", reservation.NewExpectedSet("r1"))
	u.Offers(nil)

	result, _ := u.Offers(nil)
	assert.Equal(t, NotReady, result)
}

func TestUninstallingRunUnexpectedResourcesReleasesEverythingAndClearsOutstanding(t *testing.T) {
	u := NewUninstallingRun("svc", reservation.NewExpectedSet("r1"))

	result, toRelease := u.UnexpectedResources([]offer.Offer{{
		ID:        "O1",
		Resources: []offer.Resource{{Kind: offer.ReservedScalar, ResourceID: "r1"}},
	}})

	assert.Equal(t, Processed, result)
	assert.Len(t, toRelease, 1)
	assert.Empty(t, u.outstanding)
}

func TestUninstallingRunToUninstallIsIdempotent(t *testing.T) {
	u := NewUninstallingRun("svc", reservation.NewExpectedSet())
	assert.Same(t, Run(u), u.ToUninstall())
}
