package uninstall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeregisterStepHappyPath(t *testing.T) {
	var transitions [][2]State
	d := NewDeregisterStep(func(from, to State) {
		transitions = append(transitions, [2]State{from, to})
	})

	assert.Equal(t, Pending, d.State())

	require.NoError(t, d.Start())
	assert.Equal(t, Prepared, d.State())

	require.NoError(t, d.Unregistered())
	assert.Equal(t, Complete, d.State())
	assert.True(t, d.Done())

	assert.Equal(t, [][2]State{{Pending, Prepared}, {Prepared, Complete}}, transitions)
}

func TestDeregisterStepRejectsOutOfOrderTransitions(t *testing.T) {
	d := NewDeregisterStep(nil)

	err := d.Unregistered()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Pending, d.State())
}

func TestDeregisterStepRejectsDoubleStart(t *testing.T) {
	d := NewDeregisterStep(nil)
	require.NoError(t, d.Start())

	err := d.Start()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Prepared, d.State())
}
