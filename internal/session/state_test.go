package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTable(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
		to   State
		ok   bool
	}{
		{Idle, EventDial, Calling, true},
		{Calling, EventDial, Calling, true},
		{Ringing, EventDial, Calling, true},
		{Closed, EventDial, Calling, true},
		{Error, EventDial, Calling, true},
		{Connected, EventDial, Connected, false},

		{Idle, EventIncomingCall, Ringing, true},
		{Ringing, EventIncomingCall, Ringing, true},
		{Closed, EventIncomingCall, Ringing, true},
		{Error, EventIncomingCall, Ringing, true},
		{Calling, EventIncomingCall, Calling, false},
		{Connected, EventIncomingCall, Connected, false},

		{Ringing, EventAccept, Ringing, true},
		{Idle, EventAccept, Idle, false},

		{Calling, EventConnected, Connected, true},
		{Ringing, EventConnected, Connected, true},
		{Idle, EventConnected, Idle, false},
		{Closed, EventConnected, Closed, false},

		{Connected, EventClosed, Closed, true},
		{Calling, EventClosed, Closed, true},
		{Ringing, EventClosed, Closed, true},
		{Idle, EventClosed, Idle, false},

		{Connected, EventError, Error, true},
		{Closed, EventError, Error, true},
		{Idle, EventError, Idle, false},
	}

	for _, tc := range cases {
		t.Run(tc.from.String()+"/"+tc.ev.String(), func(t *testing.T) {
			to, ok := Next(tc.from, tc.ev)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.to, to)
		})
	}
}

func TestApplyAcceptedRingingIgnoresNewCallers(t *testing.T) {
	s := Session{State: Idle}

	require.NoError(t, s.Apply(EventIncomingCall))
	require.NoError(t, s.Apply(EventIncomingCall), "a newer caller replaces one not yet accepted")
	require.NoError(t, s.Apply(EventAccept))
	assert.True(t, s.Accepted)

	assert.ErrorIs(t, s.Apply(EventIncomingCall), ErrInvalidTransition)
	assert.ErrorIs(t, s.Apply(EventAccept), ErrInvalidTransition)
	assert.Equal(t, Ringing, s.State)

	require.NoError(t, s.Apply(EventConnected))
	assert.Equal(t, Connected, s.State)
}

func TestApplyRejectsWithoutChangingState(t *testing.T) {
	s := Session{State: Connected}
	err := s.Apply(EventDial)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Connected, s.State)
}
