// Package session tracks the lifecycle of the single active peer
// connection and owns its transport handle.
package session

import (
	"errors"
	"fmt"

	"github.com/jeettech-root/QuickShare-P2P/internal/peer"
)

var ErrInvalidTransition = errors.New("invalid session transition")

type State int

const (
	Idle State = iota
	Calling
	Ringing
	Connected
	Closed
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Calling:
		return "calling"
	case Ringing:
		return "ringing"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Event int

const (
	EventDial Event = iota
	EventIncomingCall
	EventAccept
	EventConnected
	EventClosed
	EventError
)

func (e Event) String() string {
	switch e {
	case EventDial:
		return "dial"
	case EventIncomingCall:
		return "incoming-call"
	case EventAccept:
		return "accept"
	case EventConnected:
		return "transport-connected"
	case EventClosed:
		return "transport-closed"
	case EventError:
		return "transport-error"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Next is the transition table. It reports false when ev is not valid in
// from. Connected is only reachable through EventConnected.
func Next(from State, ev Event) (State, bool) {
	switch ev {
	case EventDial:
		if from != Connected {
			return Calling, true
		}

	case EventIncomingCall:
		switch from {
		case Idle, Ringing, Closed, Error:
			return Ringing, true
		}

	case EventAccept:
		if from == Ringing {
			return Ringing, true
		}

	case EventConnected:
		if from == Calling || from == Ringing {
			return Connected, true
		}

	case EventClosed:
		switch from {
		case Calling, Ringing, Connected:
			return Closed, true
		}

	case EventError:
		switch from {
		case Calling, Ringing, Connected, Closed:
			return Error, true
		}
	}
	return from, false
}

// Session is one active or pending connection attempt.
type Session struct {
	LocalID  string
	RemoteID string

	// RemoteName is supplied by the caller and is never trusted.
	RemoteName string

	// PeerClientType is the client type the remote side announced.
	PeerClientType string

	Role     peer.Role
	State    State
	Accepted bool
}

// Apply moves the session through ev. A ringing session accepts newer
// callers only until the local user has accepted.
func (s *Session) Apply(ev Event) error {
	if s.State == Ringing && s.Accepted && (ev == EventIncomingCall || ev == EventAccept) {
		return fmt.Errorf("%w: %s while %s (accepted)", ErrInvalidTransition, ev, s.State)
	}

	next, ok := Next(s.State, ev)
	if !ok {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev, s.State)
	}

	if ev == EventAccept {
		s.Accepted = true
	}
	s.State = next
	return nil
}
