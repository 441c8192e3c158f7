// Package peer wraps the direct peer-to-peer transport behind a small
// interface: one descriptor exchange, one ordered data channel.
package peer

import (
	"errors"
	"fmt"

	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
)

var (
	ErrClosed           = errors.New("link closed")
	ErrNotOpen          = errors.New("data channel not open")
	ErrConnectionFailed = errors.New("peer connection failed")
	ErrUnexpectedSignal = errors.New("unexpected signal type")
)

// Role decides which side creates the offer.
type Role int

const (
	Initiator Role = iota
	Responder
)

func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Descriptor is a complete, non-trickled session description.
type Descriptor struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

const (
	DescriptorOffer  = "offer"
	DescriptorAnswer = "answer"
)

// Handlers receive link events. Any of them may be nil. After Close returns
// no handler is invoked again.
type Handlers struct {
	OnDescriptor func(Descriptor)
	OnConnect    func()
	OnData       func(protocol.Payload)
	OnClose      func()
	OnError      func(error)
}

// Link is a single peer connection carrying one data channel.
type Link interface {
	// Signal applies the remote side's descriptor.
	Signal(d Descriptor) error
	Send(p protocol.Payload) error
	Close() error
}

// Factory builds links. The initiator's first descriptor is emitted without
// any input; the responder emits one after its first Signal.
type Factory interface {
	NewLink(role Role, h Handlers) (Link, error)
}
