package protocol

import "errors"

var (
	// ErrMalformedFrame is returned for a payload that claims a frame kind but
	// cannot be decoded as one. The frame must be dropped.
	ErrMalformedFrame = errors.New("malformed frame")

	ErrUnknownFrame = errors.New("unknown frame type")
)

// Client types announced over signaling.
const (
	ClientTypeCLI = "cli"
	ClientTypeWeb = "web"
)

// Codec converts frames to and from data channel payloads.
type Codec interface {
	Name() string
	Encode(f Frame) (Payload, error)
	Decode(p Payload) (Frame, error)
}

// SelectCodec determines which codec to use based on the peer's client type.
func SelectCodec(peerType string) Codec {
	if peerType == ClientTypeCLI {
		return TaggedCodec{}
	}

	// Browser peers only understand the text-sniffing format
	return LegacyCodec{}
}
