package signaling

import (
	"encoding/json"

	"github.com/jeettech-root/QuickShare-P2P/internal/peer"
)

// Message represents all WebSocket messages between a client and the relay.
// Field names follow the browser client's wire shapes.
type Message struct {
	Type       string          `json:"type"`
	ID         string          `json:"id,omitempty"`
	UserToCall string          `json:"userToCall,omitempty"`
	To         string          `json:"to,omitempty"`
	From       string          `json:"from,omitempty"`
	Name       string          `json:"name,omitempty"`
	Signal     json.RawMessage `json:"signal,omitempty"`
	ClientType string          `json:"client_type,omitempty"`
	Text       string          `json:"text,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Message type constants.
const (
	MessageTypeCallUser     = "callUser"
	MessageTypeAnswerCall   = "answerCall"
	MessageTypeSendFeedback = "sendFeedback"

	MessageTypeMe           = "me"
	MessageTypeCallAccepted = "callAccepted"
	MessageTypeError        = "error"
)

// IncomingCall is a call request relayed from another endpoint. Name is
// chosen by the caller and must not be trusted.
type IncomingCall struct {
	From       string
	Name       string
	ClientType string
	Signal     peer.Descriptor
}

// CallAccepted carries the callee's answer.
type CallAccepted struct {
	From       string
	ClientType string
	Signal     peer.Descriptor
}
