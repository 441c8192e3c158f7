package relay

import "encoding/json"

// Message defines the structure for all C2S (Client to Server)
// and S2C (Server to Client) websocket messages.
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

	// client is the client that sent the message.
	// It's used internally by the Hub and not sent over JSON.
	client *Client `json:"-"`
}

const (
	typeCallUser     = "callUser"
	typeAnswerCall   = "answerCall"
	typeSendFeedback = "sendFeedback"
	typeMe           = "me"
	typeCallAccepted = "callAccepted"
	typeError        = "error"

	errPeerNotFound = "Peer not found"
)
