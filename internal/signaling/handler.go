package signaling

import (
	"encoding/json"
	"log/slog"

	"github.com/jeettech-root/QuickShare-P2P/internal/peer"
)

// Handler routes incoming signaling messages to typed channels. All
// channels are closed once the connection ends.
type Handler struct {
	client       *Client
	logger       *slog.Logger
	Identity     chan string
	IncomingCall chan IncomingCall
	CallAccepted chan CallAccepted
	Error        chan string
}

// NewHandler creates a new message handler.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:       client,
		logger:       client.logger,
		Identity:     make(chan string, 1),
		IncomingCall: make(chan IncomingCall, 8),
		CallAccepted: make(chan CallAccepted, 8),
		Error:        make(chan string, 8),
	}
}

// Start begins listening to incoming messages and routing them. It returns
// when the connection closes.
func (h *Handler) Start() {
	defer h.close()

	for msg := range h.client.Incoming() {
		switch msg.Type {
		case MessageTypeMe:
			h.Identity <- msg.ID

		case MessageTypeCallUser:
			h.handleCallUser(msg)

		case MessageTypeCallAccepted:
			h.handleCallAccepted(msg)

		case MessageTypeError:
			errMsg := msg.Error
			if errMsg == "" {
				errMsg = "Unknown error from server"
			}
			h.Error <- errMsg

		default:
			h.logger.Debug("ignoring message", "type", msg.Type)
		}
	}
}

func (h *Handler) handleCallUser(msg *Message) {
	signal, ok := h.decodeSignal(msg)
	if !ok {
		return
	}
	h.IncomingCall <- IncomingCall{
		From:       msg.From,
		Name:       msg.Name,
		ClientType: msg.ClientType,
		Signal:     signal,
	}
}

func (h *Handler) handleCallAccepted(msg *Message) {
	signal, ok := h.decodeSignal(msg)
	if !ok {
		return
	}
	h.CallAccepted <- CallAccepted{
		From:       msg.From,
		ClientType: msg.ClientType,
		Signal:     signal,
	}
}

// decodeSignal drops messages whose descriptor cannot be parsed.
func (h *Handler) decodeSignal(msg *Message) (peer.Descriptor, bool) {
	var d peer.Descriptor
	if len(msg.Signal) == 0 {
		h.logger.Warn("signal missing", "type", msg.Type)
		return d, false
	}
	if err := json.Unmarshal(msg.Signal, &d); err != nil || d.SDP == "" {
		h.logger.Warn("malformed signal", "type", msg.Type, "error", err)
		return d, false
	}
	return d, true
}

func (h *Handler) close() {
	close(h.Identity)
	close(h.IncomingCall)
	close(h.CallAccepted)
	close(h.Error)
}
