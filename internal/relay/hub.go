package relay

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Hub is the central brain of the signaling relay.
// It owns the identity table; only Run touches it.
type Hub struct {
	clients map[string]*Client

	// Register is a channel for registering new clients.
	Register chan *Client

	// Unregister is a channel for unregistering clients.
	Unregister chan *Client

	// Broadcast carries every message read from a client.
	Broadcast chan *Message

	feedback FeedbackSink
	logger   *slog.Logger

	// done is closed when Run returns.
	done chan struct{}
}

// NewHub creates a new Hub instance.
func NewHub(feedback FeedbackSink, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if feedback == nil {
		feedback = NewLogFeedbackSink(logger)
	}
	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *Message, 64),
		feedback:   feedback,
		logger:     logger.With("component", "hub"),
		done:       make(chan struct{}),
	}
}

// generateID creates a random, memorable identity using word combinations.
// Format: word-word-word-word (e.g., "kitten-waffle-stardust-happy")
// Randomly picks 4 words from 4 distinct word lists.
func (h *Hub) generateID() string {
	allWords := [][]string{animals, dishes, names, randomWords, adjectives, extras}

	for {
		// shuffle list indices and take the first four
		order := make([]int, len(allWords))
		for i := range order {
			order[i] = i
		}
		for i := len(order) - 1; i > 0; i-- {
			j := randomIndex(i + 1)
			order[i], order[j] = order[j], order[i]
		}

		words := make([]string, 4)
		for i := range words {
			list := allWords[order[i]]
			words[i] = list[randomIndex(len(list))]
		}

		id := strings.Join(words, "-")
		if _, ok := h.clients[id]; !ok {
			return id
		}
	}
}

// randomIndex returns a cryptographically secure random index for a slice of given length.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(fmt.Sprintf("failed to generate random index: %v", err))
	}
	return int(n.Int64())
}

// Run starts the hub's main processing loop.
// This is the single goroutine that safely manages all state.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				delete(h.clients, id)
				close(c.Send)
			}
			return

		case client := <-h.Register:
			client.ID = h.generateID()
			h.clients[client.ID] = client
			h.logger.Info("client registered", "id", client.ID, "remote", client.Conn.RemoteAddr().String())
			h.deliver(client, &Message{Type: typeMe, ID: client.ID})

		case client := <-h.Unregister:
			if current, ok := h.clients[client.ID]; ok && current == client {
				delete(h.clients, client.ID)
				close(client.Send)
				h.logger.Info("client unregistered", "id", client.ID)
			}

		case message := <-h.Broadcast:
			h.handle(ctx, message)
		}
	}
}

func (h *Hub) handle(ctx context.Context, message *Message) {
	sender := message.client
	if current, ok := h.clients[sender.ID]; !ok || current != sender {
		// sender disconnected while the message was queued
		return
	}

	switch message.Type {
	case typeCallUser:
		target, ok := h.clients[message.UserToCall]
		if !ok {
			h.logger.Info("call failed: peer not found", "from", sender.ID, "to", message.UserToCall)
			h.deliver(sender, &Message{Type: typeError, Error: errPeerNotFound})
			return
		}

		h.logger.Info("relaying call", "from", sender.ID, "to", target.ID, "client_type", message.ClientType)
		// from is always the sender's real identity, whatever it claimed
		h.deliver(target, &Message{
			Type:       typeCallUser,
			From:       sender.ID,
			Name:       message.Name,
			Signal:     message.Signal,
			ClientType: message.ClientType,
		})

	case typeAnswerCall:
		target, ok := h.clients[message.To]
		if !ok {
			h.logger.Info("answer failed: peer not found", "from", sender.ID, "to", message.To)
			h.deliver(sender, &Message{Type: typeError, Error: errPeerNotFound})
			return
		}

		h.logger.Info("relaying answer", "from", sender.ID, "to", target.ID)
		h.deliver(target, &Message{
			Type:       typeCallAccepted,
			From:       sender.ID,
			Signal:     message.Signal,
			ClientType: message.ClientType,
		})

	case typeSendFeedback:
		text := strings.TrimSpace(message.Text)
		if text == "" {
			return
		}
		fb := Feedback{
			ID:         uuid.NewString(),
			From:       sender.ID,
			Text:       text,
			ReceivedAt: time.Now().UTC(),
		}
		go func() {
			if err := h.feedback.Save(ctx, fb); err != nil {
				h.logger.Error("failed to store feedback", "id", fb.ID, "error", err)
			}
		}()

	default:
		h.logger.Warn("unknown message type", "type", message.Type, "from", sender.ID)
	}
}

// register hands c to the loop. It reports false once the hub has stopped.
func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) broadcast(msg *Message) bool {
	select {
	case h.Broadcast <- msg:
		return true
	case <-h.done:
		return false
	}
}

// deliver never blocks the hub; a client that cannot keep up loses messages.
func (h *Hub) deliver(c *Client, msg *Message) {
	select {
	case c.Send <- msg:
	default:
		h.logger.Warn("client send buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}
