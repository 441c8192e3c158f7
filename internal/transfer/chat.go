package transfer

import (
	"sync"
	"time"
)

// Sender tags who wrote a chat message.
type Sender int

const (
	Local Sender = iota
	Remote
)

func (s Sender) String() string {
	if s == Local {
		return "local"
	}
	return "remote"
}

type ChatMessage struct {
	Sender Sender
	Text   string
	At     time.Time
}

// ChatLog is an append-only, in-memory conversation.
type ChatLog struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

func NewChatLog() *ChatLog {
	return &ChatLog{}
}

func (l *ChatLog) Append(from Sender, text string) ChatMessage {
	msg := ChatMessage{Sender: from, Text: text, At: time.Now()}

	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	return msg
}

// Messages returns a copy of the log in append order.
func (l *ChatLog) Messages() []ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *ChatLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
