package peer

import (
	"fmt"
	"sync"

	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
)

// MemoryNetwork pairs links inside one process. The descriptor exchange is
// simulated: an initiator's offer carries its link id, and a responder that
// is signalled with it becomes its partner.
type MemoryNetwork struct {
	mu     sync.Mutex
	nextID int
	links  map[string]*memoryLink
}

func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{links: make(map[string]*memoryLink)}
}

func (n *MemoryNetwork) NewLink(role Role, h Handlers) (Link, error) {
	n.mu.Lock()
	n.nextID++
	l := &memoryLink{
		id:       fmt.Sprintf("mem-%d", n.nextID),
		role:     role,
		net:      n,
		handlers: h,
		events:   make(chan func(), 1024),
		done:     make(chan struct{}),
	}
	n.links[l.id] = l
	n.mu.Unlock()

	go l.run()

	if role == Initiator {
		l.post(func() {
			if h.OnDescriptor != nil {
				h.OnDescriptor(Descriptor{Type: DescriptorOffer, SDP: l.id})
			}
		})
	}
	return l, nil
}

func (n *MemoryNetwork) lookup(id string) *memoryLink {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.links[id]
}

// Fail injects a transport error into every open link.
func (n *MemoryNetwork) Fail(err error) {
	n.mu.Lock()
	links := make([]*memoryLink, 0, len(n.links))
	for _, l := range n.links {
		links = append(links, l)
	}
	n.mu.Unlock()

	for _, l := range links {
		l.post(func() {
			if l.handlers.OnError != nil {
				l.handlers.OnError(err)
			}
		})
	}
}

type memoryLink struct {
	id       string
	role     Role
	net      *MemoryNetwork
	handlers Handlers

	mu        sync.Mutex
	remote    *memoryLink
	connected bool
	closed    bool

	events chan func()
	done   chan struct{}
}

// run delivers events one at a time, in order, like a transport callback thread.
func (l *memoryLink) run() {
	for {
		select {
		case fn := <-l.events:
			if l.isClosed() {
				continue
			}
			fn()
		case <-l.done:
			return
		}
	}
}

func (l *memoryLink) post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

func (l *memoryLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *memoryLink) Signal(d Descriptor) error {
	if l.isClosed() {
		return ErrClosed
	}

	switch {
	case l.role == Responder && d.Type == DescriptorOffer:
		initiator := l.net.lookup(d.SDP)
		if initiator == nil || initiator.role != Initiator {
			return fmt.Errorf("%w: unknown offer %q", ErrUnexpectedSignal, d.SDP)
		}
		l.mu.Lock()
		l.remote = initiator
		l.mu.Unlock()

		l.post(func() {
			if l.handlers.OnDescriptor != nil {
				l.handlers.OnDescriptor(Descriptor{Type: DescriptorAnswer, SDP: l.id})
			}
		})
		return nil

	case l.role == Initiator && d.Type == DescriptorAnswer:
		responder := l.net.lookup(d.SDP)
		if responder == nil || responder.role != Responder {
			return fmt.Errorf("%w: unknown answer %q", ErrUnexpectedSignal, d.SDP)
		}
		responder.mu.Lock()
		matched := responder.remote == l
		responder.mu.Unlock()
		if !matched {
			return fmt.Errorf("%w: answer %q was not for this offer", ErrUnexpectedSignal, d.SDP)
		}

		l.mu.Lock()
		l.remote = responder
		l.mu.Unlock()

		responder.open()
		l.open()
		return nil

	default:
		return fmt.Errorf("%w: %s as %s", ErrUnexpectedSignal, d.Type, l.role)
	}
}

func (l *memoryLink) open() {
	l.mu.Lock()
	l.connected = true
	l.mu.Unlock()

	l.post(func() {
		if l.handlers.OnConnect != nil {
			l.handlers.OnConnect()
		}
	})
}

func (l *memoryLink) Send(p protocol.Payload) error {
	l.mu.Lock()
	closed, connected, remote := l.closed, l.connected, l.remote
	l.mu.Unlock()

	switch {
	case closed:
		return ErrClosed
	case !connected || remote == nil:
		return ErrNotOpen
	case remote.isClosed():
		return ErrNotOpen
	}

	msg := protocol.Payload{Data: append([]byte(nil), p.Data...), IsString: p.IsString}
	remote.post(func() {
		if remote.handlers.OnData != nil {
			remote.handlers.OnData(msg)
		}
	})
	return nil
}

// Close disposes this end and reports a close to the other end.
func (l *memoryLink) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	remote := l.remote
	l.mu.Unlock()

	close(l.done)

	l.net.mu.Lock()
	delete(l.net.links, l.id)
	l.net.mu.Unlock()

	if remote != nil {
		remote.post(func() {
			if remote.handlers.OnClose != nil {
				remote.handlers.OnClose()
			}
		})
	}
	return nil
}
