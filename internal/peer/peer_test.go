package peer

import (
	"errors"
	"testing"
	"time"

	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endpoint collects a link's events on channels.
type endpoint struct {
	descriptors chan Descriptor
	connected   chan struct{}
	data        chan protocol.Payload
	closed      chan struct{}
	errs        chan error
}

func newEndpoint() *endpoint {
	return &endpoint{
		descriptors: make(chan Descriptor, 4),
		connected:   make(chan struct{}, 4),
		data:        make(chan protocol.Payload, 64),
		closed:      make(chan struct{}, 4),
		errs:        make(chan error, 4),
	}
}

func (e *endpoint) handlers() Handlers {
	return Handlers{
		OnDescriptor: func(d Descriptor) { e.descriptors <- d },
		OnConnect:    func() { e.connected <- struct{}{} },
		OnData:       func(p protocol.Payload) { e.data <- p },
		OnClose:      func() { e.closed <- struct{}{} },
		OnError:      func(err error) { e.errs <- err },
	}
}

func recv[T any](t *testing.T, ch <-chan T, timeout time.Duration, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

// connectPair runs the single descriptor exchange between two links.
func connectPair(t *testing.T, f Factory, timeout time.Duration) (Link, *endpoint, Link, *endpoint) {
	t.Helper()

	a, b := newEndpoint(), newEndpoint()

	initiator, err := f.NewLink(Initiator, a.handlers())
	require.NoError(t, err)
	responder, err := f.NewLink(Responder, b.handlers())
	require.NoError(t, err)

	offer := recv(t, a.descriptors, timeout, "offer")
	assert.Equal(t, DescriptorOffer, offer.Type)
	require.NoError(t, responder.Signal(offer))

	answer := recv(t, b.descriptors, timeout, "answer")
	assert.Equal(t, DescriptorAnswer, answer.Type)
	require.NoError(t, initiator.Signal(answer))

	recv(t, a.connected, timeout, "initiator connect")
	recv(t, b.connected, timeout, "responder connect")
	return initiator, a, responder, b
}

func TestMemoryLinkExchange(t *testing.T) {
	initiator, _, responder, b := connectPair(t, NewMemoryNetwork(), time.Second)
	defer initiator.Close()
	defer responder.Close()

	for i := range 10 {
		require.NoError(t, initiator.Send(protocol.Payload{Data: []byte{byte(i)}}))
	}
	require.NoError(t, initiator.Send(protocol.Payload{Data: []byte("ping"), IsString: true}))

	for i := range 10 {
		p := recv(t, b.data, time.Second, "chunk")
		assert.Equal(t, []byte{byte(i)}, p.Data)
	}
	p := recv(t, b.data, time.Second, "text")
	assert.True(t, p.IsString)
}

func TestMemoryLinkSendBeforeConnect(t *testing.T) {
	l, err := NewMemoryNetwork().NewLink(Initiator, Handlers{})
	require.NoError(t, err)
	defer l.Close()

	assert.ErrorIs(t, l.Send(protocol.Payload{Data: []byte("x")}), ErrNotOpen)
}

func TestMemoryLinkCloseNotifiesRemoteOnly(t *testing.T) {
	initiator, a, responder, b := connectPair(t, NewMemoryNetwork(), time.Second)
	defer responder.Close()

	require.NoError(t, initiator.Close())
	recv(t, b.closed, time.Second, "remote close")

	select {
	case <-a.closed:
		t.Fatal("disposed link must not report its own close")
	case <-time.After(50 * time.Millisecond):
	}

	assert.ErrorIs(t, initiator.Send(protocol.Payload{Data: []byte("x")}), ErrClosed)
	assert.ErrorIs(t, responder.Send(protocol.Payload{Data: []byte("x")}), ErrNotOpen)
}

func TestMemoryNetworkFail(t *testing.T) {
	net := NewMemoryNetwork()
	initiator, a, responder, b := connectPair(t, net, time.Second)
	defer initiator.Close()
	defer responder.Close()

	boom := errors.New("boom")
	net.Fail(boom)
	assert.ErrorIs(t, recv(t, a.errs, time.Second, "initiator error"), boom)
	assert.ErrorIs(t, recv(t, b.errs, time.Second, "responder error"), boom)
}

func TestMemoryLinkRejectsWrongSignal(t *testing.T) {
	l, err := NewMemoryNetwork().NewLink(Initiator, Handlers{})
	require.NoError(t, err)
	defer l.Close()

	assert.ErrorIs(t, l.Signal(Descriptor{Type: DescriptorOffer, SDP: "mem-9"}), ErrUnexpectedSignal)
}

func TestPionLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping WebRTC loopback in short mode")
	}

	f := &PionFactory{IncludeLoopback: true}
	initiator, _, responder, b := connectPair(t, f, 20*time.Second)
	defer initiator.Close()
	defer responder.Close()

	require.NoError(t, initiator.Send(protocol.Payload{Data: []byte("ping"), IsString: true}))
	require.NoError(t, initiator.Send(protocol.Payload{Data: []byte{0, 1, 2}}))

	p := recv(t, b.data, 5*time.Second, "text message")
	assert.Equal(t, "ping", string(p.Data))
	assert.True(t, p.IsString)

	p = recv(t, b.data, 5*time.Second, "binary message")
	assert.Equal(t, []byte{0, 1, 2}, p.Data)
	assert.False(t, p.IsString)
}
