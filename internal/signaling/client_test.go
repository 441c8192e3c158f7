package signaling

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jeettech-root/QuickShare-P2P/internal/peer"
	"github.com/jeettech-root/QuickShare-P2P/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := relay.NewHub(nil, nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(relay.NewRouter(hub, nil))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func connect(t *testing.T, url string) (*Client, *Handler, string) {
	t.Helper()

	c := NewClient(url, "cli", nil)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(c.Close)

	h := NewHandler(c)
	go h.Start()

	select {
	case id := <-h.Identity:
		require.NotEmpty(t, id)
		return c, h, id
	case <-time.After(3 * time.Second):
		t.Fatal("no identity from relay")
	}
	return nil, nil, ""
}

func TestCallRoundTrip(t *testing.T) {
	url := startRelay(t)
	alice, aliceH, aliceID := connect(t, url)
	bob, bobH, bobID := connect(t, url)

	offer := peer.Descriptor{Type: peer.DescriptorOffer, SDP: "v=0 offer"}
	require.NoError(t, alice.CallUser(bobID, offer, aliceID, "Alice"))

	var call IncomingCall
	select {
	case call = <-bobH.IncomingCall:
	case <-time.After(3 * time.Second):
		t.Fatal("call not relayed")
	}
	assert.Equal(t, aliceID, call.From)
	assert.Equal(t, "Alice", call.Name)
	assert.Equal(t, "cli", call.ClientType)
	assert.Equal(t, offer, call.Signal)

	answer := peer.Descriptor{Type: peer.DescriptorAnswer, SDP: "v=0 answer"}
	require.NoError(t, bob.AnswerCall(call.From, answer))

	select {
	case acc := <-aliceH.CallAccepted:
		assert.Equal(t, answer, acc.Signal)
		assert.Equal(t, bobID, acc.From)
		assert.Equal(t, "cli", acc.ClientType)
	case <-time.After(3 * time.Second):
		t.Fatal("answer not relayed")
	}
}

func TestCallUnknownPeer(t *testing.T) {
	url := startRelay(t)
	alice, aliceH, aliceID := connect(t, url)

	require.NoError(t, alice.CallUser("nobody-here", peer.Descriptor{Type: "offer", SDP: "x"}, aliceID, ""))

	select {
	case msg := <-aliceH.Error:
		assert.Equal(t, "Peer not found", msg)
	case <-time.After(3 * time.Second):
		t.Fatal("no error from relay")
	}
}

func TestSendAfterClose(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws", "cli", nil)
	c.Close()
	c.Close()
	assert.ErrorIs(t, c.SendFeedback("hi"), ErrClientClosed)
}

func TestHandlerDropsMalformedSignal(t *testing.T) {
	c := NewClient("ws://unused", "cli", nil)
	h := NewHandler(c)

	go func() {
		c.incoming <- &Message{Type: MessageTypeCallUser, From: "x", Signal: []byte(`not json`)}
		c.incoming <- &Message{Type: MessageTypeCallUser, From: "y", Signal: []byte(`{"type":"offer","sdp":"s"}`)}
		close(c.incoming)
	}()
	h.Start()

	var calls []IncomingCall
	for call := range h.IncomingCall {
		calls = append(calls, call)
	}
	require.Len(t, calls, 1)
	assert.Equal(t, "y", calls[0].From)
}
