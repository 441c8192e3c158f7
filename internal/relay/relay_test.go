package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jeettech-root/QuickShare-P2P/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingSink struct {
	mu      sync.Mutex
	records []Feedback
	saved   chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{saved: make(chan struct{}, 8)}
}

func (s *recordingSink) Save(_ context.Context, fb Feedback) error {
	s.mu.Lock()
	s.records = append(s.records, fb)
	s.mu.Unlock()
	s.saved <- struct{}{}
	return nil
}

func startRelay(t *testing.T, sink FeedbackSink, origins ...string) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(sink, nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(hub, origins))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

type testConn struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dial(t *testing.T, srv *httptest.Server) *testConn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := &testConn{t: t, conn: conn}
	me := c.read()
	require.Equal(t, typeMe, me.Type)
	c.id = me.ID
	return c
}

func (c *testConn) read() Message {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

func (c *testConn) write(msg Message) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func TestIdentityAssigned(t *testing.T) {
	srv := startRelay(t, nil)

	a := dial(t, srv)
	b := dial(t, srv)

	assert.Len(t, strings.Split(a.id, "-"), 4)
	assert.NotEqual(t, a.id, b.id)
}

func TestCallAndAnswerRelayed(t *testing.T) {
	srv := startRelay(t, nil)
	a := dial(t, srv)
	b := dial(t, srv)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	a.write(Message{
		Type:       typeCallUser,
		UserToCall: b.id,
		From:       "someone-else",
		Name:       "Alice",
		Signal:     offer,
		ClientType: "cli",
	})

	call := b.read()
	assert.Equal(t, typeCallUser, call.Type)
	assert.Equal(t, a.id, call.From)
	assert.Equal(t, "Alice", call.Name)
	assert.Equal(t, "cli", call.ClientType)
	assert.JSONEq(t, string(offer), string(call.Signal))

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	b.write(Message{Type: typeAnswerCall, To: call.From, Signal: answer, ClientType: "web"})

	accepted := a.read()
	assert.Equal(t, typeCallAccepted, accepted.Type)
	assert.Equal(t, "web", accepted.ClientType)
	assert.Equal(t, b.id, accepted.From)
	assert.JSONEq(t, string(answer), string(accepted.Signal))
}

func TestUnknownPeer(t *testing.T) {
	srv := startRelay(t, nil)
	a := dial(t, srv)

	a.write(Message{Type: typeCallUser, UserToCall: "no-such-peer", Signal: json.RawMessage(`{}`)})
	msg := a.read()
	assert.Equal(t, typeError, msg.Type)
	assert.Equal(t, errPeerNotFound, msg.Error)

	a.write(Message{Type: typeAnswerCall, To: "no-such-peer", Signal: json.RawMessage(`{}`)})
	msg = a.read()
	assert.Equal(t, errPeerNotFound, msg.Error)
}

func TestFeedbackStored(t *testing.T) {
	sink := newRecordingSink()
	srv := startRelay(t, sink)
	a := dial(t, srv)

	a.write(Message{Type: typeSendFeedback, Text: "  works great  "})

	select {
	case <-sink.saved:
	case <-time.After(3 * time.Second):
		t.Fatal("feedback not stored")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.records, 1)
	assert.Equal(t, "works great", sink.records[0].Text)
	assert.Equal(t, a.id, sink.records[0].From)
	_, err := uuid.Parse(sink.records[0].ID)
	assert.NoError(t, err)
}

func TestHealth(t *testing.T) {
	srv := startRelay(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOriginFilter(t *testing.T) {
	router := gin.New()
	router.Use(OriginFilter([]string{"https://ok.example"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		origin string
		want   int
	}{
		{"", http.StatusOK},
		{"https://ok.example", http.StatusOK},
		{"https://evil.example", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "origin %q", tc.origin)
	}
}

func TestRedisSinkUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewRedisFeedbackSink(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
