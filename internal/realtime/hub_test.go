package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/models"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r, r.URL.Query().Get("uid")); err != nil {
			t.Logf("serve ws: %v", err)
		}
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + uid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var welcome Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, "connected", welcome.Type)
	return conn
}

func waitConnected(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connected() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubDeliversToRecipientsOnly(t *testing.T) {
	hub, srv := startHub(t)
	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitConnected(t, hub, 2)

	hub.Publish(context.Background(), models.SocialEvent{
		Type:       models.EventStateShared,
		ActorID:    "carol",
		StateID:    "s1",
		Recipients: []string{"alice"},
	})

	var got struct {
		Type    string             `json:"type"`
		Payload models.SocialEvent `json:"payload"`
	}
	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, alice.ReadJSON(&got))
	assert.Equal(t, models.EventStateShared, got.Type)
	assert.Equal(t, "s1", got.Payload.StateID)
	assert.Empty(t, got.Payload.Recipients)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob is not a recipient")
}

func TestHubPingPong(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "alice")
	waitConnected(t, hub, 1)

	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	var got Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "pong", got.Type)
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "alice")
	waitConnected(t, hub, 1)

	require.NoError(t, conn.Close())
	waitConnected(t, hub, 0)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.tranki.io"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "no origin header")

	req.Header.Set("Origin", "https://app.tranki.io")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

func TestHubPingAfterRemovalIsDropped(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	exited := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// A client the hub already dropped: send is closed and it is not registered.
		c := &client{hub: hub, conn: conn, userID: "alice", send: make(chan []byte, sendBuffer)}
		close(c.send)
		go func() {
			c.readPump()
			close(exited)
		}()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "no pong for a removed client")

	require.NoError(t, conn.Close())
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("readPump did not exit after the connection closed")
	}
}

func TestHubReplyAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := &client{hub: hub, userID: "alice", send: make(chan []byte)}
	close(c.send)
	for i := 0; i < cap(hub.deliver)+1; i++ {
		hub.reply(c, []byte(`{"type":"pong"}`))
	}
}
