package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn, "admin")
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.UnregisterClient(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubForwardsFeedChanges(t *testing.T) {
	hub := NewHub()
	feed := NewFeed()
	detach := hub.Attach(feed)
	defer detach()

	srv := newHubServer(t, hub)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	feed.Publish(Change{ID: 7, Collection: "deliveries", DocumentID: "dlv-1", Action: "INSERT"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string `json:"event"`
		Data  Change `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, EventStoreChange, msg.Event)
	assert.Equal(t, "deliveries", msg.Data.Collection)
	assert.Equal(t, "dlv-1", msg.Data.DocumentID)
	assert.Equal(t, "INSERT", msg.Data.Action)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	conn := dial(t, srv)
	waitForClients(t, hub, 1)
	conn.Close()
	waitForClients(t, hub, 0)

	hub.BroadcastStaffNotification("makan siang sudah tiba")
	assert.Zero(t, hub.ClientCount())
}
