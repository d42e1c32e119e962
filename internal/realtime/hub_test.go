package realtime

import (
	"context"
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

type snapshot struct {
	Status string `json:"status"`
	Cursor int    `json:"cursor"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MsgState, msg.Type)
	var st snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &st))
	return st
}

func TestHubSendsSnapshotThenBroadcasts(t *testing.T) {
	hub := NewHub(Options{Snapshot: func() any { return snapshot{Status: "idle", Cursor: -1} }})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	first := dial(t, srv)
	second := dial(t, srv)
	assert.Equal(t, snapshot{Status: "idle", Cursor: -1}, readState(t, first))
	assert.Equal(t, snapshot{Status: "idle", Cursor: -1}, readState(t, second))

	hub.PublishState(snapshot{Status: "generating", Cursor: -1})
	assert.Equal(t, "generating", readState(t, first).Status)
	assert.Equal(t, "generating", readState(t, second).Status)
	assert.Equal(t, 2, hub.ClientCount())
}

func TestHubForgetsClosedSubscribers(t *testing.T) {
	hub := NewHub(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHubShutdownClosesSubscribers(t *testing.T) {
	hub := NewHub(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestPublishStateKeepsLatestWhenQueueFull(t *testing.T) {
	hub := NewHub(Options{QueueSize: 2})
	for i := 0; i < 5; i++ {
		hub.PublishState(snapshot{Status: "generating", Cursor: i})
	}

	require.Len(t, hub.broadcast, 2)
	var cursors []int
	for len(hub.broadcast) > 0 {
		var msg Message
		require.NoError(t, json.Unmarshal(<-hub.broadcast, &msg))
		var st snapshot
		require.NoError(t, json.Unmarshal(msg.Data, &st))
		cursors = append(cursors, st.Cursor)
	}
	assert.Equal(t, []int{3, 4}, cursors)
}
