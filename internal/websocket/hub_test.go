package websocket

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
	"github.com/raaihank/clipboard-cleaner/internal/config"
)

func allEvents() *HubConfig {
	return &HubConfig{
		BroadcastClean:       true,
		BroadcastDecode:      true,
		BroadcastSystem:      true,
		BroadcastConnections: true,
	}
}

func startHub(t *testing.T, cfg *HubConfig) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(cfg, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev map[string]any
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func waitForClients(t *testing.T, hub *Hub, n int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.GetStats().ActiveConnections == n
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHub_StatusOnConnectAndEngineEvents(t *testing.T) {
	hub, srv := startHub(t, allEvents())
	hub.SetStatusProvider(func() SystemStatusEvent {
		return SystemStatusEvent{Status: "running", DefaultProfile: "strip-invisible"}
	})

	conn := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	status := readEvent(t, conn)
	assert.Equal(t, string(EventTypeSystemStatus), status["type"])
	data := status["data"].(map[string]any)
	assert.Equal(t, "strip-invisible", data["default_profile"])
	assert.EqualValues(t, 1, data["connected_clients"])

	hub.Notify(cleaner.Event{
		Kind:      cleaner.EventProfileApplied,
		Profile:   "reveal",
		Data:      map[string]any{"changed": true},
		Timestamp: time.Now(),
	})

	ev := readEvent(t, conn)
	assert.Equal(t, string(EventTypeClean), ev["type"])
	payload := ev["data"].(map[string]any)
	assert.Equal(t, "profile_applied", payload["kind"])
	assert.Equal(t, "reveal", payload["profile"])
	assert.Equal(t, true, payload["details"].(map[string]any)["changed"])
}

func TestHub_DisabledEventsAreNotSent(t *testing.T) {
	cfg := allEvents()
	cfg.BroadcastClean = false
	cfg.BroadcastSystem = false
	hub, srv := startHub(t, cfg)

	conn := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	hub.Notify(cleaner.Event{Kind: cleaner.EventProfileApplied, Profile: "ignored"})
	hub.Notify(cleaner.Event{Kind: cleaner.EventDecodeFailed, Charset: "utf-8", Message: "Could not convert data to utf-8"})

	ev := readEvent(t, conn)
	assert.Equal(t, string(EventTypeDecode), ev["type"])
	assert.Equal(t, "utf-8", ev["data"].(map[string]any)["charset"])
}

func TestHub_Subscription(t *testing.T) {
	cfg := allEvents()
	cfg.BroadcastSystem = false
	hub, srv := startHub(t, cfg)

	conn := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "subscribe", Events: []EventType{EventTypeDecode}}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "ping"}))
	pong := readEvent(t, conn)
	require.Equal(t, string(EventTypePong), pong["type"])

	hub.Notify(cleaner.Event{Kind: cleaner.EventProfileApplied, Profile: "filtered"})
	hub.Notify(cleaner.Event{Kind: cleaner.EventControlCharsReplaced, Charset: "utf-16le"})

	ev := readEvent(t, conn)
	assert.Equal(t, string(EventTypeDecode), ev["type"])
}

func TestHub_ConnectionEvents(t *testing.T) {
	cfg := allEvents()
	cfg.BroadcastSystem = false
	hub, srv := startHub(t, cfg)

	first := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	second := dial(t, srv, nil)
	waitForClients(t, hub, 2)

	ev := readEvent(t, first)
	assert.Equal(t, string(EventTypeConnection), ev["type"])
	assert.Equal(t, "connected", ev["data"].(map[string]any)["action"])

	second.Close()
	waitForClients(t, hub, 1)

	ev = readEvent(t, first)
	assert.Equal(t, "disconnected", ev["data"].(map[string]any)["action"])
	assert.EqualValues(t, 2, hub.GetStats().TotalConnections)
}

func TestHub_BasicAuth(t *testing.T) {
	cfg := allEvents()
	cfg.Username = "admin"
	cfg.Password = "secret"
	hub, srv := startHub(t, cfg)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	dial(t, srv, header)
	waitForClients(t, hub, 1)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(allEvents(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	conn := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	cancel()
	<-stopped
	assert.EqualValues(t, 0, hub.GetStats().ActiveConnections)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func TestNewHubConfig(t *testing.T) {
	ws := config.GetDefaults().WebSocket
	ws.Username = "u"
	ws.Events.BroadcastDecode = false

	cfg := NewHubConfig(ws)
	assert.True(t, cfg.BroadcastClean)
	assert.False(t, cfg.BroadcastDecode)
	assert.Equal(t, "u", cfg.Username)
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, EventTypeClean, eventTypeFor(cleaner.EventProfileApplied))
	assert.Equal(t, EventTypeDecode, eventTypeFor(cleaner.EventDecodeFailed))
	assert.Equal(t, EventTypeDecode, eventTypeFor(cleaner.EventControlCharsReplaced))
	assert.Equal(t, EventTypeConfigReload, eventTypeFor(cleaner.EventConfigReloaded))
}
