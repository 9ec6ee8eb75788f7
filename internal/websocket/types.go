package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeClean is sent when a profile ran over text
	EventTypeClean EventType = "clean"
	// EventTypeDecode is sent when decoding failed or replaced control characters
	EventTypeDecode EventType = "decode"
	// EventTypeConfigReload is sent after the profiles were reloaded
	EventTypeConfigReload EventType = "config_reload"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
	// EventTypePong answers a client ping
	EventTypePong EventType = "pong"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	RequestID string    `json:"request_id,omitempty"`
}

// EngineEvent carries a cleaner event. Clipboard text is never included
type EngineEvent struct {
	Kind    string         `json:"kind"`
	Profile string         `json:"profile,omitempty"`
	Charset string         `json:"charset,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string   `json:"status"`
	Version          string   `json:"version,omitempty"`
	Uptime           string   `json:"uptime"`
	Profiles         []string `json:"profiles,omitempty"`
	DefaultProfile   string   `json:"default_profile,omitempty"`
	ConnectedClients int      `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type   string      `json:"type"`
	Events []EventType `json:"events,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID          string
	conn        *websocket.Conn
	Send        chan Event
	subscribed  map[EventType]bool
	ConnectedAt time.Time
	IP          string
	UserAgent   string
}

// wants reports whether the client subscribed to t. A client without a
// subscription receives everything
func (c *Client) wants(t EventType) bool {
	if c.subscribed == nil {
		return true
	}
	return c.subscribed[t]
}
