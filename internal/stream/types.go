// internal/stream/types.go
package stream

import (
	"time"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/store"
)

// Command is a control message sent by a renderer client
type Command struct {
	Command   string  `json:"command"`
	Algorithm string  `json:"algorithm,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
}

// Commands a client can send
const (
	CommandPlay     = "play"
	CommandPause    = "pause"
	CommandStop     = "stop"
	CommandReset    = "reset"
	CommandLoad     = "load"
	CommandSpeed    = "speed"
	CommandList     = "list"
	CommandGetState = "getState"
)

// Message types the server sends
const (
	MessageState      = "state"
	MessageStatus     = "status"
	MessageAlgorithms = "algorithms"
	MessageError      = "error"
)

// StateMessage carries a full store snapshot
type StateMessage struct {
	Type  string      `json:"type"`
	State store.State `json:"state"`
}

// StatusMessage carries an engine lifecycle event
type StatusMessage struct {
	Type   string             `json:"type"`
	Status engine.StatusEvent `json:"status"`
}

// AlgorithmsMessage lists the registered algorithms
type AlgorithmsMessage struct {
	Type       string            `json:"type"`
	Algorithms []algorithms.Info `json:"algorithms"`
}

// ErrorMessage reports a rejected command to the client that sent it
type ErrorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ServerStats contains statistics about the stream server
type ServerStats struct {
	Running          bool         `json:"running"`
	ClientCount      int          `json:"client_count"`
	Address          string       `json:"address"`
	TotalConnections int64        `json:"total_connections"`
	MessagesSent     int64        `json:"messages_sent"`
	CommandsReceived int64        `json:"commands_received"`
	Clients          []ClientInfo `json:"clients"`
}
