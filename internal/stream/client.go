// internal/stream/client.go
package stream

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client represents a connected renderer
type Client struct {
	conn        *websocket.Conn
	server      *Server
	send        chan []byte
	connectedAt time.Time
	logger      *logrus.Entry
}

// readPump pumps commands from the WebSocket connection to the engine
func (c *Client) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Error("WebSocket read error")
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WithError(err).Error("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage applies a control command
func (c *Client) handleIncomingMessage(message []byte) {
	c.server.commandsReceived.Add(1)
	c.logger.WithField("message", string(message)).Debug("Received message from renderer client")

	var cmd Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		c.logger.WithError(err).Warn("Failed to parse incoming message")
		c.sendError("", "malformed command")
		return
	}

	eng := c.server.engine
	switch cmd.Command {
	case CommandPlay:
		eng.Play()
	case CommandPause:
		eng.Pause()
	case CommandStop:
		eng.Stop()
	case CommandReset:
		eng.Reset()
	case CommandLoad:
		if err := eng.LoadByName(cmd.Algorithm); err != nil {
			c.sendError(cmd.Command, err.Error())
			return
		}
	case CommandSpeed:
		if err := eng.SetSpeed(cmd.Speed); err != nil {
			c.sendError(cmd.Command, err.Error())
			return
		}
	case CommandList:
		c.sendJSON(AlgorithmsMessage{Type: MessageAlgorithms, Algorithms: eng.Algorithms()})
	case CommandGetState:
		c.sendState()
	default:
		c.logger.WithField("command", cmd.Command).Debug("Unhandled command from renderer client")
		c.sendError(cmd.Command, "unknown command")
		return
	}

	c.logger.WithField("command", cmd.Command).Info("Command applied")
}

func (c *Client) sendState() {
	c.sendJSON(StateMessage{Type: MessageState, State: c.server.engine.Store().GetState()})
}

func (c *Client) sendError(command, message string) {
	c.sendJSON(ErrorMessage{Type: MessageError, Command: command, Error: message})
}

// sendJSON queues a message for this client only
func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).Error("Failed to marshal message")
		return
	}

	c.server.mu.RLock()
	defer c.server.mu.RUnlock()
	if !c.server.clients[c] {
		return
	}
	select {
	case c.send <- data:
		c.server.messagesSent.Add(1)
	default:
		c.logger.Warn("Renderer client send buffer is full")
	}
}

// close closes the client connection
func (c *Client) close() {
	c.conn.Close()
}
