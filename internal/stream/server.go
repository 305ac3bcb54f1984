// internal/stream/server.go
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/engine"
)

// DefaultFrameInterval caps state broadcasts at roughly 30 per second
const DefaultFrameInterval = 33 * time.Millisecond

// Server streams visual state to renderer clients over WebSocket and accepts
// control commands from them
type Server struct {
	logger   *logrus.Logger
	upgrader websocket.Upgrader
	clients  map[*Client]bool
	engine   *engine.Engine
	mu       sync.RWMutex

	// Server configuration
	host          string
	port          int
	frameInterval time.Duration

	// State
	running  bool
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	commandsReceived atomic.Int64
}

// NewServer creates a new stream server for eng
func NewServer(logger *logrus.Logger, eng *engine.Engine, host string, port int, frameInterval time.Duration) *Server {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Renderers are served from anywhere, including file:// pages
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients:       make(map[*Client]bool),
		engine:        eng,
		host:          host,
		port:          port,
		frameInterval: frameInterval,
	}
}

// Handler returns the HTTP routes: the WebSocket endpoint at / and
// Prometheus metrics at /metrics
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebSocket)
	mux.Handle("/metrics", s.engine.Metrics().Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start starts listening and broadcasting
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("stream server is already running")
	}

	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	monitorCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Stream server error")
		}
	}()
	go s.monitor(monitorCtx)

	s.logger.WithField("addr", listener.Addr().String()).Info("Stream server started")
	return nil
}

// Run starts the server and blocks until ctx is done
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop stops the server and disconnects all clients
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info("Stopping stream server")
	s.cancel()

	for client := range s.clients {
		client.close()
	}

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Error shutting down stream server")
		return err
	}

	s.running = false
	s.logger.Info("Stream server stopped")
	return nil
}

// Addr returns the bound listen address, useful when the port was 0
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetClientCount returns the number of connected clients
func (s *Server) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// GetStats returns server statistics
func (s *Server) GetStats() ServerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ServerStats{
		Running:          s.running,
		ClientCount:      len(s.clients),
		TotalConnections: s.totalConnections.Load(),
		MessagesSent:     s.messagesSent.Load(),
		CommandsReceived: s.commandsReceived.Load(),
	}
	if s.listener != nil {
		stats.Address = s.listener.Addr().String()
	}
	for client := range s.clients {
		stats.Clients = append(stats.Clients, ClientInfo{
			RemoteAddr:  client.conn.RemoteAddr().String(),
			ConnectedAt: client.connectedAt,
		})
	}
	return stats
}

// handleWebSocket handles WebSocket connection upgrades
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		conn:        conn,
		server:      s,
		send:        make(chan []byte, 256),
		connectedAt: time.Now(),
		logger: s.logger.WithFields(logrus.Fields{
			"client": conn.RemoteAddr().String(),
		}),
	}

	s.registerClient(client)

	go client.writePump()
	go client.readPump()

	// New clients start from the current frame instead of waiting for a change
	client.sendState()
}

func (s *Server) registerClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[client] = true
	s.totalConnections.Add(1)
	client.logger.Info("Renderer client connected")
}

func (s *Server) unregisterClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		client.logger.Info("Renderer client disconnected")
	}
}

// broadcast queues a message for every client, dropping clients that cannot
// keep up
func (s *Server) broadcast(message []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		select {
		case client.send <- message:
			s.messagesSent.Add(1)
		default:
			client.logger.Warn("Renderer client is too slow, disconnecting")
			close(client.send)
			delete(s.clients, client)
		}
	}
}

// monitor coalesces store changes into at most one state broadcast per frame
// and forwards engine status events
func (s *Server) monitor(ctx context.Context) {
	changes := s.engine.Store().Subscribe(ctx)
	status := s.engine.RegisterStatusChannel(ctx)

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			dirty = true
		case event, ok := <-status:
			if !ok {
				status = nil
				continue
			}
			s.broadcastJSON(StatusMessage{Type: MessageStatus, Status: event})
		case <-ticker.C:
			if dirty {
				dirty = false
				s.broadcastJSON(StateMessage{Type: MessageState, State: s.engine.Store().GetState()})
			}
		}
	}
}

func (s *Server) broadcastJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal message")
		return
	}
	s.broadcast(data)
}
