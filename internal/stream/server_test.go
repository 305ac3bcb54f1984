package stream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/store"
)

// inbound is any server message
type inbound struct {
	Type       string            `json:"type"`
	State      store.State       `json:"state"`
	Error      string            `json:"error"`
	Command    string            `json:"command"`
	Algorithms []algorithms.Info `json:"algorithms"`
	Status     map[string]any    `json:"status"`
}

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := engine.DefaultConfig()
	cfg.Clock = engine.NewTestClock()
	cfg.PausePollInterval = 0
	cfg.Metrics = engine.NewMetrics(nil)
	cfg.Producer = algorithms.Options{Seed: 3}

	eng := engine.NewEngine(logger, store.New(logger), algorithms.Builtin(), cfg)
	t.Cleanup(eng.Close)

	srv := NewServer(logger, eng, "127.0.0.1", 0, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() {
		cancel()
		stopCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		_ = srv.Stop(stopCtx)
	})
	return srv, eng
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, cmd Command) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(cmd))
}

// readUntil reads messages until match accepts one
func readUntil(t *testing.T, conn *websocket.Conn, match func(inbound) bool) inbound {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg inbound
		require.NoError(t, json.Unmarshal(data, &msg))
		if match(msg) {
			return msg
		}
	}
}

func TestClientReceivesInitialState(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	msg := readUntil(t, conn, func(m inbound) bool { return m.Type == MessageState })
	assert.Nil(t, msg.State.Algorithm)
	assert.Equal(t, store.DefaultSpeed, msg.State.Playback.Speed)

	require.Eventually(t, func() bool { return srv.GetClientCount() == 1 }, time.Second, time.Millisecond)
}

func TestLoadAndPlayThroughCommands(t *testing.T) {
	srv, eng := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, Command{Command: CommandLoad, Algorithm: "bubble"})
	msg := readUntil(t, conn, func(m inbound) bool {
		return m.Type == MessageState && m.State.Algorithm != nil
	})
	assert.Equal(t, "bubble-sort", msg.State.Algorithm.Slug)
	assert.Equal(t, "Loaded: Bubble Sort", msg.State.Visual.Narrative)
	assert.NotEmpty(t, msg.State.Visual.Entities)

	send(t, conn, Command{Command: CommandSpeed, Speed: 2})
	send(t, conn, Command{Command: CommandPlay})
	msg = readUntil(t, conn, func(m inbound) bool {
		return m.Type == MessageState && m.State.Playback.IsComplete
	})
	assert.Equal(t, 2.0, msg.State.Playback.Speed)
	assert.Equal(t, msg.State.Playback.TotalSteps, msg.State.Playback.CurrentStep)
	assert.Equal(t, engine.StateComplete, eng.GetState())
}

func TestStatusEventsAreForwarded(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	readUntil(t, conn, func(m inbound) bool { return m.Type == MessageState })

	send(t, conn, Command{Command: CommandLoad, Algorithm: "bfs"})
	msg := readUntil(t, conn, func(m inbound) bool { return m.Type == MessageStatus })
	assert.Equal(t, "Loaded", msg.Status["state"])
	assert.Equal(t, "bfs", msg.Status["algorithm"])
}

func TestRejectedCommandsReportErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, Command{Command: CommandLoad, Algorithm: "no-such-algorithm"})
	msg := readUntil(t, conn, func(m inbound) bool { return m.Type == MessageError })
	assert.Equal(t, CommandLoad, msg.Command)
	assert.Contains(t, msg.Error, "no-such-algorithm")

	send(t, conn, Command{Command: CommandSpeed, Speed: -1})
	msg = readUntil(t, conn, func(m inbound) bool { return m.Type == MessageError })
	assert.Equal(t, CommandSpeed, msg.Command)

	send(t, conn, Command{Command: "teleport"})
	msg = readUntil(t, conn, func(m inbound) bool { return m.Type == MessageError })
	assert.Equal(t, "unknown command", msg.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = readUntil(t, conn, func(m inbound) bool { return m.Type == MessageError })
	assert.Equal(t, "malformed command", msg.Error)
}

func TestListCommand(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, Command{Command: CommandList})
	msg := readUntil(t, conn, func(m inbound) bool { return m.Type == MessageAlgorithms })
	assert.Len(t, msg.Algorithms, len(algorithms.Builtin().List()))
	assert.Equal(t, "bubble-sort", msg.Algorithms[0].Slug)
}

func TestMetricsAndHealthRoutes(t *testing.T) {
	srv, eng := newTestServer(t)
	require.NoError(t, eng.LoadByName("lcs"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `algoviz_runs_loaded_total{algorithm="lcs"} 1`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStopDisconnectsClients(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	readUntil(t, conn, func(m inbound) bool { return m.Type == MessageState })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.False(t, srv.IsRunning())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	stats := srv.GetStats()
	assert.Equal(t, int64(1), stats.TotalConnections)
}
