package remote

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/store"
)

var errDone = errors.New("done")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestPair serves an engine over an in-memory listener and returns a
// connected client
func newTestPair(t *testing.T) (*Client, *engine.Engine) {
	t.Helper()
	logger := quietLogger()

	cfg := engine.DefaultConfig()
	cfg.Clock = engine.NewTestClock()
	cfg.PausePollInterval = 0
	cfg.Metrics = engine.NewMetrics(nil)
	cfg.Producer = algorithms.Options{Seed: 5}

	eng := engine.NewEngine(logger, store.New(logger), algorithms.Builtin(), cfg)
	t.Cleanup(eng.Close)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(logger, eng, "bufnet", 0)
	require.NoError(t, srv.Serve(lis))
	t.Cleanup(srv.Stop)

	client := NewClient(logger, "bufnet", 0).WithDialOptions(
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() { _ = client.Disconnect() })

	return client, eng
}

func TestLoadAndPlayOverRPC(t *testing.T) {
	client, eng := newTestPair(t)
	ctx := context.Background()

	require.NoError(t, client.Load(ctx, "insertion"))
	snap, err := client.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.State.Algorithm)
	assert.Equal(t, "insertion-sort", snap.State.Algorithm.Slug)
	assert.Equal(t, engine.StateLoaded, snap.Engine.State)
	assert.NotEmpty(t, snap.Engine.RunID)
	assert.Positive(t, snap.State.Playback.TotalSteps)

	require.NoError(t, client.SetSpeed(ctx, 0.5))
	require.NoError(t, client.Play(ctx))
	require.Eventually(t, func() bool {
		return eng.GetState() == engine.StateComplete
	}, 3*time.Second, time.Millisecond)

	snap, err = client.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.State.Playback.IsComplete)
	assert.Equal(t, 0.5, snap.State.Playback.Speed)
	assert.Equal(t, snap.State.Playback.TotalSteps, snap.State.Playback.CurrentStep)
	assert.Equal(t, float64(100), snap.Engine.Progress)
}

func TestRPCErrorCodes(t *testing.T) {
	client, _ := newTestPair(t)
	ctx := context.Background()

	err := client.Load(ctx, "no-such-thing")
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(errors.Unwrap(err)))

	err = client.Load(ctx, "")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))

	err = client.SetSpeed(ctx, 0)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))
}

func TestControlsWithoutLoadAreNoops(t *testing.T) {
	client, eng := newTestPair(t)
	ctx := context.Background()

	require.NoError(t, client.Play(ctx))
	require.NoError(t, client.Pause(ctx))
	require.NoError(t, client.Stop(ctx))
	require.NoError(t, client.Reset(ctx))
	assert.Equal(t, engine.StateIdle, eng.GetState())
}

func TestListAlgorithms(t *testing.T) {
	client, _ := newTestPair(t)

	infos, err := client.Algorithms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, algorithms.Builtin().List(), infos)
}

func TestWatchStreamsChanges(t *testing.T) {
	client, _ := newTestPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	first := make(chan Snapshot, 1)
	loaded := make(chan Snapshot, 1)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- client.Watch(ctx, func(s Snapshot) error {
			select {
			case first <- s:
			default:
			}
			if s.State.Algorithm != nil && s.State.Algorithm.Slug == "dfs" {
				loaded <- s
				return errDone
			}
			return nil
		})
	}()

	select {
	case s := <-first:
		assert.Nil(t, s.State.Algorithm)
	case <-ctx.Done():
		t.Fatal("no initial snapshot")
	}

	require.NoError(t, client.Load(context.Background(), "dfs"))

	select {
	case s := <-loaded:
		assert.Equal(t, engine.StateLoaded, s.Engine.State)
		assert.Equal(t, "Loaded: Depth-First Search", s.State.Visual.Narrative)
	case <-ctx.Done():
		t.Fatal("load was not streamed")
	}
	assert.ErrorIs(t, <-watchErr, errDone)
}

func TestCallsBeforeConnect(t *testing.T) {
	client := NewClient(quietLogger(), "localhost", 1)
	ctx := context.Background()

	assert.ErrorIs(t, client.Play(ctx), ErrNotConnected)
	assert.ErrorIs(t, client.Load(ctx, "dfs"), ErrNotConnected)
	_, err := client.State(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, client.Disconnect())
	assert.False(t, client.IsConnected())
}

func TestConnectWithRetryHonoursContext(t *testing.T) {
	client := NewClient(quietLogger(), "bufnet", 0).
		WithRetryDelay(time.Hour).
		WithDialOptions(grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return nil, errors.New("refused")
		}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := client.ConnectWithRetry(ctx, 3)
	require.Error(t, err)
	assert.False(t, client.IsConnected())
}

func TestFormatJSON(t *testing.T) {
	msg, err := toStruct(map[string]any{"speed": 2})
	require.NoError(t, err)

	out, err := FormatJSON(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"speed": 2}`, out)
}
