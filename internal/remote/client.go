// internal/remote/client.go
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/empty"
	"github.com/golang/protobuf/ptypes/wrappers"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/engine"
	"github.com/jdharms/algoviz/internal/store"
)

// ErrNotConnected is returned by calls made before Connect
var ErrNotConnected = errors.New("not connected to algoviz server")

// Snapshot is a decoded GetState or Watch message
type Snapshot struct {
	State  store.State        `json:"state"`
	Engine engine.EngineStats `json:"engine"`
}

// Client wraps the Playback gRPC client with connection management and retry
// logic
type Client struct {
	logger      *logrus.Logger
	address     string
	conn        *grpc.ClientConn
	playback    PlaybackClient
	connected   bool
	retryDelay  time.Duration
	dialOptions []grpc.DialOption
}

// NewClient creates a new remote control client
func NewClient(logger *logrus.Logger, host string, port int) *Client {
	return &Client{
		logger:     logger,
		address:    fmt.Sprintf("%s:%d", host, port),
		retryDelay: time.Second * 2,
	}
}

// WithDialOptions appends dial options, e.g. a custom dialer
func (c *Client) WithDialOptions(opts ...grpc.DialOption) *Client {
	c.dialOptions = append(c.dialOptions, opts...)
	return c
}

// WithRetryDelay sets the initial delay between connection attempts
func (c *Client) WithRetryDelay(d time.Duration) *Client {
	c.retryDelay = d
	return c
}

// Address returns the server address
func (c *Client) Address() string {
	return c.address
}

// Connect establishes a connection to the server
func (c *Client) Connect(ctx context.Context) error {
	if c.connected {
		return nil
	}

	c.logger.WithField("address", c.address).Info("Connecting to algoviz server")

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}, c.dialOptions...)

	conn, err := grpc.DialContext(ctx, c.address, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to algoviz at %s: %w", c.address, err)
	}

	c.conn = conn
	c.playback = NewPlaybackClient(conn)
	c.connected = true

	c.logger.Info("Successfully connected to algoviz server")
	return nil
}

// Disconnect closes the connection
func (c *Client) Disconnect() error {
	if !c.connected || c.conn == nil {
		return nil
	}

	c.logger.Info("Disconnecting from algoviz server")
	err := c.conn.Close()
	c.connected = false
	c.conn = nil
	c.playback = nil

	if err != nil {
		return fmt.Errorf("error closing algoviz connection: %w", err)
	}
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	return c.connected
}

// ConnectWithRetry attempts to connect with exponential backoff
func (c *Client) ConnectWithRetry(ctx context.Context, maxRetries int) error {
	var lastErr error
	delay := c.retryDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.logger.WithFields(logrus.Fields{
			"attempt":     attempt,
			"max_retries": maxRetries,
		}).Info("Attempting to connect to algoviz server")

		connectCtx, cancel := context.WithTimeout(ctx, time.Second*10)
		err := c.Connect(connectCtx)
		cancel()

		if err == nil {
			return nil
		}

		lastErr = err
		c.logger.WithError(err).WithField("attempt", attempt).Warn("Connection attempt failed")

		if attempt < maxRetries {
			c.logger.WithField("delay", delay).Info("Waiting before retry")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * 1.5)
			if delay > time.Second*30 {
				delay = time.Second * 30
			}
		}
	}

	return fmt.Errorf("failed to connect to algoviz after %d attempts: %w", maxRetries, lastErr)
}

// Load loads the algorithm matching query
func (c *Client) Load(ctx context.Context, query string) error {
	if !c.connected {
		return ErrNotConnected
	}
	if _, err := c.playback.Load(ctx, &wrappers.StringValue{Value: query}); err != nil {
		return fmt.Errorf("failed to load '%s': %w", query, err)
	}
	return nil
}

// Play starts or resumes playback
func (c *Client) Play(ctx context.Context) error {
	return c.call(ctx, "play", PlaybackClient.Play)
}

// Pause suspends playback
func (c *Client) Pause(ctx context.Context) error {
	return c.call(ctx, "pause", PlaybackClient.Pause)
}

// Stop halts playback
func (c *Client) Stop(ctx context.Context) error {
	return c.call(ctx, "stop", PlaybackClient.Stop)
}

// Reset reloads the current algorithm
func (c *Client) Reset(ctx context.Context) error {
	return c.call(ctx, "reset", PlaybackClient.Reset)
}

// SetSpeed changes the playback speed
func (c *Client) SetSpeed(ctx context.Context, speed float64) error {
	if !c.connected {
		return ErrNotConnected
	}
	if _, err := c.playback.SetSpeed(ctx, &wrappers.DoubleValue{Value: speed}); err != nil {
		return fmt.Errorf("failed to set speed: %w", err)
	}
	return nil
}

// State fetches the raw state message
func (c *Client) State(ctx context.Context) (*structpb.Struct, error) {
	if !c.connected {
		return nil, ErrNotConnected
	}
	msg, err := c.playback.GetState(ctx, &empty.Empty{})
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return msg, nil
}

// Snapshot fetches and decodes the current state
func (c *Client) Snapshot(ctx context.Context) (Snapshot, error) {
	msg, err := c.State(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return DecodeSnapshot(msg)
}

// Algorithms lists the algorithms the server can load
func (c *Client) Algorithms(ctx context.Context) ([]algorithms.Info, error) {
	if !c.connected {
		return nil, ErrNotConnected
	}
	msg, err := c.playback.ListAlgorithms(ctx, &empty.Empty{})
	if err != nil {
		return nil, fmt.Errorf("failed to list algorithms: %w", err)
	}

	var out struct {
		Algorithms []algorithms.Info `json:"algorithms"`
	}
	if err := fromStruct(msg, &out); err != nil {
		return nil, err
	}
	return out.Algorithms, nil
}

// Watch calls fn with every state update until ctx is done, the server
// closes the stream or fn returns an error
func (c *Client) Watch(ctx context.Context, fn func(Snapshot) error) error {
	if !c.connected {
		return ErrNotConnected
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.playback.Watch(ctx, &empty.Empty{})
	if err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch stream failed: %w", err)
		}

		snap, err := DecodeSnapshot(msg)
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}

type emptyCall func(PlaybackClient, context.Context, *empty.Empty, ...grpc.CallOption) (*empty.Empty, error)

func (c *Client) call(ctx context.Context, name string, fn emptyCall) error {
	if !c.connected {
		return ErrNotConnected
	}
	if _, err := fn(c.playback, ctx, &empty.Empty{}); err != nil {
		return fmt.Errorf("failed to %s: %w", name, err)
	}
	return nil
}

// DecodeSnapshot converts a state message into Go types
func DecodeSnapshot(msg *structpb.Struct) (Snapshot, error) {
	var snap Snapshot
	if err := fromStruct(msg, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func fromStruct(msg *structpb.Struct, v any) error {
	data, err := json.Marshal(msg.AsMap())
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}

// FormatJSON renders a protobuf message as indented JSON
func FormatJSON(msg proto.Message) (string, error) {
	m := jsonpb.Marshaler{Indent: "  ", OrigName: true}
	return m.MarshalToString(msg)
}
