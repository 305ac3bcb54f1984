// internal/remote/server.go
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/golang/protobuf/ptypes/wrappers"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/engine"
)

// Server exposes an engine over gRPC
type Server struct {
	logger *logrus.Logger
	engine *engine.Engine

	host string
	port int

	mu       sync.RWMutex
	running  bool
	server   *grpc.Server
	listener net.Listener
}

// NewServer creates a gRPC server for eng
func NewServer(logger *logrus.Logger, eng *engine.Engine, host string, port int) *Server {
	return &Server{
		logger: logger,
		engine: eng,
		host:   host,
		port:   port,
	}
}

// Start listens on the configured address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve serves on lis in the background
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("gRPC server is already running")
	}

	s.server = grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.logUnary),
		grpc.ChainStreamInterceptor(s.logStream),
	)
	RegisterPlaybackServer(s.server, &playbackService{logger: s.logger, engine: s.engine})
	s.listener = lis
	s.running = true

	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.WithError(err).Error("gRPC server error")
		}
	}()

	s.logger.WithField("addr", lis.Addr().String()).Info("gRPC server started")
	return nil
}

// Run starts the server and blocks until ctx is done
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop gracefully stops the server, ending open Watch streams
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Stopping gRPC server")
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.server.Stop()
	}
	s.running = false
	s.logger.Info("gRPC server stopped")
}

// Addr returns the bound listen address
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

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	started := time.Now()
	resp, err := handler(ctx, req)

	entry := s.logger.WithFields(logrus.Fields{
		"method":   info.FullMethod,
		"duration": time.Since(started),
	})
	if err != nil {
		entry.WithError(err).Warn("gRPC call failed")
	} else {
		entry.Debug("gRPC call")
	}
	return resp, err
}

func (s *Server) logStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	s.logger.WithField("method", info.FullMethod).Debug("gRPC stream opened")
	err := handler(srv, ss)
	s.logger.WithField("method", info.FullMethod).Debug("gRPC stream closed")
	return err
}

// playbackService implements PlaybackServer over the engine
type playbackService struct {
	logger *logrus.Logger
	engine *engine.Engine
}

func (p *playbackService) Load(ctx context.Context, in *wrappers.StringValue) (*empty.Empty, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "algorithm is required")
	}
	if err := p.engine.LoadByName(in.GetValue()); err != nil {
		if errors.Is(err, algorithms.ErrNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &empty.Empty{}, nil
}

func (p *playbackService) Play(ctx context.Context, _ *empty.Empty) (*empty.Empty, error) {
	p.engine.Play()
	return &empty.Empty{}, nil
}

func (p *playbackService) Pause(ctx context.Context, _ *empty.Empty) (*empty.Empty, error) {
	p.engine.Pause()
	return &empty.Empty{}, nil
}

func (p *playbackService) Stop(ctx context.Context, _ *empty.Empty) (*empty.Empty, error) {
	p.engine.Stop()
	return &empty.Empty{}, nil
}

func (p *playbackService) Reset(ctx context.Context, _ *empty.Empty) (*empty.Empty, error) {
	p.engine.Reset()
	return &empty.Empty{}, nil
}

func (p *playbackService) SetSpeed(ctx context.Context, in *wrappers.DoubleValue) (*empty.Empty, error) {
	if err := p.engine.SetSpeed(in.GetValue()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &empty.Empty{}, nil
}

func (p *playbackService) GetState(ctx context.Context, _ *empty.Empty) (*structpb.Struct, error) {
	return p.snapshot()
}

func (p *playbackService) ListAlgorithms(ctx context.Context, _ *empty.Empty) (*structpb.Struct, error) {
	out, err := toStruct(map[string]any{"algorithms": p.engine.Algorithms()})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Watch streams a state snapshot now and after every change until the
// client goes away
func (p *playbackService) Watch(_ *empty.Empty, stream PlaybackWatchServer) error {
	ctx := stream.Context()
	changes := p.engine.Store().Subscribe(ctx)

	for {
		msg, err := p.snapshot()
		if err != nil {
			return err
		}
		if err := stream.Send(msg); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
		}
	}
}

// snapshot bundles the store state with the engine stats
func (p *playbackService) snapshot() (*structpb.Struct, error) {
	out, err := toStruct(map[string]any{
		"state":  p.engine.Store().GetState(),
		"engine": p.engine.GetStats(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStruct converts any JSON-encodable value into a protobuf Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return structpb.NewStruct(m)
}
