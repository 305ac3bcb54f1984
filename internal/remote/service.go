// internal/remote/service.go
package remote

import (
	"context"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/golang/protobuf/ptypes/wrappers"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "algoviz.v1.Playback"

// PlaybackServer is the server API for the Playback service. Messages are
// protobuf well-known types, so no generated code is needed.
type PlaybackServer interface {
	Load(context.Context, *wrappers.StringValue) (*empty.Empty, error)
	Play(context.Context, *empty.Empty) (*empty.Empty, error)
	Pause(context.Context, *empty.Empty) (*empty.Empty, error)
	Stop(context.Context, *empty.Empty) (*empty.Empty, error)
	Reset(context.Context, *empty.Empty) (*empty.Empty, error)
	SetSpeed(context.Context, *wrappers.DoubleValue) (*empty.Empty, error)
	GetState(context.Context, *empty.Empty) (*structpb.Struct, error)
	ListAlgorithms(context.Context, *empty.Empty) (*structpb.Struct, error)
	Watch(*empty.Empty, PlaybackWatchServer) error
}

// PlaybackWatchServer is the server side of the Watch stream
type PlaybackWatchServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

// PlaybackClient is the client API for the Playback service
type PlaybackClient interface {
	Load(ctx context.Context, in *wrappers.StringValue, opts ...grpc.CallOption) (*empty.Empty, error)
	Play(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	Pause(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	Stop(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	Reset(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	SetSpeed(ctx context.Context, in *wrappers.DoubleValue, opts ...grpc.CallOption) (*empty.Empty, error)
	GetState(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListAlgorithms(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Watch(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (PlaybackWatchClient, error)
}

// PlaybackWatchClient is the client side of the Watch stream
type PlaybackWatchClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

// RegisterPlaybackServer registers srv on s
func RegisterPlaybackServer(s grpc.ServiceRegistrar, srv PlaybackServer) {
	s.RegisterService(&PlaybackServiceDesc, srv)
}

// NewPlaybackClient creates a client stub over cc
func NewPlaybackClient(cc grpc.ClientConnInterface) PlaybackClient {
	return &playbackClient{cc: cc}
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary adapts a PlaybackServer method to a grpc.MethodHandler
func unary[Req, Resp any](method string, call func(PlaybackServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PlaybackServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PlaybackServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(empty.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PlaybackServer).Watch(in, &playbackWatchServer{stream})
}

// PlaybackServiceDesc describes the Playback service for grpc.Server
var PlaybackServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlaybackServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Load", PlaybackServer.Load),
		unary("Play", PlaybackServer.Play),
		unary("Pause", PlaybackServer.Pause),
		unary("Stop", PlaybackServer.Stop),
		unary("Reset", PlaybackServer.Reset),
		unary("SetSpeed", PlaybackServer.SetSpeed),
		unary("GetState", PlaybackServer.GetState),
		unary("ListAlgorithms", PlaybackServer.ListAlgorithms),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "algoviz/v1/playback.proto",
}

type playbackWatchServer struct {
	grpc.ServerStream
}

func (x *playbackWatchServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

type playbackClient struct {
	cc grpc.ClientConnInterface
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *playbackClient) Load(ctx context.Context, in *wrappers.StringValue, opts ...grpc.CallOption) (*empty.Empty, error) {
	return invoke[wrappers.StringValue, empty.Empty](ctx, c.cc, "Load", in, opts...)
}

func (c *playbackClient) Play(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	return invoke[empty.Empty, empty.Empty](ctx, c.cc, "Play", in, opts...)
}

func (c *playbackClient) Pause(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	return invoke[empty.Empty, empty.Empty](ctx, c.cc, "Pause", in, opts...)
}

func (c *playbackClient) Stop(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	return invoke[empty.Empty, empty.Empty](ctx, c.cc, "Stop", in, opts...)
}

func (c *playbackClient) Reset(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	return invoke[empty.Empty, empty.Empty](ctx, c.cc, "Reset", in, opts...)
}

func (c *playbackClient) SetSpeed(ctx context.Context, in *wrappers.DoubleValue, opts ...grpc.CallOption) (*empty.Empty, error) {
	return invoke[wrappers.DoubleValue, empty.Empty](ctx, c.cc, "SetSpeed", in, opts...)
}

func (c *playbackClient) GetState(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[empty.Empty, structpb.Struct](ctx, c.cc, "GetState", in, opts...)
}

func (c *playbackClient) ListAlgorithms(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[empty.Empty, structpb.Struct](ctx, c.cc, "ListAlgorithms", in, opts...)
}

func (c *playbackClient) Watch(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (PlaybackWatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &PlaybackServiceDesc.Streams[0], fullMethod("Watch"), opts...)
	if err != nil {
		return nil, err
	}
	x := &playbackWatchClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type playbackWatchClient struct {
	grpc.ClientStream
}

func (x *playbackWatchClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
