package spark

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const (
	MatchService_SubmitSwipe_FullMethodName     = "/spark.MatchService/SubmitSwipe"
	MatchService_SendCrush_FullMethodName       = "/spark.MatchService/SendCrush"
	MatchService_ListLikedYou_FullMethodName    = "/spark.MatchService/ListLikedYou"
	MatchService_ListNewLikedYou_FullMethodName = "/spark.MatchService/ListNewLikedYou"
	MatchService_CountLikedYou_FullMethodName   = "/spark.MatchService/CountLikedYou"
	MatchService_ListMatches_FullMethodName     = "/spark.MatchService/ListMatches"
)

// MatchServiceClient is the client API for MatchService.
type MatchServiceClient interface {
	SubmitSwipe(ctx context.Context, in *SubmitSwipeRequest, opts ...grpc.CallOption) (*SubmitSwipeResponse, error)
	SendCrush(ctx context.Context, in *SendCrushRequest, opts ...grpc.CallOption) (*SendCrushResponse, error)
	ListLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error)
	ListNewLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error)
	CountLikedYou(ctx context.Context, in *CountLikedYouRequest, opts ...grpc.CallOption) (*CountLikedYouResponse, error)
	ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error)
}

type matchServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMatchServiceClient(cc grpc.ClientConnInterface) MatchServiceClient {
	return &matchServiceClient{cc}
}

func (c *matchServiceClient) SubmitSwipe(ctx context.Context, in *SubmitSwipeRequest, opts ...grpc.CallOption) (*SubmitSwipeResponse, error) {
	out := new(SubmitSwipeResponse)
	if err := c.cc.Invoke(ctx, MatchService_SubmitSwipe_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchServiceClient) SendCrush(ctx context.Context, in *SendCrushRequest, opts ...grpc.CallOption) (*SendCrushResponse, error) {
	out := new(SendCrushResponse)
	if err := c.cc.Invoke(ctx, MatchService_SendCrush_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchServiceClient) ListLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	out := new(ListLikedYouResponse)
	if err := c.cc.Invoke(ctx, MatchService_ListLikedYou_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchServiceClient) ListNewLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	out := new(ListLikedYouResponse)
	if err := c.cc.Invoke(ctx, MatchService_ListNewLikedYou_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchServiceClient) CountLikedYou(ctx context.Context, in *CountLikedYouRequest, opts ...grpc.CallOption) (*CountLikedYouResponse, error) {
	out := new(CountLikedYouResponse)
	if err := c.cc.Invoke(ctx, MatchService_CountLikedYou_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchServiceClient) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	out := new(ListMatchesResponse)
	if err := c.cc.Invoke(ctx, MatchService_ListMatches_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchServiceServer is the server API for MatchService.
// All implementations must embed UnimplementedMatchServiceServer
// for forward compatibility.
type MatchServiceServer interface {
	SubmitSwipe(context.Context, *SubmitSwipeRequest) (*SubmitSwipeResponse, error)
	SendCrush(context.Context, *SendCrushRequest) (*SendCrushResponse, error)
	ListLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error)
	ListNewLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error)
	CountLikedYou(context.Context, *CountLikedYouRequest) (*CountLikedYouResponse, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
	mustEmbedUnimplementedMatchServiceServer()
}

// UnimplementedMatchServiceServer must be embedded to have forward compatible implementations.
type UnimplementedMatchServiceServer struct{}

func (UnimplementedMatchServiceServer) SubmitSwipe(context.Context, *SubmitSwipeRequest) (*SubmitSwipeResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitSwipe not implemented")
}
func (UnimplementedMatchServiceServer) SendCrush(context.Context, *SendCrushRequest) (*SendCrushResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SendCrush not implemented")
}
func (UnimplementedMatchServiceServer) ListLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListLikedYou not implemented")
}
func (UnimplementedMatchServiceServer) ListNewLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListNewLikedYou not implemented")
}
func (UnimplementedMatchServiceServer) CountLikedYou(context.Context, *CountLikedYouRequest) (*CountLikedYouResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CountLikedYou not implemented")
}
func (UnimplementedMatchServiceServer) ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListMatches not implemented")
}
func (UnimplementedMatchServiceServer) mustEmbedUnimplementedMatchServiceServer() {}

func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchService_ServiceDesc, srv)
}

func _MatchService_SubmitSwipe_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SubmitSwipeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).SubmitSwipe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MatchService_SubmitSwipe_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).SubmitSwipe(ctx, req.(*SubmitSwipeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MatchService_SendCrush_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SendCrushRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).SendCrush(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MatchService_SendCrush_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).SendCrush(ctx, req.(*SendCrushRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MatchService_ListLikedYou_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListLikedYouRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).ListLikedYou(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MatchService_ListLikedYou_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).ListLikedYou(ctx, req.(*ListLikedYouRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MatchService_ListNewLikedYou_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListLikedYouRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).ListNewLikedYou(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MatchService_ListNewLikedYou_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).ListNewLikedYou(ctx, req.(*ListLikedYouRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MatchService_CountLikedYou_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CountLikedYouRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).CountLikedYou(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MatchService_CountLikedYou_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).CountLikedYou(ctx, req.(*CountLikedYouRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MatchService_ListMatches_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListMatchesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).ListMatches(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MatchService_ListMatches_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).ListMatches(ctx, req.(*ListMatchesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MatchService_ServiceDesc is the grpc.ServiceDesc for MatchService.
var MatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "spark.MatchService",
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitSwipe", Handler: _MatchService_SubmitSwipe_Handler},
		{MethodName: "SendCrush", Handler: _MatchService_SendCrush_Handler},
		{MethodName: "ListLikedYou", Handler: _MatchService_ListLikedYou_Handler},
		{MethodName: "ListNewLikedYou", Handler: _MatchService_ListNewLikedYou_Handler},
		{MethodName: "CountLikedYou", Handler: _MatchService_CountLikedYou_Handler},
		{MethodName: "ListMatches", Handler: _MatchService_ListMatches_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "spark/match.proto",
}

// callOptions forces the contract codec on every call.
func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
}
