package spark

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const (
	ChatService_OpenConversation_FullMethodName      = "/spark.ChatService/OpenConversation"
	ChatService_SendMessage_FullMethodName           = "/spark.ChatService/SendMessage"
	ChatService_ListMessages_FullMethodName          = "/spark.ChatService/ListMessages"
	ChatService_MarkRead_FullMethodName              = "/spark.ChatService/MarkRead"
	ChatService_ListConversations_FullMethodName     = "/spark.ChatService/ListConversations"
	ChatService_GetQuota_FullMethodName              = "/spark.ChatService/GetQuota"
	ChatService_SubscribeConversation_FullMethodName = "/spark.ChatService/SubscribeConversation"
	ChatService_SubscribeInbox_FullMethodName        = "/spark.ChatService/SubscribeInbox"
)

// ChatServiceClient is the client API for ChatService.
type ChatServiceClient interface {
	OpenConversation(ctx context.Context, in *OpenConversationRequest, opts ...grpc.CallOption) (*OpenConversationResponse, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error)
	ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error)
	MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error)
	ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error)
	GetQuota(ctx context.Context, in *GetQuotaRequest, opts ...grpc.CallOption) (*GetQuotaResponse, error)
	SubscribeConversation(ctx context.Context, in *SubscribeConversationRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error)
	SubscribeInbox(ctx context.Context, in *SubscribeInboxRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func (c *chatServiceClient) OpenConversation(ctx context.Context, in *OpenConversationRequest, opts ...grpc.CallOption) (*OpenConversationResponse, error) {
	out := new(OpenConversationResponse)
	if err := c.cc.Invoke(ctx, ChatService_OpenConversation_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	out := new(SendMessageResponse)
	if err := c.cc.Invoke(ctx, ChatService_SendMessage_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	out := new(ListMessagesResponse)
	if err := c.cc.Invoke(ctx, ChatService_ListMessages_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	out := new(MarkReadResponse)
	if err := c.cc.Invoke(ctx, ChatService_MarkRead_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error) {
	out := new(ListConversationsResponse)
	if err := c.cc.Invoke(ctx, ChatService_ListConversations_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) GetQuota(ctx context.Context, in *GetQuotaRequest, opts ...grpc.CallOption) (*GetQuotaResponse, error) {
	out := new(GetQuotaResponse)
	if err := c.cc.Invoke(ctx, ChatService_GetQuota_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) SubscribeConversation(ctx context.Context, in *SubscribeConversationRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[0], ChatService_SubscribeConversation_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeConversationRequest, Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *chatServiceClient) SubscribeInbox(ctx context.Context, in *SubscribeInboxRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[1], ChatService_SubscribeInbox_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeInboxRequest, Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ChatService_SubscribeConversationServer is the server-side stream of SubscribeConversation.
type ChatService_SubscribeConversationServer = grpc.ServerStreamingServer[Event]

// ChatService_SubscribeInboxServer is the server-side stream of SubscribeInbox.
type ChatService_SubscribeInboxServer = grpc.ServerStreamingServer[Event]

// ChatServiceServer is the server API for ChatService.
// All implementations must embed UnimplementedChatServiceServer
// for forward compatibility.
type ChatServiceServer interface {
	OpenConversation(context.Context, *OpenConversationRequest) (*OpenConversationResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error)
	GetQuota(context.Context, *GetQuotaRequest) (*GetQuotaResponse, error)
	SubscribeConversation(*SubscribeConversationRequest, ChatService_SubscribeConversationServer) error
	SubscribeInbox(*SubscribeInboxRequest, ChatService_SubscribeInboxServer) error
	mustEmbedUnimplementedChatServiceServer()
}

// UnimplementedChatServiceServer must be embedded to have forward compatible implementations.
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) OpenConversation(context.Context, *OpenConversationRequest) (*OpenConversationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method OpenConversation not implemented")
}
func (UnimplementedChatServiceServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedChatServiceServer) ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListMessages not implemented")
}
func (UnimplementedChatServiceServer) MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method MarkRead not implemented")
}
func (UnimplementedChatServiceServer) ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListConversations not implemented")
}
func (UnimplementedChatServiceServer) GetQuota(context.Context, *GetQuotaRequest) (*GetQuotaResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetQuota not implemented")
}
func (UnimplementedChatServiceServer) SubscribeConversation(*SubscribeConversationRequest, ChatService_SubscribeConversationServer) error {
	return status.Errorf(codes.Unimplemented, "method SubscribeConversation not implemented")
}
func (UnimplementedChatServiceServer) SubscribeInbox(*SubscribeInboxRequest, ChatService_SubscribeInboxServer) error {
	return status.Errorf(codes.Unimplemented, "method SubscribeInbox not implemented")
}
func (UnimplementedChatServiceServer) mustEmbedUnimplementedChatServiceServer() {}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

func _ChatService_OpenConversation_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(OpenConversationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).OpenConversation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_OpenConversation_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).OpenConversation(ctx, req.(*OpenConversationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_SendMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SendMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).SendMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_SendMessage_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).SendMessage(ctx, req.(*SendMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_ListMessages_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListMessagesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).ListMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_ListMessages_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).ListMessages(ctx, req.(*ListMessagesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_MarkRead_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MarkReadRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).MarkRead(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_MarkRead_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).MarkRead(ctx, req.(*MarkReadRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_ListConversations_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListConversationsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).ListConversations(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_ListConversations_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).ListConversations(ctx, req.(*ListConversationsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_GetQuota_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetQuotaRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).GetQuota(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_GetQuota_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).GetQuota(ctx, req.(*GetQuotaRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_SubscribeConversation_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(SubscribeConversationRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).SubscribeConversation(m, &grpc.GenericServerStream[SubscribeConversationRequest, Event]{ServerStream: stream})
}

func _ChatService_SubscribeInbox_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(SubscribeInboxRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).SubscribeInbox(m, &grpc.GenericServerStream[SubscribeInboxRequest, Event]{ServerStream: stream})
}

// ChatService_ServiceDesc is the grpc.ServiceDesc for ChatService.
var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "spark.ChatService",
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "OpenConversation", Handler: _ChatService_OpenConversation_Handler},
		{MethodName: "SendMessage", Handler: _ChatService_SendMessage_Handler},
		{MethodName: "ListMessages", Handler: _ChatService_ListMessages_Handler},
		{MethodName: "MarkRead", Handler: _ChatService_MarkRead_Handler},
		{MethodName: "ListConversations", Handler: _ChatService_ListConversations_Handler},
		{MethodName: "GetQuota", Handler: _ChatService_GetQuota_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeConversation",
			Handler:       _ChatService_SubscribeConversation_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "SubscribeInbox",
			Handler:       _ChatService_SubscribeInbox_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "spark/chat.proto",
}
