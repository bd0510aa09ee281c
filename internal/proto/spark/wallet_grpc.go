package spark

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const (
	WalletService_GetBalance_FullMethodName      = "/spark.WalletService/GetBalance"
	WalletService_Credit_FullMethodName          = "/spark.WalletService/Credit"
	WalletService_PurchasePackage_FullMethodName = "/spark.WalletService/PurchasePackage"
	WalletService_ListEntries_FullMethodName     = "/spark.WalletService/ListEntries"
)

// WalletServiceClient is the client API for WalletService.
type WalletServiceClient interface {
	GetBalance(ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption) (*GetBalanceResponse, error)
	Credit(ctx context.Context, in *CreditRequest, opts ...grpc.CallOption) (*CreditResponse, error)
	PurchasePackage(ctx context.Context, in *PurchasePackageRequest, opts ...grpc.CallOption) (*CreditResponse, error)
	ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error)
}

type walletServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWalletServiceClient(cc grpc.ClientConnInterface) WalletServiceClient {
	return &walletServiceClient{cc}
}

func (c *walletServiceClient) GetBalance(ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption) (*GetBalanceResponse, error) {
	out := new(GetBalanceResponse)
	if err := c.cc.Invoke(ctx, WalletService_GetBalance_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *walletServiceClient) Credit(ctx context.Context, in *CreditRequest, opts ...grpc.CallOption) (*CreditResponse, error) {
	out := new(CreditResponse)
	if err := c.cc.Invoke(ctx, WalletService_Credit_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *walletServiceClient) PurchasePackage(ctx context.Context, in *PurchasePackageRequest, opts ...grpc.CallOption) (*CreditResponse, error) {
	out := new(CreditResponse)
	if err := c.cc.Invoke(ctx, WalletService_PurchasePackage_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *walletServiceClient) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	out := new(ListEntriesResponse)
	if err := c.cc.Invoke(ctx, WalletService_ListEntries_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// WalletServiceServer is the server API for WalletService.
// All implementations must embed UnimplementedWalletServiceServer
// for forward compatibility.
type WalletServiceServer interface {
	GetBalance(context.Context, *GetBalanceRequest) (*GetBalanceResponse, error)
	Credit(context.Context, *CreditRequest) (*CreditResponse, error)
	PurchasePackage(context.Context, *PurchasePackageRequest) (*CreditResponse, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	mustEmbedUnimplementedWalletServiceServer()
}

// UnimplementedWalletServiceServer must be embedded to have forward compatible implementations.
type UnimplementedWalletServiceServer struct{}

func (UnimplementedWalletServiceServer) GetBalance(context.Context, *GetBalanceRequest) (*GetBalanceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetBalance not implemented")
}
func (UnimplementedWalletServiceServer) Credit(context.Context, *CreditRequest) (*CreditResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Credit not implemented")
}
func (UnimplementedWalletServiceServer) PurchasePackage(context.Context, *PurchasePackageRequest) (*CreditResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PurchasePackage not implemented")
}
func (UnimplementedWalletServiceServer) ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListEntries not implemented")
}
func (UnimplementedWalletServiceServer) mustEmbedUnimplementedWalletServiceServer() {}

func RegisterWalletServiceServer(s grpc.ServiceRegistrar, srv WalletServiceServer) {
	s.RegisterService(&WalletService_ServiceDesc, srv)
}

func _WalletService_GetBalance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetBalanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).GetBalance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WalletService_GetBalance_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).GetBalance(ctx, req.(*GetBalanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _WalletService_Credit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreditRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).Credit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WalletService_Credit_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).Credit(ctx, req.(*CreditRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _WalletService_PurchasePackage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PurchasePackageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).PurchasePackage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WalletService_PurchasePackage_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).PurchasePackage(ctx, req.(*PurchasePackageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _WalletService_ListEntries_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListEntriesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WalletServiceServer).ListEntries(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WalletService_ListEntries_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WalletServiceServer).ListEntries(ctx, req.(*ListEntriesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// WalletService_ServiceDesc is the grpc.ServiceDesc for WalletService.
var WalletService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "spark.WalletService",
	HandlerType: (*WalletServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBalance", Handler: _WalletService_GetBalance_Handler},
		{MethodName: "Credit", Handler: _WalletService_Credit_Handler},
		{MethodName: "PurchasePackage", Handler: _WalletService_PurchasePackage_Handler},
		{MethodName: "ListEntries", Handler: _WalletService_ListEntries_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "spark/wallet.proto",
}
