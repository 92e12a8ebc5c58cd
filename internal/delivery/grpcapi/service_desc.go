package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const EscrowAdminServiceName = "escrow.v1.EscrowAdmin"

// EscrowAdminServer is the internal admin API. Messages are protobuf
// well-known types so no generated code is needed.
type EscrowAdminServer interface {
	GetEscrow(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
	ReleaseEscrow(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
	RefundEscrow(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
	DisputeEscrow(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
	SweepDueReleases(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	GetSummary(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterEscrowAdminServer(s grpc.ServiceRegistrar, srv EscrowAdminServer) {
	s.RegisterService(&EscrowAdminServiceDesc, srv)
}

type idMethod func(srv EscrowAdminServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)

type emptyMethod func(srv EscrowAdminServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)

func idHandler(name string, call idMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(wrapperspb.StringValue)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EscrowAdminServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + EscrowAdminServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(EscrowAdminServer), ctx, req.(*wrapperspb.StringValue))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func emptyHandler(name string, call emptyMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(emptypb.Empty)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EscrowAdminServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + EscrowAdminServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(EscrowAdminServer), ctx, req.(*emptypb.Empty))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var EscrowAdminServiceDesc = grpc.ServiceDesc{
	ServiceName: EscrowAdminServiceName,
	HandlerType: (*EscrowAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		idHandler("GetEscrow", EscrowAdminServer.GetEscrow),
		idHandler("ReleaseEscrow", EscrowAdminServer.ReleaseEscrow),
		idHandler("RefundEscrow", EscrowAdminServer.RefundEscrow),
		idHandler("DisputeEscrow", EscrowAdminServer.DisputeEscrow),
		emptyHandler("SweepDueReleases", EscrowAdminServer.SweepDueReleases),
		emptyHandler("GetSummary", EscrowAdminServer.GetSummary),
	},
	Streams: []grpc.StreamDesc{},
}

// EscrowAdminClient calls the admin API over an existing connection.
type EscrowAdminClient struct {
	cc grpc.ClientConnInterface
}

func NewEscrowAdminClient(cc grpc.ClientConnInterface) *EscrowAdminClient {
	return &EscrowAdminClient{cc: cc}
}

func (c *EscrowAdminClient) invokeID(ctx context.Context, method, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+EscrowAdminServiceName+"/"+method, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EscrowAdminClient) GetEscrow(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeID(ctx, "GetEscrow", id, opts...)
}

func (c *EscrowAdminClient) ReleaseEscrow(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeID(ctx, "ReleaseEscrow", id, opts...)
}

func (c *EscrowAdminClient) RefundEscrow(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeID(ctx, "RefundEscrow", id, opts...)
}

func (c *EscrowAdminClient) DisputeEscrow(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeID(ctx, "DisputeEscrow", id, opts...)
}

func (c *EscrowAdminClient) SweepDueReleases(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+EscrowAdminServiceName+"/SweepDueReleases", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EscrowAdminClient) GetSummary(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+EscrowAdminServiceName+"/GetSummary", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
