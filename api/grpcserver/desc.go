package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "rbtree.v1.TreeService"

// TreeServer is the server API for rbtree.v1.TreeService. Every message
// is a protobuf well-known type, so no generated code is needed.
type TreeServer interface {
	Insert(context.Context, *wrapperspb.Int64Value) (*wrapperspb.UInt64Value, error)
	Erase(context.Context, *wrapperspb.Int64Value) (*wrapperspb.UInt64Value, error)
	Find(context.Context, *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	Min(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	Max(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	Export(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.BytesValue, error)
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Verify(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

func RegisterTreeServer(s grpc.ServiceRegistrar, srv TreeServer) {
	s.RegisterService(&treeServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

var treeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TreeServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Insert", TreeServer.Insert),
		unary("Erase", TreeServer.Erase),
		unary("Find", TreeServer.Find),
		unary("Min", TreeServer.Min),
		unary("Max", TreeServer.Max),
		unary("Export", TreeServer.Export),
		unary("Stats", TreeServer.Stats),
		unary("Verify", TreeServer.Verify),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rbtree/v1/tree.proto",
}

func unary[Req, Resp any](
	name string,
	call func(TreeServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv any,
			ctx context.Context,
			dec func(any) error,
			interceptor grpc.UnaryServerInterceptor,
		) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TreeServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TreeServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
