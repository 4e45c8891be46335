// Package rpc exposes a puzzle session over gRPC. Messages are
// google.protobuf.Struct values, so the service needs no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jugs.v1.PuzzleService"

// #region service-interface
// PuzzleServiceServer is the server API for the puzzle service.
type PuzzleServiceServer interface {
	Setup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Pour(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Solve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Apply(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Rollback(context.Context, *structpb.Struct) (*structpb.Struct, error)
	State(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// #endregion service-interface

// #region service-desc
// ServiceDesc describes the puzzle service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PuzzleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Setup", PuzzleServiceServer.Setup),
		unaryHandler("Pour", PuzzleServiceServer.Pour),
		unaryHandler("Reset", PuzzleServiceServer.Reset),
		unaryHandler("Solve", PuzzleServiceServer.Solve),
		unaryHandler("Apply", PuzzleServiceServer.Apply),
		unaryHandler("Rollback", PuzzleServiceServer.Rollback),
		unaryHandler("State", PuzzleServiceServer.State),
		unaryHandler("History", PuzzleServiceServer.History),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jugs/v1/puzzle.proto",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv PuzzleServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call func(PuzzleServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PuzzleServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PuzzleServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// #endregion service-desc
