package evaluator

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorkerServiceName is the fully qualified gRPC service exposed by
// worker processes.
const WorkerServiceName = "emaworkbench.v1.Worker"

const (
	workerInitializeMethod    = "/" + WorkerServiceName + "/Initialize"
	workerRunExperimentMethod = "/" + WorkerServiceName + "/RunExperiment"
	workerShutdownMethod      = "/" + WorkerServiceName + "/Shutdown"
)

// WorkerService is the server-side contract of the worker RPC surface.
// Payloads are structpb documents, so the service registers against the
// stock protobuf codec without generated message types.
type WorkerService interface {
	Initialize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RunExperiment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Shutdown(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterWorkerService registers srv on a gRPC server.
func RegisterWorkerService(s grpc.ServiceRegistrar, srv WorkerService) {
	s.RegisterService(&workerServiceDesc, srv)
}

func workerInitializeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerService).Initialize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: workerInitializeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkerService).Initialize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func workerRunExperimentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerService).RunExperiment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: workerRunExperimentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkerService).RunExperiment(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func workerShutdownHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerService).Shutdown(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: workerShutdownMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkerService).Shutdown(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var workerServiceDesc = grpc.ServiceDesc{
	ServiceName: WorkerServiceName,
	HandlerType: (*WorkerService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Initialize", Handler: workerInitializeHandler},
		{MethodName: "RunExperiment", Handler: workerRunExperimentHandler},
		{MethodName: "Shutdown", Handler: workerShutdownHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "emaworkbench/v1/worker",
}
