package textgen

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/containerd/errdefs/pkg/errgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// completionServer is the handler type of the text-generation service.
type completionServer interface {
	complete(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
}

type generatorServer struct {
	gen Generator
}

func (s *generatorServer) complete(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields := req.GetFields()
	userText := fields["user_text"].GetStringValue()
	if userText == "" {
		return nil, errgrpc.ToGRPC(fmt.Errorf("user_text is required: %w", errdefs.ErrInvalidArgument))
	}
	text, err := s.gen.Complete(ctx, fields["system_prompt"].GetStringValue(), userText)
	if err != nil {
		return nil, errgrpc.ToGRPC(err)
	}
	return wrapperspb.String(text), nil
}

func completeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	s := srv.(completionServer)
	if interceptor == nil {
		return s.complete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: completeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return s.complete(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*completionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Complete", Handler: completeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "outing/textgen/v1/textgen.proto",
}

// RegisterServer exposes gen as the text-generation service on s, together
// with a grpc.health.v1 service reporting it as serving.
func RegisterServer(s *grpc.Server, gen Generator) {
	s.RegisterService(&serviceDesc, &generatorServer{gen: gen})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
}
