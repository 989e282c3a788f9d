package textgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/containerd/errdefs/pkg/errgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the gRPC service exposing text generation.
const ServiceName = "outing.textgen.v1.TextGeneration"

const completeMethod = "/" + ServiceName + "/Complete"

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")
)

// GrpcConfig holds configuration for the gRPC generator.
type GrpcConfig struct {
	Address          string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
	DialOptions      []grpc.DialOption
}

// DefaultGrpcConfig returns default configuration.
func DefaultGrpcConfig() GrpcConfig {
	return GrpcConfig{
		Address:          "localhost:50051",
		ConnectTimeout:   5 * time.Second,
		RequestTimeout:   30 * time.Second,
		KeepaliveTime:    2 * time.Minute,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// GrpcGenerator calls a remote text-generation service.
type GrpcGenerator struct {
	conn           *grpc.ClientConn
	health         healthpb.HealthClient
	addr           string
	requestTimeout time.Duration
	logger         *slog.Logger
}

// NewGrpcGenerator connects to a remote text-generation service and waits
// until the connection is ready.
func NewGrpcGenerator(cfg GrpcConfig, logger *slog.Logger) (*GrpcGenerator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultGrpcConfig()
	if cfg.Address == "" {
		cfg.Address = def.Address
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.KeepaliveTime <= 0 {
		cfg.KeepaliveTime = def.KeepaliveTime
	}
	if cfg.KeepaliveTimeout <= 0 {
		cfg.KeepaliveTimeout = def.KeepaliveTimeout
	}

	kacp := keepalive.ClientParameters{
		Time:                cfg.KeepaliveTime,
		Timeout:             cfg.KeepaliveTimeout,
		PermitWithoutStream: false,
	}
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(kacp),
	}, cfg.DialOptions...)

	// Build client connection (no network I/O yet).
	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to text generation service at %s: %w", cfg.Address, err)
	}

	// Force a connection attempt during startup so we fail fast on bad endpoints.
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := waitForReady(connectCtx, conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to close gRPC connection after readiness failure", "error", closeErr)
		}
		return nil, fmt.Errorf("text generation service at %s not ready: %w", cfg.Address, err)
	}

	logger.Info("Connected to text generation service", "address", cfg.Address)

	return &GrpcGenerator{
		conn:           conn,
		health:         healthpb.NewHealthClient(conn),
		addr:           cfg.Address,
		requestTimeout: cfg.RequestTimeout,
		logger:         logger,
	}, nil
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

// Close closes the gRPC connection.
func (g *GrpcGenerator) Close() {
	if g.conn != nil {
		if err := g.conn.Close(); err != nil {
			g.logger.Warn("failed to close gRPC connection", "error", err)
		}
	}
}

// Health checks whether the remote service reports SERVING.
func (g *GrpcGenerator) Health(ctx context.Context) error {
	resp, err := g.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("health check failed: %w", errgrpc.ToNative(err))
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("health check failed: status %s", resp.GetStatus())
	}
	return nil
}

// Complete implements Generator.
func (g *GrpcGenerator) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	req, err := structpb.NewStruct(map[string]any{
		"system_prompt": systemPrompt,
		"user_text":     userText,
	})
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.requestTimeout)
	defer cancel()

	resp := &wrapperspb.StringValue{}
	if err := g.conn.Invoke(ctx, completeMethod, req, resp); err != nil {
		g.logger.Warn("Complete failed", "address", g.addr, "error", err)
		return "", fmt.Errorf("complete request failed: %w", errgrpc.ToNative(err))
	}

	text := strings.TrimSpace(resp.GetValue())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
