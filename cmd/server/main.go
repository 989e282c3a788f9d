// Outing planner HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/ashureev/outing-planner/internal/api"
	"github.com/ashureev/outing-planner/internal/app"
	"github.com/ashureev/outing-planner/internal/config"
	"github.com/ashureev/outing-planner/internal/identity"
	"github.com/ashureev/outing-planner/internal/live"
	"github.com/ashureev/outing-planner/internal/middleware"
	"github.com/ashureev/outing-planner/internal/store"
	"github.com/ashureev/outing-planner/internal/telemetry"
	"github.com/ashureev/outing-planner/internal/textgen"
	"github.com/ashureev/outing-planner/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "store", cfg.Store.Driver, "textgen", cfg.TextGen.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     "0.1.0",
	})
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	a, err := app.Build(cfg, logger)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("Failed to close application", "error", closeErr)
		}
	}()

	if err := a.Ping(ctx); err != nil {
		slog.Error("Checkpoint store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Checkpoint store connected")

	// Optional gRPC surface for the configured generator.
	var grpcSrv *grpc.Server
	if cfg.TextGen.GrpcListen != "" && a.Generator != nil {
		lis, err := net.Listen("tcp", cfg.TextGen.GrpcListen)
		if err != nil {
			slog.Error("Failed to listen for gRPC", "addr", cfg.TextGen.GrpcListen, "error", err)
			os.Exit(1)
		}
		grpcSrv = grpc.NewServer()
		textgen.RegisterServer(grpcSrv, a.Generator)
		go func() {
			slog.Info("Text generation gRPC listening", "addr", lis.Addr().String())
			if err := grpcSrv.Serve(lis); err != nil {
				slog.Error("gRPC server failed", "error", err)
			}
		}()
	}

	hub := live.NewHub()
	itineraryHandler := api.NewItineraryHandler(a.Orchestrator, cfg.Timeout.Request)
	checks := map[string]api.Pinger{"database": a.Store}
	if h, ok := a.Generator.(interface{ Health(context.Context) error }); ok {
		checks["textgen"] = api.PingerFunc(h.Health)
	}
	healthHandler := api.NewHealthHandler(checks, cfg.Timeout.HealthCheck)
	wsHandler := live.NewHandler(a.Orchestrator, hub, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(allowedOrigins(cfg)))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)
	itineraryHandler.RegisterRoutes(r)
	r.Get("/ws/plan", wsHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, "http.server"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // planning runs and websockets outlive any fixed write timeout
		IdleTimeout:  120 * time.Second,
	}

	store.StartTTLWorker(ctx, a.Store, cfg.SessionTTL, func(deleted int64) {
		slog.Info("Expired sessions removed", "count", deleted)
	})
	slog.Info("TTL worker started", "session_ttl", cfg.SessionTTL)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Shutdown)
	defer cancel()

	hub.CloseAll()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped successfully")
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() || cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
