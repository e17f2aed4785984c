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

	// Drivers
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	// Instrumentation
	"github.com/exaring/otelpgx"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	// Interne
	"github.com/jupiterclapton/cenackle/services/connection-service/config"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/adapters/primary/rest"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/adapters/secondary/cache"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/adapters/secondary/security"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/services"
)

func main() {
	// 1. Config & Logger
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	initLogger(cfg)
	slog.Info("🚀 Starting Connection Service", "env", cfg.Env, "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := initTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: Base de données (Postgres)
	dbConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		slog.Error("Unable to parse DB config", "error", err)
		os.Exit(1)
	}
	dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := repository.EnsureSchema(ctx, dbPool); err != nil {
		slog.Error("Unable to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to Postgres")

	// 4. Infrastructure: Event Broker (NATS JetStream), best effort
	var broker ports.EventPublisher
	nc, err := nats.Connect(cfg.NatsUrl)
	if err != nil {
		slog.Warn("⚠️ NATS unavailable, connection events disabled", "error", err)
	} else {
		defer nc.Close()
		nb, err := eventbroker.NewNatsBroker(ctx, nc)
		if err != nil {
			slog.Warn("⚠️ JetStream unavailable, connection events disabled", "error", err)
		} else {
			broker = nb
			slog.Info("✅ NATS JetStream connected")
		}
	}

	// 5. Infrastructure: Redis (cache des matches), best effort
	var matchCache ports.MatchCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		slog.Warn("Redis instrumentation failed", "error", err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("⚠️ Redis unavailable, match cache disabled", "error", err)
	} else {
		matchCache = cache.NewRedisMatchCache(rdb, cfg.MatchCacheTTL)
		slog.Info("✅ Connected to Redis")
	}

	// 6. Sécurité : clé publique RS256 d'identity-service
	pubKey, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		slog.Error("Unable to read JWT public key", "path", cfg.JWTPublicKeyPath, "error", err)
		os.Exit(1)
	}
	validator, err := security.NewJWTValidator(pubKey, cfg.JWTIssuer)
	if err != nil {
		slog.Error("Invalid JWT public key", "error", err)
		os.Exit(1)
	}

	// 7. Adapters (Driven) + Core
	messageRepo := repository.NewMessageRepo(dbPool)
	connectionRepo := repository.NewConnectionRepo(dbPool, messageRepo)
	userRepo := repository.NewUserRepo(dbPool)

	connectionService := services.NewConnectionService(connectionRepo, broker)
	userService := services.NewUserService(userRepo, matchCache)
	matchService := services.NewMatchService(userRepo, matchCache)
	messageService := services.NewMessageService(messageRepo, userRepo, connectionService)

	// 8. Primary Adapter (REST)
	api := rest.NewServer(connectionService, userService, matchService, messageService)
	srvHTTP := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.Handler(rest.HandlerConfig{
			Validator:      validator,
			AllowedOrigins: cfg.AllowedOrigins,
			ServiceName:    cfg.ServiceName,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 9. Health Check gRPC standard pour K8s/Docker
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// Reflection pour grpcurl, hors prod
	if cfg.Env != "prod" {
		reflection.Register(grpcServer)
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		slog.Error("Failed to listen", "error", err)
		os.Exit(1)
	}

	// 10. Démarrage
	go func() {
		slog.Info("📡 Health server listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server error", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		slog.Info("📡 Connection Service listening", "port", cfg.HTTPPort)
		if err := srvHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	slog.Info("👋 Server exited")
}

// --- Helpers ---

func initLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Env == "local" {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler).With("service", cfg.ServiceName))
}

func initTracer(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Env),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
