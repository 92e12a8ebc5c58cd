package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/app/background"
	"github.com/LavaJover/shvark-escrow-service/internal/app/setup"
	"github.com/LavaJover/shvark-escrow-service/internal/config"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/router"
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	slogger, logCloser, err := logger.New(logger.Config{
		Level:   cfg.LogConfig.LogLevel,
		Format:  cfg.LogConfig.LogFormat,
		Output:  cfg.LogConfig.LogOutput,
		Service: "escrow-service",
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	clock := domain.SystemClock{}
	uc := setup.InitializeUseCases(deps, clock)

	// HTTP API
	e := router.New(router.Deps{
		EscrowHandler:  handlers.NewEscrowHandler(uc.EscrowUsecase, clock, slogger),
		PaymentHandler: handlers.NewPaymentHandler(uc.PaymentUsecase, slogger),
		HealthHandler:  handlers.NewHealthHandler(deps.HealthChecks()),
		JWTSecret:      cfg.Auth.JWTSecret,
		Logger:         slogger,
		Gatherer:       deps.Registry,
	})
	e.Server.ReadTimeout = cfg.HTTPServer.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTPServer.WriteTimeout
	httpAddr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)

	// gRPC admin API
	grpcServer := grpc.NewServer()
	grpcapi.RegisterEscrowAdminServer(grpcServer, grpcapi.NewEscrowHandler(uc.EscrowUsecase, clock, slogger))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	grpcAddr := fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		slogger.Error("failed to listen", "addr", grpcAddr, "error", err)
		os.Exit(1)
	}

	if cfg.Sweep.Enabled {
		background.NewBackgroundTasks(uc.EscrowUsecase, clock, cfg.Sweep.Interval, slogger).StartAll(ctx)
	}

	errCh := make(chan error, 2)
	go func() {
		slogger.Info("HTTP server started", "addr", httpAddr)
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		slogger.Info("gRPC server started", "addr", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slogger.Info("shutting down")
	case err := <-errCh:
		slogger.Error("server failed", "error", err)
		stop()
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slogger.Error("failed to shut down HTTP server", "error", err)
	}
	grpcServer.GracefulStop()
	slogger.Info("stopped")
}
