package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/cardscan/internal/app"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/repository"
	"github.com/joseph-ayodele/cardscan/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $CARDSCAN_CONFIG)")
	addr := flag.String("addr", "", "listen address (default from config)")
	flag.Parse()

	_ = godotenv.Load()

	var (
		cfg *common.Config
		err error
	)
	if *configPath != "" {
		cfg, err = common.LoadConfigFrom(*configPath)
	} else {
		cfg, err = common.LoadConfig()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.GRPCAddr = *addr
	}

	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := repository.HealthCheck(ctx, a.KV, 3*time.Second, logger); err != nil {
		logger.Error("storage health failed", "error", err)
		os.Exit(1)
	}

	gs, hs := server.New(server.NewCardService(a.Processor, a.Exporter, logger), logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC serving", "addr", lis.Addr().String())
		serveErr <- gs.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-serveErr:
		logger.Error("grpc serve", "error", err)
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("graceful stop timed out; forcing")
		gs.Stop()
	}
	if err := a.Store.Persist(context.Background()); err != nil {
		logger.Error("final persist failed", "error", err)
	}
	logger.Info("stopped")
}
