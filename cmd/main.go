package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc/health"

	grpcRouter "github.com/dtroode/gophchat-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/gophchat-server/internal/api/grpc/server"
	httpRouter "github.com/dtroode/gophchat-server/internal/api/http/router"
	httpServer "github.com/dtroode/gophchat-server/internal/api/http/server"
	"github.com/dtroode/gophchat-server/internal/api/ws"
	"github.com/dtroode/gophchat-server/internal/config"
	"github.com/dtroode/gophchat-server/internal/logger"
	"github.com/dtroode/gophchat-server/internal/metrics"
	"github.com/dtroode/gophchat-server/internal/model"
	"github.com/dtroode/gophchat-server/internal/presence"
	"github.com/dtroode/gophchat-server/internal/repository/postgres"
	"github.com/dtroode/gophchat-server/internal/server"
	"github.com/dtroode/gophchat-server/internal/service"
	storage "github.com/dtroode/gophchat-server/internal/storage/minio"
	"github.com/dtroode/gophchat-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	relayMetrics := metrics.New(registry)

	userRepo := postgres.NewUserRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	attachmentRepo := postgres.NewAttachmentRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	presenceRegistry := presence.New()
	metrics.TrackPresence(registry, presenceRegistry.Len)

	authService := service.NewAuth(userRepo, tokenManager, logger)
	relayService := service.NewRelay(messageRepo, attachmentRepo, storageClient, presenceRegistry, relayMetrics, logger)
	historyService := service.NewHistory(messageRepo, attachmentRepo, storageClient, presenceRegistry, relayMetrics, logger)
	lifecycleService := service.NewLifecycle(presenceRegistry, userRepo, relayMetrics, logger)

	realtime := ws.NewHandler(lifecycleService, relayService, historyService, relayMetrics, ws.Options{
		OriginPatterns: originPatterns(cfg.HTTP.AllowedOrigins),
		ReadLimitBytes: cfg.WebSocket.ReadLimitBytes,
		WriteTimeout:   cfg.WebSocket.WriteTimeout,
		SendBuffer:     cfg.WebSocket.SendBuffer,
	}, logger)

	router := httpRouter.New(authService, relayService, realtime, registry, cfg.HTTP.AllowedOrigins, cfg.HTTP.MaxUploadBytes, logger)
	publicServer := httpServer.NewHTTPServer(router.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	healthServer := health.NewServer()
	probeServer := grpcServer.NewGRPCServer(grpcRouter.New(healthServer, logger).Register(), healthServer, fmt.Sprintf(":%s", cfg.GRPC.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	servers := []struct {
		server model.Server
		layer  model.SecurityLayer
	}{
		{server: publicServer, layer: sl},
		{server: probeServer, layer: server.NewPlainListener()},
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			err := s.Start(sl)
			if err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s.server, s.layer)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.server.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.server.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// originPatterns converts CORS origins into WebSocket origin patterns, which match hosts only.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
