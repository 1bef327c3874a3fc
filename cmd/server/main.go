package main

import (
	"context"
	"crypto/tls"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mesikahq/spitalverse/internal/api"
	"github.com/mesikahq/spitalverse/internal/assistant"
	"github.com/mesikahq/spitalverse/internal/audit"
	"github.com/mesikahq/spitalverse/internal/bootstrap"
	"github.com/mesikahq/spitalverse/internal/config"
	"github.com/mesikahq/spitalverse/internal/metrics"
	"github.com/mesikahq/spitalverse/internal/record"
	"github.com/mesikahq/spitalverse/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Server.Mode == gin.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	slot, closeSlot, err := bootstrap.OpenSlot(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeSlot()

	// Audit trail: logrus JSON lines, mirrored to Elasticsearch when configured
	auditLogger := logrus.New()
	auditLogger.SetFormatter(&logrus.JSONFormatter{})
	auditService, err := bootstrap.NewAuditService(cfg, auditLogger)
	if err != nil {
		logger.Fatal("Failed to initialize audit service", zap.Error(err))
	}

	opts := []store.Option{
		store.WithObserver(metrics.StoreObserver()),
		store.WithObserver(audit.StoreObserver(auditService)),
	}
	if cfg.Storage.SeedDemo {
		opts = append(opts, store.WithSeed(record.DemoState))
	}
	st, err := store.New(ctx, slot, opts...)
	if err != nil {
		logger.Fatal("Failed to load store", zap.Error(err))
	}

	llmClient := bootstrap.NewLLMClient(cfg)
	if !llmClient.Configured() {
		logger.Info("LLM API key not set; assistant responses will use local fallbacks")
	}
	gateway := assistant.NewGateway(llmClient, logger)
	assistantService := assistant.NewService(st, gateway,
		assistant.WithLogger(logger),
		assistant.WithOutcome(audit.OutcomeRecorder(auditService)),
	)

	catalog, err := bootstrap.LoadCatalog(cfg)
	if err != nil {
		logger.Fatal("Failed to load lab catalog", zap.Error(err))
	}

	handler := api.NewHandler(st, assistantService, gateway, catalog, auditService, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:    cfg.CORS.Origins,
		RateLimit:      rate.Limit(cfg.RateLimit.RPS),
		Burst:          cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	engine := router.SetupRouter(logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	go func() {
		logger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("tls", cfg.Server.TLS.Enabled),
		)
		var serveErr error
		if cfg.Server.TLS.Enabled {
			serveErr = srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(serveErr))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
