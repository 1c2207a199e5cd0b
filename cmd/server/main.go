package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DeafWorld/story-clash/config"
	"github.com/DeafWorld/story-clash/internal/game"
	"github.com/DeafWorld/story-clash/internal/gateway"
	"github.com/DeafWorld/story-clash/internal/story"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "./config/config.json", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fallback := setupLogger("info")
		fallback.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Set up logger
	logger := setupLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	// Load story trees
	catalog := story.NewCatalog()
	if cfg.Server.StoryDir != "" {
		loaded, err := story.NewLoader(cfg.Server.StoryDir).LoadInto(catalog)
		if err != nil {
			logger.Fatal("Failed to load story trees", zap.Error(err))
		}
		logger.Info("Loaded story trees", zap.Int("count", loaded), zap.String("dir", cfg.Server.StoryDir))
	}

	// Initialize room manager and realtime gateway
	store := game.NewMemoryStore()
	rooms := game.NewRoomManager(cfg, store, catalog, nil, logger)
	gw := gateway.NewGateway(rooms, cfg.Server.PublicURL, logger)

	// Sweep expired rooms until shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rooms.StartSweeper(ctx)

	server := setupHTTPServer(cfg, gw, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	waitForShutdown(server, logger)
}

func setupLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(parsed)
	}
	logger, _ := config.Build()
	return logger
}

func setupHTTPServer(cfg config.Config, gw *gateway.Gateway, logger *zap.Logger) *http.Server {
	// Create router
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Request timeouts stay off the router so the WebSocket endpoint can
	// hold its connection open.
	gw.Routes(router)

	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
