package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitstack/healthcalc/internal/catalog"
	"github.com/fitstack/healthcalc/internal/compute"
	"github.com/fitstack/healthcalc/internal/config"
	"github.com/fitstack/healthcalc/internal/handler"
	"github.com/fitstack/healthcalc/internal/http"
	"github.com/fitstack/healthcalc/internal/session"
)

func main() {
	// Setup logger
	setupLogger()

	// Load configuration
	cfg := loadConfig()

	// Build the static capability catalog
	cat, err := catalog.New()
	if err != nil {
		slog.Error("Failed to build capability catalog", "error", err)
		os.Exit(1)
	}

	engine := compute.ReportEngine{}
	keepAlive := time.Duration(cfg.Session.KeepAliveIntervalMs) * time.Millisecond
	callTimeout := time.Duration(cfg.Tools.CallTimeoutMs) * time.Millisecond

	registry := session.NewRegistry(session.Options{
		MaxSessions: cfg.Session.MaxSessions,
		NewTransport: func(sessionID string) *session.SSETransport {
			endpoint := fmt.Sprintf("%s?session=%s", cfg.Server.MessagePath, sessionID)
			return session.NewSSETransport(sessionID, endpoint, cfg.Session.OutboundBufferSize, keepAlive)
		},
		NewHandler: func(sessionID string) session.Handler {
			return handler.New(sessionID, cat, engine, callTimeout)
		},
	})

	// Setup HTTP server
	h := http.NewHandler(registry)
	router := http.SetupRouter(h, cfg.Server.SSEPath, cfg.Server.MessagePath)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	serverManager := http.NewServerManager(router, port)
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", port, "sse", cfg.Server.SSEPath, "message", cfg.Server.MessagePath)
		if err := serverManager.Start(); err != nil {
			slog.Error("Server failed", "error", err)
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("Shutting down server...")
		// Close sessions first so open streams end and Shutdown can drain.
		registry.CloseAll()
		if err := serverManager.Shutdown(); err != nil {
			slog.Error("Failed to shutdown server", "error", err)
		}
	case err := <-serverErr:
		slog.Error("Server startup failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func loadConfig() *config.Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		slog.Info("CONFIG_PATH not set, using defaults")
		return config.Default()
	}

	slog.Info("Loading configuration", "path", configPath)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogger() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if os.Getenv("LOG_LEVEL") == "DEBUG" {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)
}
