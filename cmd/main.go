package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "social_gateway/docs"
	"social_gateway/internal/config"
	"social_gateway/internal/handlers"
	"social_gateway/internal/logger"
	"social_gateway/internal/server"
	"social_gateway/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title        Social Gateway API
// @version      1.0
// @description  Browser-facing proxy in front of the social network backend.
// @BasePath     /
func main() {
	// load .env, configs/config.yml and the environment
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	// wire dependencies
	services := service.NewService(cfg.BackendURL, nil)
	apiHandler := handlers.NewHandler(services, log.Named("http"),
		handlers.WithClientBaseURL(cfg.ClientBaseURL),
		handlers.WithCookieSecure(cfg.CookieSecure),
	)

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)
	log.Infow("gateway started", "addr", srv.Addr(), "backend", cfg.BackendURL, "client_base_url", cfg.ClientBaseURL)

	// graceful shutdown
	waitForShutdown(srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
