// Package main serves the estimate form, the JSON API, live WebSocket
// estimates, and the health, status and metrics endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"auction-advisor/internal/app"
	"auction-advisor/internal/config"
	"auction-advisor/internal/logging"
	"auction-advisor/internal/web"
)

func main() {
	flags := flag.NewFlagSet("server", flag.ExitOnError)
	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Statistics and model are loaded once; failure here is fatal.
	adv, err := app.LoadAdvisor(ctx, cfg, "web", logger)
	if err != nil {
		logger.Fatal("load advisor", zap.Error(err))
	}

	server, err := web.NewServer(web.Options{
		Estimator: adv,
		Logger:    logger.Named("web"),
	})
	if err != nil {
		logger.Fatal("create server", zap.Error(err))
	}

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.Stringer("signal", sig))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing immediate shutdown", zap.Stringer("signal", sig))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = server.ListenAndServe(ctx, cfg.Addr)
	close(done)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
