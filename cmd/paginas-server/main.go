// Package main provides the HTTP server for paginas.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasvnasc/paginas-semelhantes/internal/config"
	"github.com/lucasvnasc/paginas-semelhantes/internal/metrics"
	"github.com/lucasvnasc/paginas-semelhantes/internal/server"
	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	}()
	slog.SetDefault(logger)

	collector := metrics.NewCollector()
	jobs := service.NewJobManager(service.NewAnalysisService(collector))
	srv := server.New(cfg.ServerPort, jobs, collector, logger)

	go func() {
		logger.Info("starting paginas-server",
			"port", cfg.ServerPort,
			"threshold", cfg.Threshold,
			"min_keywords", cfg.MinKeywords)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
