package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"email-dispatch-go/internal/config"
	"email-dispatch-go/internal/dispatch"
	"email-dispatch-go/internal/handlers"
	"email-dispatch-go/internal/history"
	"email-dispatch-go/internal/mailer"
	"email-dispatch-go/internal/metrics"
	"email-dispatch-go/internal/monitor"
	"email-dispatch-go/internal/queue"
	"email-dispatch-go/internal/server"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Email Dispatch Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m := metrics.NewMetrics()

	ml := mailer.NewMailer(&cfg.SMTP)
	if err := ml.Verify(); err != nil {
		// Non-fatal: submissions are still attempted and the monitor
		// keeps retrying verification.
		logrus.Warnf("SMTP transport unverified at startup: %v", err)
	}

	store := history.NewStore(cfg.History.MaxEntries)
	engine := dispatch.NewEngine(ml, store, m)

	bridge := queue.NewBridge(&cfg.Kafka, engine, m)
	bridge.Start(context.Background())

	mon := monitor.NewMonitor(&cfg.Monitor, ml, store)
	if err := mon.Start(); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	h := handlers.NewHandlers(engine, store, ml, bridge, mon, cfg.ServiceName)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mon.Stop(); err != nil {
		logrus.Errorf("Failed to stop monitor: %v", err)
	}

	if err := bridge.Close(); err != nil {
		logrus.Errorf("Failed to close queue bridge: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
