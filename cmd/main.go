package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roadpulse/roadpulse/internal/adapters/channel"
	"github.com/roadpulse/roadpulse/internal/adapters/http/api"
	"github.com/roadpulse/roadpulse/internal/adapters/rest"
	service "github.com/roadpulse/roadpulse/internal/app"
	"github.com/roadpulse/roadpulse/internal/config"
	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/internal/location"
	"github.com/roadpulse/roadpulse/pkg/logger"
	"github.com/roadpulse/roadpulse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithRadiusKm(cfg.AdmissionRadiusKm),
		service.WithAlertTTL(time.Duration(cfg.AlertTTLSeconds)*time.Second),
		service.WithLocationInterval(time.Duration(cfg.LocationIntervalSeconds)*time.Second),
		service.WithRefreshInterval(time.Duration(cfg.RefreshIntervalSeconds)*time.Second),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithSource(location.NewFixedSource(model.Position{
			Latitude:  cfg.StartLatitude,
			Longitude: cfg.StartLongitude,
		})),
		service.WithChannelFactory(func() channel.Channel {
			return channel.NewNATSChannel(
				channel.WithURL(cfg.NATSURL),
				channel.WithLogger(log.Named("channel")),
			)
		}),
		service.WithBackendFactory(func(sess model.Session) service.Backend {
			return rest.NewClient(cfg.BackendURL,
				rest.WithToken(sess.AuthToken),
				rest.WithUserID(sess.UserID),
				rest.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds)*time.Second),
				rest.WithUploadTimeout(time.Duration(cfg.UploadTimeoutSeconds)*time.Second),
			)
		}),
	)

	// Optionally start a session from configured credentials. Without a
	// token the pipeline stays idle until POST /session.
	if cfg.AuthToken != "" {
		if err := svc.StartSession(ctx, model.Session{
			UserID:    cfg.UserID,
			AuthToken: cfg.AuthToken,
		}); err != nil {
			log.Error(ctx, "failed to start configured session", logger.Error(err))
		}
	}
	defer svc.EndSession()

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startServiceMetricsUpdater starts a background goroutine that refreshes
// gauge metrics from service statistics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics pushes current service statistics to the gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}

	if alerts, ok := stats["alertsActive"].(int); ok {
		metrics.UpdateAlertsActive(alerts)
	}

	if hazards, ok := stats["hazardsTracked"].(int); ok {
		metrics.UpdateHazardsTracked(hazards)
	}
}
