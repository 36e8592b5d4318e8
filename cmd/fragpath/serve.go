package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klyr/fragpath/internal/config"
	"github.com/klyr/fragpath/internal/logging"
	"github.com/klyr/fragpath/internal/observability"
	"github.com/klyr/fragpath/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const (
	pruneInterval = time.Minute
	pruneIdle     = 5 * time.Minute
)

func newServeCmd() *cobra.Command {
	var configPath string
	var listenOverride string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve path resolution over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return errors.New("config path is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listenOverride != "" {
				cfg.Server.Listen = listenOverride
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&listenOverride, "listen", "", "Override server.listen")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Logging.ResolutionLog != "" {
		resolutionLog, closer, err := logging.OpenResolutionLog(cfg.ResolvePath(cfg.Logging.ResolutionLog))
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		srv.SetResolutionLogger(resolutionLog)
	}

	metricsSrv := startMetricsServer(cfg, srv, logger)
	defer func() {
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(context.Background())
		}
	}()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpSrv.ListenAndServe()
	}()
	logger.Info("listening", "addr", cfg.Server.Listen)

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-signalCtx.Done():
			break loop
		case now := <-ticker.C:
			if removed := srv.Limiter().Prune(now, pruneIdle); removed > 0 {
				logger.Debug("pruned rate limit buckets", "count", removed)
			}
		case err := <-serverErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			break loop
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func startMetricsServer(cfg *config.Config, srv *server.Server, logger *slog.Logger) *http.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	srv.SetMetrics(metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	metricsSrv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	return metricsSrv
}
