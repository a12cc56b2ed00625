package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miradorstack/sales-insights/internal/api"
	"github.com/miradorstack/sales-insights/internal/cache"
	"github.com/miradorstack/sales-insights/internal/config"
	"github.com/miradorstack/sales-insights/internal/engine"
	"github.com/miradorstack/sales-insights/internal/metrics"
	"github.com/miradorstack/sales-insights/internal/repo"
	"github.com/miradorstack/sales-insights/internal/services"
	"github.com/miradorstack/sales-insights/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting sales-insights",
		slog.String("http_address", cfg.Server.HTTPAddress),
		slog.String("grpc_address", cfg.Server.GRPCAddress),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	window, err := cfg.Dataset.Window()
	if err != nil {
		logger.Error("invalid dataset window", slog.Any("error", err))
		os.Exit(1)
	}
	store := repo.NewSalesStore(repo.GeneratorConfig{
		Seed:     cfg.Dataset.Seed,
		Start:    window.Start,
		End:      window.End,
		Category: cfg.Dataset.Category,
		Products: cfg.Dataset.Products,
		Regions:  cfg.Dataset.Regions,
	}, logger)
	metrics.SetDatasetRows(store.Len())

	cacheProvider := newCacheProvider(cfg.Cache, logger)
	defer cacheProvider.Close()

	pipeline := engine.NewPipeline(logger, store, cfg.Dashboard.PreviewLimit)
	dashboard := services.NewDashboardService(logger, store, pipeline, cacheProvider, services.DashboardConfig{
		MaxPreviewLimit: cfg.Dashboard.MaxPreviewLimit,
		ResultTTL:       cfg.Cache.ResultTTL,
	})

	server, err := api.NewServer(cfg.Server, api.NewDashboardGRPC(logger, dashboard))
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddress,
		Handler:           api.NewRouter(logger, dashboard),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	go func() {
		logger.Info("http server listening", slog.String("address", cfg.Server.HTTPAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server exited", slog.Any("error", err))
			stop()
		}
	}()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("grpc server listening", slog.String("address", server.Address()))
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("gRPC server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("sales-insights stopped", slog.Duration("recompute_p95", dashboard.LatencyP95()))
}

// newCacheProvider picks the result cache backend. An unreachable Redis degrades to the
// in-memory cache rather than failing startup.
func newCacheProvider(cfg config.CacheConfig, logger *slog.Logger) cache.Provider {
	if !cfg.Enabled {
		return cache.NoopProvider{}
	}
	if cfg.Backend != config.CacheBackendRedis {
		logger.Info("result cache enabled", slog.String("backend", config.CacheBackendMemory))
		return cache.NewMemoryProvider()
	}

	provider, err := cache.NewRedisProvider(context.Background(), cache.RedisConfig{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
		TLS:          cfg.TLS,
	})
	if err != nil {
		logger.Warn("redis cache unavailable, falling back to memory", slog.Any("error", err))
		return cache.NewMemoryProvider()
	}
	logger.Info("result cache enabled", slog.String("backend", config.CacheBackendRedis), slog.String("addr", cfg.Addr))
	return provider
}
