package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/barberflow/booking-storefront/internal/api/router"
	"github.com/barberflow/booking-storefront/internal/availability"
	appconfig "github.com/barberflow/booking-storefront/internal/config"
	"github.com/barberflow/booking-storefront/internal/customer"
	"github.com/barberflow/booking-storefront/internal/holiday"
	"github.com/barberflow/booking-storefront/internal/observability/metrics"
	"github.com/barberflow/booking-storefront/internal/storefront"
	"github.com/barberflow/booking-storefront/internal/upstream"
	"github.com/barberflow/booking-storefront/internal/wizard"
	"github.com/barberflow/booking-storefront/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-storefront API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"upstream", cfg.UpstreamBaseURL,
	)

	if cfg.CustomerJWTSecret == "" && cfg.Env != "development" {
		logger.Error("CUSTOMER_JWT_SECRET is required outside development")
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger.Named("upstream"))

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	var holidays holiday.Calendar = holiday.None
	if cfg.HolidaysEnabled {
		holidays = holiday.NewService(upstreamClient, logger.Named("holiday"))
	}

	resolver := availability.NewResolver(upstreamClient, redisClient, cfg.MonthlyCacheTTL, logger.Named("availability"))
	loader := availability.NewLoader(upstreamClient, logger.Named("availability"))

	wizardSvc := wizard.NewService(wizard.Config{
		Store:       wizard.NewStore(redisClient, cfg.SessionTTL),
		Shops:       upstreamClient,
		Resolver:    resolver,
		Loader:      loader,
		Holidays:    holidays,
		Metrics:     bookingMetrics,
		Logger:      logger.Named("wizard"),
		HorizonDays: cfg.SearchHorizonDays,
	})

	tokens := customer.NewTokenManager(cfg.CustomerJWTSecret, cfg.CustomerTokenTTL)

	r := router.New(&router.Config{
		Logger:             logger,
		Wizard:             wizard.NewHandler(wizardSvc, logger.Named("wizard")),
		Customer:           customer.NewHandler(upstreamClient, tokens, logger.Named("customer")),
		Storefront:         storefront.NewHandler(upstreamClient, logger.Named("storefront")),
		Tokens:             tokens,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		OTPRatePerMinute:   cfg.OTPRatePerMinute,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
