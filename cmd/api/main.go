package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/cmd/mainconfig"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/api/router"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/app/bootstrap"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	appconfig "github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/config"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/conversation"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/http/handlers"
	httpmiddleware "github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/http/middleware"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/observability/metrics"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webchat"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webhook"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barber salon API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildHandler(ctx, cfg, prometheus.NewRegistry(), logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Booking turns wait on the LLM and the calendar webhook.
		WriteTimeout: cfg.LLMTimeout + cfg.WebhookTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics registers the booking metrics and returns the /metrics handler.
func setupMetrics(reg *prometheus.Registry) (http.Handler, *metrics.BookingMetrics) {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBookingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// loadAWSConfig returns nil when no AWS-backed component is configured.
func loadAWSConfig(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *aws.Config {
	if !cfg.UsesAWS() {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("failed to load AWS config; AWS features disabled", "error", err)
		return nil
	}
	return &awsCfg
}

// buildHandler assembles every component behind the HTTP router. The cleanup
// func releases pools and clients in reverse order.
func buildHandler(ctx context.Context, cfg *appconfig.Config, reg *prometheus.Registry, logger *logging.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	metricsHandler, bookingMetrics := setupMetrics(reg)
	awsCfg := loadAWSConfig(ctx, cfg, logger)

	store, closeStore, err := bootstrap.BuildCatalogStore(ctx, cfg, logger)
	if err != nil {
		return nil, func() {}, err
	}
	closers = append(closers, closeStore)

	llm, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, bookingMetrics, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	closers = append(closers, llm.Close)

	wh := webhook.NewClient(cfg.N8NWebhookURL,
		webhook.WithLogger(logger),
		webhook.WithTimeouts(cfg.WebhookTimeout, cfg.WebhookTestTimeout),
		webhook.WithSalon(cfg.SalonName, cfg.AppointmentDuration),
	)

	bookerOpts := []booking.BookerOption{
		booking.WithLogger(logger),
		booking.WithMetrics(bookingMetrics),
		booking.WithNotifier(bootstrap.BuildNotifier(cfg, awsCfg, logger)),
	}
	var lister handlers.BookingLister
	ledger, ledgerDB, err := bootstrap.BuildLedger(cfg, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	if ledger != nil {
		closers = append(closers, func() { _ = ledgerDB.Close() })
		bookerOpts = append(bookerOpts, booking.WithLedger(ledger))
		lister = ledger
	}
	booker := booking.NewBooker(store, wh, bookerOpts...)

	chat, err := conversation.NewService(conversation.Config{
		Store:       store,
		Sessions:    bootstrap.BuildSessionStore(ctx, cfg, logger),
		LLM:         llm.Client,
		Finalizer:   booking.NewFinalizer(booker, bootstrap.BuildArchiver(cfg, awsCfg, logger), logger),
		Metrics:     bookingMetrics,
		Logger:      logger,
		SalonName:   cfg.SalonName,
		ModelID:     llm.ModelID,
		LLMTimeout:  cfg.LLMTimeout,
		IdleTimeout: cfg.SessionTTL,
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	routerCfg := &router.Config{
		Logger:             logger,
		Salon:              handlers.NewSalonHandler(store, booker, lister, wh, logger),
		Chat:               conversation.NewHandler(chat, logger),
		WebChat:            webchat.NewHandler(chat, webchat.WidgetJS, logger),
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	return router.New(routerCfg), cleanup, nil
}
