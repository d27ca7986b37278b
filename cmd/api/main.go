package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/meetdoc-api/internal/config"
	"github.com/harentsoaR/meetdoc-api/internal/handlers"
	"github.com/harentsoaR/meetdoc-api/internal/metrics"
	"github.com/harentsoaR/meetdoc-api/internal/middleware"
	"github.com/harentsoaR/meetdoc-api/internal/services"
	"github.com/harentsoaR/meetdoc-api/internal/store"
	"github.com/harentsoaR/meetdoc-api/internal/utils"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// --- Store ---
	cols, pinger, closeStore := openStore(cfg)
	defer closeStore()

	m := metrics.New("meetdoc")
	cols = cols.Instrument(m)

	// --- Services ---
	var intents services.IntentCreator
	if cfg.StripeSecretKey != "" {
		intents = services.NewStripeIntents(cfg.StripeSecretKey, cfg.StripeAPIURL)
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY is not set, payment intents are disabled")
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, token issuance is disabled")
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	h := handlers.NewHandler(
		services.NewIdentityService(cols.Users, cols.Doctors),
		services.NewMeetingService(cols.Meetings, cfg.StrictLifecycle),
		services.NewPaymentService(cols.Payments, intents),
		services.NewFeedbackService(cols.Feedback),
		tokens,
		pinger,
	)
	h.IntentLimiter = middleware.NewRateLimiter(cfg.IntentRate, cfg.IntentBurst)
	if h.IntentLimiter != nil {
		log.Info().Float64("rate", cfg.IntentRate).Int("burst", cfg.IntentBurst).Msg("payment intent rate limit enabled")
	}

	// --- Gin Router ---
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		m.Middleware(),
		cors.New(corsConfig(cfg.CORSOrigins)),
		middleware.Identify(tokens),
	)

	h.RegisterRoutes(r)
	r.GET("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited properly")
}

// openStore acquires the collections for the configured driver. The returned
// func releases the connection and must run after the server has drained.
func openStore(cfg *config.Config) (store.Collections, store.Pinger, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return store.NewMemoryCollections(), store.NopPinger(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	return client.Collections(), client, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl <= zerolog.DebugLevel {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
