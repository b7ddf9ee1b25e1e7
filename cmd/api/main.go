package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/landing-api/internal/app"
	"github.com/noah-isme/landing-api/internal/checkout"
	"github.com/noah-isme/landing-api/internal/config"
	"github.com/noah-isme/landing-api/internal/credential"
	"github.com/noah-isme/landing-api/internal/engine"
	"github.com/noah-isme/landing-api/internal/health"
	"github.com/noah-isme/landing-api/internal/obs"
	"github.com/noah-isme/landing-api/internal/page"
	"github.com/noah-isme/landing-api/internal/ratelimit"
	"github.com/noah-isme/landing-api/internal/transaction"
	"github.com/noah-isme/landing-api/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	if cfg.UsingDevMasterKey() {
		logger.Warn().Msg("APP_MASTER_KEY not set, using development placeholder; stored credentials are NOT protected")
	}

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "landing")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)
	httpMetrics := obs.NewHTTPMetrics(metricsNamespace, obs.ParseBucketsCSV(os.Getenv("OBS_HTTP_BUCKETS_MS")), nil)

	if envBool("OBS_ENABLE_TRACING", true) {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "landing-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "landing-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if err := app.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	pageStore := page.Store{
		Pool:  pool,
		Cache: page.NewCache(redisClient, cfg.PageCacheTTL),
	}
	pageHandler := &page.Handler{Repo: pageStore}

	credentialStore := credential.Store{
		Q:            credential.PGQuerier{Pool: pool},
		MasterSecret: cfg.MasterKey,
	}
	credentialHandler := &credential.Handler{Store: credentialStore, Logger: logger}

	templateStore := engine.TemplateStore{Pool: pool}
	templateHandler := &engine.Handler{Templates: templateStore}

	gatewayClient := &http.Client{
		Timeout:   cfg.GatewayTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	paymentEngine := &engine.Engine{
		Templates:   templateStore,
		Credentials: credentialStore,
		Client:      gatewayClient,
		Logger:      logger.With().Str("component", "engine").Logger(),
	}

	uploadHandler := &upload.Handler{Uploader: &upload.Uploader{
		Credentials: credentialStore,
		Client:      gatewayClient,
		Logger:      logger.With().Str("component", "upload").Logger(),
	}}

	transactionStore := transaction.PGStore{Pool: pool}
	transactionHandler := &transaction.Handler{Store: transactionStore}

	checkoutService := &checkout.Service{
		Pages:        pageStore,
		Transactions: transactionStore,
		Engine:       paymentEngine,
		Validate:     validator.New(),
		Logger:       logger.With().Str("component", "checkout").Logger(),
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutService}

	limiter := ratelimit.Limiter{Client: redisClient, Prefix: "rl:checkout:"}
	limitCheckout := limiter.Middleware(cfg.CheckoutRateWindow, cfg.CheckoutRateMax, func(err error) {
		logger.Warn().Err(err).Msg("rate limiter degraded")
	})

	healthHandler := health.Handler{Checker: health.PoolChecker{Pool: pool, Redis: redisClient}}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/pages/{slug}/config", pageHandler.StorefrontConfig)
		r.With(limitCheckout).Post("/coupons/check", pageHandler.CheckCoupon)
		r.With(limitCheckout).Post("/checkout", checkoutHandler.Create)

		// Admin routes carry no authentication here; deployments front them
		// with an authenticating proxy.
		r.Route("/admin", func(r chi.Router) {
			r.Get("/pages", pageHandler.List)
			r.Post("/pages", pageHandler.Upsert)
			r.Get("/pages/{slug}", pageHandler.Get)
			r.Get("/templates", templateHandler.ListTemplates)
			r.Post("/templates", templateHandler.UpsertTemplate)
			r.Post("/credentials", credentialHandler.Save)
			r.Post("/upload-image", uploadHandler.Image)
			r.Get("/transactions", transactionHandler.List)
		})
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")
	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelTimeout()
	if err := server.Shutdown(ctxTimeout); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
