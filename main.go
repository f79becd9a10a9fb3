package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/bdc/weather-api/authenticator"
	"github.com/bdc/weather-api/config"
	"github.com/bdc/weather-api/controllers"
	"github.com/bdc/weather-api/database"
	"github.com/bdc/weather-api/metrics"
	apimiddleware "github.com/bdc/weather-api/middleware"
	"github.com/bdc/weather-api/repositories"
	"github.com/bdc/weather-api/services"
)

func main() {
	// A missing .env is fine; the environment and config.yaml are enough
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load the env vars: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger, clockwork.NewRealClock())
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("weather api starting",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("store", app.db.Driver()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	// Stop accepting requests first so every captured record is already queued
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	app.Close(shutdownCtx)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// app holds the long-lived components that need an orderly shutdown
type app struct {
	logger   *zap.Logger
	db       *database.Database
	recorder *services.RequestLogRecorder
	redis    *redis.Client
	stop     context.CancelFunc
	router   *chi.Mux
}

// newApp wires the record store, the capture recorder, the throttle store and
// the HTTP router. The store connects in the background; until it is ready
// request logging is skipped and log queries fail.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, clock clockwork.Clock) (*app, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	ctx, stop := context.WithCancel(ctx)
	a := &app{logger: logger, db: db, stop: stop}

	go db.ConnectWithRetry(ctx, clock, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	repos := repositories.NewRepositories(db.DB())

	a.recorder = services.NewRequestLogRecorder(repos.RequestLog, db, services.RecorderOptions{
		QueueSize:    cfg.CaptureQueueSize,
		Workers:      cfg.CaptureWorkers,
		WriteTimeout: cfg.CaptureWriteTimeout(),
	}, clock, logger, m)
	a.recorder.Start()
	metrics.WatchQueue(registry, a.recorder.Len)

	srvs := services.NewServices(repos, services.Options{
		Clock:          clock,
		Store:          db,
		QueryTimeout:   cfg.QueryTimeout(),
		WeatherBaseURL: cfg.WeatherBaseURL,
		WeatherTimeout: cfg.WeatherTimeout(),
	})
	ctrl := controllers.NewControllers(srvs, logger)

	store, err := a.throttleStore(ctx, cfg, clock)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	keyFunc := apimiddleware.GlobalKey()
	if cfg.ThrottleKey == config.ThrottleKeyIP {
		keyFunc = apimiddleware.IPKey()
	}

	if cfg.APIKey == "" {
		logger.Warn("API_KEY is not set, every /api request will be rejected")
	}

	a.router = setupRouter(ctrl, routerOptions{
		logger:        logger,
		verifier:      authenticator.NewSharedSecret(cfg.APIKey),
		apiKeyHeader:  cfg.APIKeyHeader,
		throttleStore: store,
		throttle: apimiddleware.ThrottleConfig{
			MaxRequests: cfg.ThrottleMaxRequests,
			Window:      cfg.ThrottleWindow(),
		},
		throttleKey: keyFunc,
		recorder:    a.recorder,
		metrics:     m,
		gatherer:    registry,
		publicDir:   cfg.PublicDir,
	})

	return a, nil
}

// throttleStore picks the shared Redis window when REDIS_URL is set and the
// in-process window otherwise
func (a *app) throttleStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (apimiddleware.ThrottleStore, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = redis.NewClient(opts)
		a.logger.Info("throttle window shared through redis", zap.String("addr", opts.Addr))
		return apimiddleware.NewRedisThrottleStore(a.redis, clock), nil
	}

	store := apimiddleware.NewInMemoryThrottleStore(clock)
	window := cfg.ThrottleWindow()
	go func() {
		ticker := clock.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				store.Cleanup(window)
			}
		}
	}()
	return store, nil
}

// Close drains the capture queue and then releases the store connections
func (a *app) Close(ctx context.Context) {
	a.stop()

	if a.recorder != nil {
		if err := a.recorder.Close(ctx); err != nil {
			a.logger.Warn("request log queue not fully drained", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close record store", zap.Error(err))
	}
}

type routerOptions struct {
	logger        *zap.Logger
	verifier      authenticator.Verifier
	apiKeyHeader  string
	throttleStore apimiddleware.ThrottleStore
	throttle      apimiddleware.ThrottleConfig
	throttleKey   apimiddleware.KeyFunc
	recorder      apimiddleware.Recorder
	metrics       *metrics.Metrics
	gatherer      prometheus.Gatherer
	publicDir     string
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, opts routerOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(cors.AllowAll().Handler)
	r.Use(apimiddleware.Recoverer(opts.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(apimiddleware.ClientIP)

	r.Handle("/metrics", promhttp.HandlerFor(opts.gatherer, promhttp.HandlerOpts{}))

	// API ROUTES: gate, then throttle, then capture
	r.Route("/api", func(r chi.Router) {
		r.Use(apimiddleware.RequireAPIKey(opts.verifier, opts.apiKeyHeader))
		r.Use(apimiddleware.Throttle(opts.throttleStore, opts.throttle, opts.throttleKey, opts.logger, opts.metrics))
		r.Use(apimiddleware.CaptureRequests(opts.recorder))

		r.Get("/logs", ctrl.Logs.Index)
		r.Get("/health", ctrl.Health.Show)
		r.Get("/weather", ctrl.Weather.Show)

		r.NotFound(controllers.NotFound)
		r.MethodNotAllowed(controllers.MethodNotAllowed)
	})

	// Dashboard assets
	if opts.publicDir != "" {
		if info, err := os.Stat(opts.publicDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(opts.publicDir)))
		} else {
			opts.logger.Info("static assets disabled", zap.String("dir", opts.publicDir))
		}
	}

	return r
}
