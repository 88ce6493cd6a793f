package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cheongchoi112/ai-fitness-api/internal/ai"
	"github.com/cheongchoi112/ai-fitness-api/internal/auth"
	"github.com/cheongchoi112/ai-fitness-api/internal/config"
	"github.com/cheongchoi112/ai-fitness-api/internal/db"
	"github.com/cheongchoi112/ai-fitness-api/internal/middleware"
	"github.com/cheongchoi112/ai-fitness-api/internal/plans"
	"github.com/cheongchoi112/ai-fitness-api/internal/progress"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/metrics"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/internal/users"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

const WelcomeMessage = "Welcome to the AI Fitness API!"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	verifier    auth.Verifier
	rateLimiter middleware.RequestRateLimiter

	usersHandler    *users.Handler
	plansHandler    *plans.Handler
	progressHandler *progress.Handler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config  *config.Config
	Secrets *config.Secrets
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		TracingEnabled: cfg.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	} else if err := db.EnsureSchema(ctx, dbPool); err != nil {
		return nil, err
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.Secrets.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(cfg.HoneycombTracingEnabled, "ai-fitness-api", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.AITimeout,
	}

	hmacSecret := ""
	if cfg.AllowHMACTokens {
		hmacSecret = params.Secrets.JWTHMACSecret
	}
	verifier := auth.NewCachedVerifier(
		auth.NewTokenVerifier(auth.TokenVerifierParams{
			ProjectID:  cfg.FirebaseProjectID,
			CertsURL:   cfg.FirebaseCertsURL,
			HMACSecret: hmacSecret,
			HttpClient: tracedHttpClient,
		}),
		cfg.TokenCacheTTL,
		rdb,
	)

	geminiClient, err := ai.NewGeminiClient(ai.GeminiClientParams{
		BaseURL:        cfg.AIBaseURL,
		APIKey:         params.Secrets.GeminiAPIKey,
		Models:         cfg.AIModels,
		Timeout:        cfg.AITimeout,
		MetricsManager: metricsManager,
		HttpClient:     tracedHttpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	imageDecorator := ai.NewImageDecorator(ai.ImageDecoratorParams{
		Enabled:        cfg.ImagesEnabled,
		Model:          cfg.ImagesModel,
		MaxConcurrent:  cfg.ImagesConcurrent,
		CacheBytes:     cfg.ImagesCacheBytes,
		Generator:      geminiClient,
		MetricsManager: metricsManager,
	})

	usersRepo := users.NewRepo(dbPool)
	plansRepo := plans.NewRepo(dbPool)

	s := &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,
		verifier:    verifier,
		rateLimiter: redis_rate.NewLimiter(rdb),

		usersHandler: users.NewHandler(users.NewService(users.ServiceParams{
			Users:          usersRepo,
			Plans:          plansRepo,
			Generator:      geminiClient,
			Decorator:      imageDecorator,
			StoreTimeout:   cfg.StoreTimeout,
			MetricsManager: metricsManager,
		})),
		plansHandler: plans.NewHandler(
			plans.NewService(plansRepo, cfg.StoreTimeout, metricsManager),
		),
		progressHandler: progress.NewHandler(
			progress.NewService(progress.NewRepo(dbPool), usersRepo, cfg.StoreTimeout, metricsManager),
		),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, WelcomeMessage)
	}).Methods("GET").Name("welcome")

	usersRouter := r.PathPrefix("/api/users").Subrouter()
	usersRouter.HandleFunc("/onboarding", s.usersHandler.HandleOnboarding).Methods("POST", "OPTIONS").Name("onboarding")
	usersRouter.Handle("/regenerate-plan", middleware.RateLimit(
		s.rateLimiter,
		"regenerate-plan",
		s.config.PlanRateLimitAllowed,
		s.metricsManager,
	)(http.HandlerFunc(s.usersHandler.HandleRegeneratePlan))).Methods("POST", "OPTIONS").Name("regenerate-plan")
	usersRouter.HandleFunc("/profile", s.usersHandler.HandleGetProfile).Methods("GET", "OPTIONS").Name("get-profile")
	usersRouter.HandleFunc("/delete", s.usersHandler.HandleDeleteAccount).Methods("DELETE", "OPTIONS").Name("delete-account")

	fitnessRouter := r.PathPrefix("/api/fitness").Subrouter()
	fitnessRouter.HandleFunc("/echo", s.plansHandler.HandleEcho).Methods("POST", "OPTIONS").Name("echo")
	fitnessRouter.HandleFunc("/mark-workout", s.plansHandler.HandleMarkWorkout).Methods("POST", "OPTIONS").Name("mark-workout")

	s.progressHandler.SetupRoutes(r.PathPrefix("/api/progress").Subrouter())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteJSONError(w, "Not found", http.StatusNotFound)
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.verifier)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler: router,
		Addr:    ipAndPort,
		// plan generation with images takes minutes
		WriteTimeout: 5 * time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
