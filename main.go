package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"streakzillaAPI/handlers"
	"streakzillaAPI/internal/cache"
	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/config"
	"streakzillaAPI/internal/db"
	"streakzillaAPI/internal/logger"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/workers"
	"streakzillaAPI/middleware"
	"streakzillaAPI/services"

	_ "net/http/pprof"
)

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Init(cfg.Env); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()
	if !envLoaded {
		logger.Log.Info("No .env file found, using process environment")
	}

	clerk.SetKey(cfg.Clerk.SecretKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbPool, err := db.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Log.Fatal("Database unavailable", zap.Error(err))
	}
	defer func() {
		logger.Log.Info("Closing database connection pool")
		dbPool.Close()
	}()
	logger.Log.Info("Connected to Postgres")

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, dbPool); err != nil {
			logger.Log.Fatal("Migration failed", zap.Error(err))
		}
		logger.Log.Info("Schema applied")
	}

	snapshots := newCache(ctx, cfg.Redis.URL)
	defer snapshots.Close()

	store := services.NewPgStore(dbPool)
	resolver := calendar.NewResolver(cfg.Timezone)

	dispatcher := services.NewNotificationDispatcher(newPushProvider(ctx, cfg.FCM))
	notificationService := services.NewNotificationService(store, dispatcher)
	defer notificationService.Stop()

	leaderboardService := services.NewLeaderboardService(store, snapshots, cfg.Engine.LeaderboardCacheTTL)
	userService := services.NewUserService(store)
	challengeService := services.NewChallengeService(store, resolver, notificationService, leaderboardService, cfg.Engine.DefaultLives, cfg.SiteURL)
	habitService := services.NewHabitService(store, resolver)
	checkinService := services.NewCheckinService(store, resolver, notificationService, leaderboardService, snapshots)
	chatService := services.NewChatService(store)

	liveHub := services.NewLiveHub()
	challengeService.SetBroadcaster(liveHub)
	checkinService.SetBroadcaster(liveHub)
	chatService.SetBroadcaster(liveHub)

	webhookHandler, err := handlers.NewWebhookHandler(userService, cfg.Clerk.WebhookSecret)
	if err != nil {
		logger.Log.Fatal("Invalid CLERK_WEBHOOK_SECRET", zap.Error(err))
	}
	if cfg.Clerk.WebhookSecret == "" {
		logger.Log.Warn("CLERK_WEBHOOK_SECRET not set, Clerk webhooks will be rejected")
	}

	if err := middleware.TrustProxies(cfg.TrustedProxies); err != nil {
		logger.Log.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}

	middleware.InitPrometheus()
	services.RegisterMetrics()

	r := newRouter(routes{
		pool:         dbPool,
		cfg:          cfg,
		users:        handlers.NewUserHandler(userService, notificationService),
		challenges:   handlers.NewChallengeHandler(userService, challengeService),
		habits:       handlers.NewHabitHandler(userService, habitService),
		checkins:     handlers.NewCheckinHandler(userService, checkinService),
		leaderboards: handlers.NewLeaderboardHandler(userService, leaderboardService),
		chat:         handlers.NewChatHandler(userService, chatService),
		live:         handlers.NewLiveHandler(userService, challengeService, liveHub),
		webhooks:     webhookHandler,
	})

	go middleware.CleanupVisitors(ctx)
	sweepDone := workers.StartSweepWorker(ctx, checkinService, cfg.Engine.SweepInterval)

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	server := http.Server{
		Addr:         cfg.Addr(),
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.Info("Starting server", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown error", zap.Error(err))
	}
	<-sweepDone

	logger.Log.Info("Server shutdown complete")
}

// newCache prefers Redis and falls back to process memory so a missing or
// unreachable Redis never blocks startup.
func newCache(ctx context.Context, redisURL string) cache.Cache {
	if redisURL == "" {
		logger.Log.Info("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryCache()
	}
	rc, err := cache.NewRedisCache(ctx, redisURL)
	if err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryCache()
	}
	logger.Log.Info("Redis cache connected")
	return rc
}

func newPushProvider(ctx context.Context, cfg config.FCMConfig) services.PushProvider {
	fcm, err := notification.NewFCMService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		logger.Log.Warn("Could not initialize FCM, push notifications are logged only", zap.Error(err))
		return services.LogPushProvider{}
	}
	logger.Log.Info("FCM push provider initialized")
	return fcm
}

type routes struct {
	pool *pgxpool.Pool
	cfg  config.Config

	users        *handlers.UserHandler
	challenges   *handlers.ChallengeHandler
	habits       *handlers.HabitHandler
	checkins     *handlers.CheckinHandler
	leaderboards *handlers.LeaderboardHandler
	chat         *handlers.ChatHandler
	live         *handlers.LiveHandler
	webhooks     *handlers.WebhookHandler
}

func newRouter(h routes) *mux.Router {
	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	standardRouter.Use(middleware.RequestLogger)
	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(h.cfg.Metrics.User, h.cfg.Metrics.Pass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(h.cfg.Metrics.PprofSecret)(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := h.pool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "streakzilla-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", h.webhooks.HandleClerkWebhook).Methods("POST")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.OptionalAuthMiddleware)
	public.HandleFunc("/watch/{id}", h.challenges.Watch).Methods("GET")

	live := api.PathPrefix("").Subrouter()
	live.Use(middleware.TokenFromQuery("token"))
	live.Use(middleware.ClerkAuthMiddleware)
	live.HandleFunc("/challenges/{id}/live", h.live.Connect).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", h.users.GetProfile).Methods("GET")
	protected.HandleFunc("/user", h.users.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/challenges", h.challenges.ListMine).Methods("GET")
	protected.HandleFunc("/user/devices", h.users.RegisterDevice).Methods("POST")

	protected.HandleFunc("/habits", h.habits.Catalog).Methods("GET")
	protected.HandleFunc("/habits", h.habits.AddCustom).Methods("POST")

	protected.HandleFunc("/challenges", h.challenges.Create).Methods("POST")
	protected.HandleFunc("/challenges/join", h.challenges.Join).Methods("POST")
	protected.HandleFunc("/challenges/{id}", h.challenges.Get).Methods("GET")
	protected.HandleFunc("/challenges/{id}", h.challenges.Update).Methods("PUT")
	protected.HandleFunc("/challenges/{id}", h.challenges.Delete).Methods("DELETE")
	protected.HandleFunc("/challenges/{id}/leave", h.challenges.Leave).Methods("POST")
	protected.HandleFunc("/challenges/{id}/invite", h.challenges.Invite).Methods("GET")

	protected.HandleFunc("/challenges/{id}/habits", h.habits.GetSelection).Methods("GET")
	protected.HandleFunc("/challenges/{id}/habits", h.habits.SaveSelection).Methods("PUT")
	protected.HandleFunc("/challenges/{id}/habits/quick-fill", h.habits.QuickFill).Methods("POST")

	protected.HandleFunc("/challenges/{id}/checkins", h.checkins.Submit).Methods("POST")
	protected.HandleFunc("/challenges/{id}/lives", h.checkins.RedeemLife).Methods("POST")
	protected.HandleFunc("/challenges/{id}/history", h.checkins.History).Methods("GET")
	protected.HandleFunc("/challenges/{id}/missed-days", h.checkins.MissedDays).Methods("GET")
	protected.HandleFunc("/challenges/{id}/feed", h.checkins.Feed).Methods("GET")
	protected.HandleFunc("/challenges/{id}/leaderboard", h.leaderboards.Get).Methods("GET")

	protected.HandleFunc("/challenges/{id}/messages", h.chat.List).Methods("GET")
	protected.HandleFunc("/challenges/{id}/messages", h.chat.Post).Methods("POST")

	return r
}
