package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales_arena/internal/cache"
	"sales_arena/internal/config"
	"sales_arena/internal/db"
	httpServer "sales_arena/internal/http"
	"sales_arena/internal/http/handlers"
	"sales_arena/internal/http/middleware"
	"sales_arena/internal/logger"
	"sales_arena/internal/realtime"
	"sales_arena/internal/scheduler"
	"sales_arena/internal/service"
	"sales_arena/internal/ws"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	defer logger.Sync()

	service.InitJWT(cfg.JWTSecret, cfg.JWTIssuer)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := ws.NewHub()

	var (
		rdb       *redis.Client
		appCache  cache.Cache
		denylist  service.Denylist
		publisher realtime.Publisher
		purgeable = make(map[string]scheduler.Purger)
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		appCache = cache.NewRedis(rdb)
		denylist = service.NewRedisDenylist(rdb)
		broker := realtime.NewRedisBroker(rdb, hub)
		publisher = broker
		go func() {
			if err := broker.Run(ctx); err != nil {
				logger.Error("realtime subscriber stopped", "error", err)
			}
		}()
		logger.Info("redis enabled", "addr", cfg.RedisAddr)
	} else {
		mem := cache.NewMemory()
		memDeny := service.NewMemoryDenylist()
		appCache, denylist = mem, memDeny
		purgeable["cache"] = mem
		purgeable["denylist"] = memDeny
		publisher = realtime.NewLocalBroker(hub)
		logger.Warn("REDIS_ADDR not set, running single-instance with in-memory state")
	}
	middleware.InitRedisRateLimiter(rdb)

	notify := service.NewNotificationService(dbPool, publisher)
	audit := service.NewAuditService(dbPool)
	sessions := service.NewSessionService(dbPool, denylist, audit)
	profiles := service.NewProfileService(dbPool, appCache, cfg.RankingCacheTTL, notify)

	h := handlers.NewHandler(handlers.Services{
		Sessions:      sessions,
		Profiles:      profiles,
		Ledger:        service.NewLedgerService(dbPool, notify, audit, cfg.StageRemovalMode),
		Teams:         service.NewTeamService(dbPool, notify, audit),
		Treasury:      service.NewTreasuryService(dbPool, notify),
		Shop:          service.NewShopService(dbPool, notify, audit),
		Social:        service.NewSocialService(dbPool, notify),
		Forum:         service.NewForumService(dbPool),
		Chat:          service.NewChatService(dbPool, notify, cfg.ChatHistoryLimit),
		Notifications: notify,
		Audit:         audit,
	})
	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatal("register validators", "error", err)
	}

	var redisPing handlers.Pinger
	if rdb != nil {
		redisPing = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	limiter := middleware.NewMutationLimiter(cfg.MutationRate, cfg.MutationBurst)
	purgeable["mutation_limiter"] = limiter

	jobs, err := scheduler.NewManager()
	if err != nil {
		logger.Fatal("create scheduler", "error", err)
	}
	for _, job := range []scheduler.Job{
		scheduler.NewRankingJob(profiles, cfg.RankingRefreshInterval),
		scheduler.NewCleanupJob(time.Minute, purgeable),
	} {
		if err := jobs.Register(job); err != nil {
			logger.Fatal("register job", "job", job.Name(), "error", err)
		}
	}
	jobs.Start()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:   cfg,
		Handler:  h,
		Health:   handlers.NewHealthHandler(dbPool, redisPing, version),
		Hub:      hub,
		Limiter:  limiter,
		Sessions: sessions,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	stop()
	hub.Close()
	jobs.Stop()

	logger.Info("server exited")
}
