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

	"weektodo/backend/internal/ai"
	"weektodo/backend/internal/cache"
	"weektodo/backend/internal/config"
	"weektodo/backend/internal/database"
	"weektodo/backend/internal/handlers"
	"weektodo/backend/internal/ids"
	"weektodo/backend/internal/monitoring"
	"weektodo/backend/internal/repositories"
	"weektodo/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type application struct {
	router *gin.Engine
	pool   *database.DatabasePool
	cache  *cache.MultiLevelCache
}

func (a *application) Close() {
	if err := a.cache.Close(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}
	if err := a.pool.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func newApplication(cfg *config.Config) (*application, error) {
	pool, err := database.NewDatabasePool(database.PoolConfigFrom(cfg))
	if err != nil {
		return nil, err
	}

	store := repositories.NewStore(pool.DB)
	if err := store.Migrate(); err != nil {
		pool.Close()
		return nil, err
	}
	log.Printf("Schema ready")

	health := monitoring.NewHealthChecker(5 * time.Second)
	health.Register("database", pool.HealthCheck)

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache = cache.NewRedisCache(cache.CacheConfigFrom(cfg))
		if err := redisCache.Health(context.Background()); err != nil {
			log.Printf("Redis at %s not reachable yet: %v", cfg.GetRedisAddr(), err)
		}
		log.Printf("Cache mode: memory + redis (%s)", cfg.GetRedisAddr())
	} else {
		log.Printf("Cache mode: memory only")
	}
	multiCache := cache.NewMultiLevelCache(redisCache)
	health.RegisterOptional("cache", multiCache.Health)

	generator := ids.NewGenerator()
	lastID, err := store.MaxID(context.Background())
	if err != nil {
		pool.Close()
		return nil, err
	}
	generator.Observe(lastID)
	collections := services.NewCollectionCache(multiCache)
	taskService := services.NewCachedTaskService(services.NewTaskService(store, generator), collections)
	listService := services.NewCachedListService(services.NewListService(store, generator), collections)
	chatService := services.NewChatService(ai.NewClient(cfg.AI, nil), cfg.AI.APIKey)

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:  cfg,
		Tasks:   taskService,
		Lists:   listService,
		Chat:    chatService,
		Metrics: monitoring.NewMetrics(),
		Health:  health,
		Components: map[string]monitoring.StatsFunc{
			"cache":    multiCache.Stats,
			"database": pool.Stats,
		},
	})

	return &application{router: router, pool: pool, cache: multiCache}, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if cfg.AI.APIKey() == "" {
		log.Printf("%s is not set; /api/ai/chat will report a configuration error", cfg.AI.APIKeyEnv)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.cache.RunJanitor(ctx, time.Minute)

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server listening on %s (environment=%s)", srv.Addr, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Printf("Server exited")
}
