package handlers

import (
	"net/http"

	"weektodo/backend/internal/config"
	"weektodo/backend/internal/middleware"
	"weektodo/backend/internal/monitoring"
	"weektodo/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// RouterDeps are the collaborators the HTTP surface needs. Metrics, Health
// and Components may be nil in tests.
type RouterDeps struct {
	Config     *config.Config
	Tasks      services.TaskService
	Lists      services.ListService
	Chat       services.ChatService
	Metrics    *monitoring.Metrics
	Health     *monitoring.HealthChecker
	Components map[string]monitoring.StatsFunc
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	health := deps.Health
	if health == nil {
		health = monitoring.NewHealthChecker(0)
	}

	router.Use(gin.Logger())
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(metrics.Middleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Backend is running!"})
	})
	router.GET("/health", monitoring.HealthHandler(health, metrics))
	router.GET("/ready", monitoring.ReadinessHandler(health))
	router.GET("/live", monitoring.LivenessHandler(metrics))
	router.GET("/metrics", monitoring.MetricsHandler(metrics, deps.Components))

	taskHandler := NewTaskHandler(deps.Tasks)
	listHandler := NewListHandler(deps.Lists)
	chatHandler := NewChatHandler(deps.Chat)

	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}
	{
		api.GET("/tasks", taskHandler.GetTasks)
		api.POST("/tasks", taskHandler.CreateTask)
		api.PUT("/tasks/:id", taskHandler.UpdateTask)
		api.DELETE("/tasks/:id", taskHandler.DeleteTask)

		api.GET("/lists", listHandler.GetLists)
		api.POST("/lists", listHandler.CreateList)
		api.DELETE("/lists/:id", listHandler.DeleteList)
		api.POST("/lists/:id/tasks", taskHandler.CreateListTask)
		api.POST("/lists/:id/tasks/:taskId/move", taskHandler.MoveTask)

		api.POST("/ai/chat", chatHandler.Chat)
	}

	return router
}
