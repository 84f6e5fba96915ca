package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fintrack-app/api/audit"
	"github.com/fintrack-app/api/auth"
	"github.com/fintrack-app/api/cache"
	"github.com/fintrack-app/api/config"
	"github.com/fintrack-app/api/controller"
	"github.com/fintrack-app/api/dao"
	"github.com/fintrack-app/api/db"
	"github.com/fintrack-app/api/governor"
	logger "github.com/fintrack-app/api/logging"
	"github.com/fintrack-app/api/ratelimit"
	"github.com/fintrack-app/api/router"
	"github.com/fintrack-app/api/service"
	"github.com/fintrack-app/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger("logging")
	defer logger.Sync()

	// Initialize Postgres
	if err := db.InitPostgres(); err != nil {
		logger.Fatal("Failed to initialize Postgres", zap.Error(err))
	}
	defer db.ClosePostgres()

	// Redis is only required when a shared backend is configured
	needsRedis := config.GetString("cache.backend") == "redis" ||
		config.GetString("ratelimit.backend") == "redis"
	if needsRedis {
		if err := db.InitRedis(); err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		defer db.CloseRedis()
	}

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Governance components: cache gateway, rate limiter, token service
	var cacheBackend cache.Backend
	if config.GetString("cache.backend") == "redis" {
		cacheBackend = cache.NewRedisBackend(db.RedisClient)
	} else {
		memory := cache.NewMemoryBackend()
		defer memory.Stop()
		cacheBackend = memory
	}
	cacheGateway := cache.NewGateway(cacheBackend)

	var limiterStore ratelimit.Store
	if config.GetString("ratelimit.backend") == "redis" {
		limiterStore = ratelimit.NewRedisStore(db.RedisClient)
	} else {
		limiterStore = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.NewLimiter(limiterStore)

	tokenService := auth.NewTokenService()

	// Audit trail subscribes to governance events
	var auditRepo audit.Repository
	if esURL := config.GetString("elasticsearch.url"); esURL != "" {
		repo, err := audit.NewElasticsearchRepository(esURL)
		if err != nil {
			logger.Warn("Audit repository unavailable, falling back to memory", zap.Error(err))
			auditRepo = audit.NewMemoryRepository()
		} else {
			auditRepo = repo
		}
	} else {
		auditRepo = audit.NewMemoryRepository()
	}
	audit.SubscribeToEvents(eventBus, audit.NewService(auditRepo))

	// Initialize DAOs
	identityDAO := dao.NewIdentityDAO(db.Postgres)
	resourceDAO := dao.NewResourceDAO(db.Postgres)

	// Request governor
	gov := governor.New(
		tokenService,
		identityDAO,
		identityDAO,
		identityDAO,
		cacheGateway,
		limiter,
		eventBus,
	)

	// Initialize services
	resourceService := service.NewResourceService(resourceDAO)
	userService := service.NewUserService(identityDAO)
	reportService := service.NewReportService(db.Postgres)

	// Initialize controllers
	authController := controller.NewAuthController(identityDAO, auth.BcryptVerifier{}, tokenService)
	controllers := controller.NewControllers(resourceService, userService, reportService, authController)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(controllers, gov, limiter)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
