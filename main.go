package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-starter/backend/internal/cache"
	"todo-starter/backend/internal/config"
	"todo-starter/backend/internal/database"
	"todo-starter/backend/internal/handlers"
	"todo-starter/backend/internal/middleware"
	"todo-starter/backend/internal/models"
	"todo-starter/backend/internal/monitoring"
	"todo-starter/backend/internal/services"
	"todo-starter/backend/internal/storage"
	"todo-starter/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisCache.Close()

	store, err := storage.NewMinIOStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureBuckets(ctx, cfg.Storage.Region); err != nil {
		cancel()
		log.Fatalf("Failed to ensure storage buckets: %v", err)
	}
	cancel()

	jobs := worker.NewWorker(worker.WorkerConfig{
		RedisClient: redisCache.Client(),
		Queues:      cfg.Worker.Queues,
	})
	worker.RegisterEmailHandlers(jobs, worker.LogMailer{})
	jobs.Start(cfg.Worker.Concurrency)
	defer jobs.Stop()

	authz := services.NewAuthorizationService()
	mediaService := services.NewMediaService(store, authz)
	todoService := services.NewCachedTodoService(services.NewTodoService(authz), redisCache)
	mediaService.SetPageInvalidator(todoService)
	statsService := services.NewStatsService()
	authService := services.NewAuthService(cfg.Auth)
	registerService := services.NewRegisterService(cfg.Auth)
	otpService := services.NewOTPService(redisCache.Client(), cfg.Auth)
	contactService := services.NewContactService(jobs)
	setupStore := cache.NewRedisKVStore(redisCache.Client(), "app", 0)

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	monitoring.RegisterHealthCheck("redis", redisCache.Ping)
	monitoring.RegisterHealthCheck("storage", store.Ping)

	router := setupRouter(cfg, db, jobs, routerServices{
		todos:    todoService,
		media:    mediaService,
		stats:    statsService,
		auth:     authService,
		register: registerService,
		otp:      otpService,
		contact:  contactService,
		setup:    setupStore,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.GetServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

type routerServices struct {
	todos    services.TodoService
	media    services.MediaService
	stats    services.StatsService
	auth     services.AuthService
	register services.RegisterService
	otp      services.OTPService
	contact  services.ContactService
	setup    cache.KVStore
}

func setupRouter(cfg *config.Config, db *gorm.DB, jobs *worker.Worker, svcs routerServices) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(monitoring.MetricsMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		router.Use(limiter.Middleware())
	}

	router.GET("/health", monitoring.HealthHandler)
	router.GET("/metrics", monitoring.MetricsHandler)

	authHandler := handlers.NewAuthHandler(db, svcs.auth, svcs.register, svcs.otp, jobs)
	todoHandler := handlers.NewTodoHandler(db, svcs.todos)
	attachmentHandler := handlers.NewAttachmentHandler(db, svcs.media)
	profileHandler := handlers.NewProfileHandler(db, svcs.media)
	adminHandler := handlers.NewAdminHandler(db, svcs.stats)
	contactHandler := handlers.NewContactHandler(db, svcs.contact)
	setupHandler := handlers.NewSetupHandler(svcs.setup)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/token", authHandler.Token)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/otp/request", authHandler.RequestOTP)
		api.POST("/auth/otp/verify", authHandler.VerifyOTP)
		api.POST("/contact", contactHandler.Submit)

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
		{
			authed.GET("/me", profileHandler.Me)
			authed.PUT("/me", profileHandler.UpdateMe)
			authed.POST("/me/avatar", attachmentHandler.UploadAvatar)

			// Create and update share one endpoint: a body with an id
			// updates, without an id creates.
			authed.GET("/todos", todoHandler.ListTodos)
			authed.POST("/todos", todoHandler.UpsertTodo)
			authed.GET("/todos/:id", todoHandler.GetTodo)
			authed.DELETE("/todos/:id", todoHandler.DeleteTodo)
			authed.POST("/todos/:id/attachments", attachmentHandler.UploadTodoAttachments)
			authed.DELETE("/attachments/:id", attachmentHandler.DeleteAttachment)

			authed.GET("/setup", setupHandler.GetChecklist)
			authed.POST("/setup/steps", setupHandler.CompleteStep)
			authed.POST("/setup/dismiss", setupHandler.Dismiss)

			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/stats", adminHandler.PlatformStats)
				admin.GET("/users/:id/stats", adminHandler.UserStats)
			}
		}
	}

	return router
}
