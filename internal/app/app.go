package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"survey_insight_backend/internal/config"
	"survey_insight_backend/internal/controller"
	"survey_insight_backend/internal/repository"
	"survey_insight_backend/internal/service"
	"survey_insight_backend/pkg/database"
	"survey_insight_backend/pkg/logger"
	"survey_insight_backend/pkg/monitoring"
	"survey_insight_backend/pkg/security"
	"survey_insight_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user     *repository.UserRepository
	survey   *repository.SurveyRepository
	response *repository.ResponseRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	survey    *service.SurveyService
	response  *service.ResponseService
	analytics *service.AnalyticsService
	export    *service.ExportService
}

type controllers struct {
	auth      *controller.AuthController
	survey    *controller.SurveyController
	response  *controller.ResponseController
	analytics *controller.AnalyticsController
	export    *controller.ExportController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		survey:   repository.NewSurveyRepository(db),
		response: repository.NewResponseRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.survey = service.NewSurveyService(repos.survey, repos.response)
	s.response = service.NewResponseService(repos.survey, repos.response, cfg.Analytics)
	s.analytics = service.NewAnalyticsService(
		repos.survey,
		repos.response,
		rdb,
		cfg.Analytics.TextSampleLimit,
		time.Duration(cfg.Analytics.CacheTTLSeconds)*time.Second,
	)
	s.export = service.NewExportService(repos.survey, repos.response, s.storage, cfg.Export.ArchivePrefix)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		survey:    controller.NewSurveyController(s.survey),
		response:  controller.NewResponseController(s.response),
		analytics: controller.NewAnalyticsController(s.analytics),
		export:    controller.NewExportController(s.export),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, database.ShouldMigrate(cfg.Server.Mode, cfg.ForceMigrate))
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 分析缓存是可选依赖，Redis 不可用时退化为每次全量聚合
		logger.Log.Warn("Redis unavailable, analytics cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("survey-insight", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
