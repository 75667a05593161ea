package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mouaaaaadddd/quizmaster/internal/config"
	"github.com/Mouaaaaadddd/quizmaster/internal/controller"
	"github.com/Mouaaaaadddd/quizmaster/internal/service"
	"github.com/Mouaaaaadddd/quizmaster/internal/store"
	"github.com/Mouaaaaadddd/quizmaster/pkg/configwatcher"
	"github.com/Mouaaaaadddd/quizmaster/pkg/database"
	"github.com/Mouaaaaadddd/quizmaster/pkg/logger"
	"github.com/Mouaaaaadddd/quizmaster/pkg/monitoring"
	"github.com/Mouaaaaadddd/quizmaster/pkg/security"
	"github.com/Mouaaaaadddd/quizmaster/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	Store  *store.SessionStore

	services       *services
	tracerProvider *sdktrace.TracerProvider
}

type services struct {
	ai        *service.AIService
	generator *service.GeneratorService
	grader    *service.GraderService
	storage   *service.StorageService
	session   *service.SessionService
}

type controllers struct {
	session *controller.SessionController
	quiz    *controller.QuizController
	health  *controller.HealthController
}

// newSnapshotStore 按配置选择快照后端，后端连不上直接失败退出：
// 没有可用的持久层就谈不上可恢复的会话
func newSnapshotStore(cfg *config.Config) (store.SnapshotStore, error) {
	switch cfg.Persistence.Driver {
	case "redis":
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store.NewRedisSnapshotStore(rdb, cfg.Persistence.SnapshotKey), nil
	case "mysql":
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return store.NewGormSnapshotStore(db, cfg.Persistence.SnapshotKey), nil
	default:
		return store.NewFileSnapshotStore(cfg.Persistence.FilePath), nil
	}
}

func (a *App) initServices(cfg *config.Config, st *store.SessionStore) *services {
	s := &services{}
	s.ai = service.NewAIService(cfg.AI)
	s.generator = service.NewGeneratorService(s.ai)
	s.grader = service.NewGraderService(s.ai)
	s.storage = service.NewStorageService(cfg)
	s.session = service.NewSessionService(st, s.generator, s.grader, s.storage, cfg.Quiz)
	return s
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		session: controller.NewSessionController(s.session),
		quiz:    controller.NewQuizController(s.session),
		health:  controller.NewHealthController(s.session, cfg.Persistence.Driver),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	snapshot, err := newSnapshotStore(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize snapshot backend", zap.Error(err))
	}

	sessionStore := store.NewSessionStore(snapshot)
	// load 先于一切 save：防止启动竞态用空 store 覆盖持久数据
	sessionStore.Load(context.Background())

	app := &App{
		Config: cfg,
		Store:  sessionStore,
	}

	app.services = app.initServices(cfg, sessionStore)
	ctrls := app.initControllers(app.services, cfg)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quizmaster", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, ctrls)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 配置热更新：运行中切换 AI 接口或模型
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		app.services.ai.UpdateConfig(newCfg.AI)
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
