package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/deptsched/timetable-api/internal/domain"
	"github.com/deptsched/timetable-api/internal/handler"
	"github.com/deptsched/timetable-api/internal/middleware"
	"github.com/deptsched/timetable-api/internal/repository"
	"github.com/deptsched/timetable-api/internal/service"
	"github.com/deptsched/timetable-api/internal/solver"
	"github.com/deptsched/timetable-api/pkg/cache"
	"github.com/deptsched/timetable-api/pkg/config"
	"github.com/deptsched/timetable-api/pkg/database"
	"github.com/deptsched/timetable-api/pkg/logger"
	"github.com/deptsched/timetable-api/pkg/middleware/cors"
	"github.com/deptsched/timetable-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	runRepo := repository.NewRunRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, log)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Solver.CacheTTL, log, redisClient != nil)
	authSvc := service.NewAuthService(operatorRepo, validate, log, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: "timetable-api",
	})

	solverParams := solver.Params{Workers: cfg.Solver.Workers, Timeout: cfg.Solver.LabTimeout, Seed: cfg.Solver.RandomSeed}
	if cfg.Solver.LectTimeout > solverParams.Timeout {
		solverParams.Timeout = cfg.Solver.LectTimeout
	}
	plannerSvc := service.NewPlannerService(runRepo, cacheSvc, metricsSvc, validate, log, solverParams)
	exportSvc := service.NewExportService(runRepo, domain.NewTimeModel())

	runHandler := handler.NewRunHandler(plannerSvc, exportSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(middleware.Metrics(metricsSvc))
	router.Use(cors.New(cfg.CORS.AllowedOrigins))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := router.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		runs := api.Group("/runs")
		{
			runs.GET("", runHandler.List)
			runs.GET("/:id", runHandler.Get)
			runs.GET("/:id/export.xlsx", runHandler.ExportXLSX)
			runs.GET("/:id/export.csv", runHandler.ExportCSV)

			protected := runs.Group("")
			protected.Use(middleware.JWT(authSvc))
			protected.POST("", runHandler.Create)
			protected.DELETE("/:id", runHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("planning api listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
