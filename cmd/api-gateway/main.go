package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Timetable.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, timetable cache disabled", "error", err)
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()

	outlineRepo := repository.NewOutlineRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	conflictSvc := service.NewConflictService(timetableRepo, metricsSvc, logr)
	outlineSvc := service.NewOutlineService(outlineRepo, cacheRepo, nil, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, classRepo, outlineRepo, conflictSvc, cacheRepo, cfg.Timetable.CacheTTL, metricsSvc, nil, logr)
	availabilitySvc := service.NewAvailabilityService(teacherRepo, subjectRepo, timetableRepo, cfg.Timetable.DefaultMaxPeriodsDay, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	classSvc := service.NewClassService(classRepo, logr)

	outlineHandler := handler.NewOutlineHandler(outlineSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, cfg.Timetable.DefaultAcademicYear, cfg.Timetable.DefaultSemester)
	conflictHandler := handler.NewConflictHandler(conflictSvc, availabilitySvc, cfg.Timetable.DefaultAcademicYear, cfg.Timetable.DefaultSemester)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	classHandler := handler.NewClassHandler(classSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/outlines", outlineHandler.List)
		api.POST("/outlines", outlineHandler.Create)
		api.GET("/outlines/:id", outlineHandler.Get)
		api.PUT("/outlines/:id", outlineHandler.Update)
		api.DELETE("/outlines/:id", outlineHandler.Delete)

		api.GET("/classes", classHandler.List)
		api.GET("/classes/:id", classHandler.Get)
		api.GET("/classes/:id/timetable", timetableHandler.Get)
		api.POST("/classes/:id/timetable", timetableHandler.Save)
		api.DELETE("/classes/:id/timetable", timetableHandler.Clear)
		api.POST("/classes/:id/timetable/periods", timetableHandler.AssignPeriod)
		api.DELETE("/classes/:id/timetable/periods", timetableHandler.RemovePeriod)

		api.GET("/timetable/conflicts/room", conflictHandler.CheckRoom)
		api.GET("/timetable/conflicts/teacher", conflictHandler.CheckTeacher)
		api.GET("/timetable/available-teachers", conflictHandler.AvailableTeachers)

		api.GET("/subjects", subjectHandler.List)
		api.GET("/subjects/:id", subjectHandler.Get)

		api.GET("/teachers", teacherHandler.List)
		api.POST("/teachers", teacherHandler.Create)
		api.GET("/teachers/:id", teacherHandler.Get)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
