package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/elearn-api/api/swagger"
	"github.com/noah-isme/elearn-api/internal/handler"
	"github.com/noah-isme/elearn-api/internal/repository"
	"github.com/noah-isme/elearn-api/internal/router"
	"github.com/noah-isme/elearn-api/internal/service"
	"github.com/noah-isme/elearn-api/pkg/cache"
	"github.com/noah-isme/elearn-api/pkg/config"
	"github.com/noah-isme/elearn-api/pkg/database"
	"github.com/noah-isme/elearn-api/pkg/logger"
	"github.com/noah-isme/elearn-api/pkg/session"
)

// @title eLearn API
// @version 1.0.0
// @description Course catalog, enrollment and lesson progress service
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		version, err := database.Migrate(db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logr.Info("schema up to date", zap.Uint("version", version))
	}

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	// Services
	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}
	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "elearn-api",
	})
	profileSvc := service.NewProfileService(userRepo, validate, logr)
	catalogSvc := service.NewCatalogService(service.CatalogServiceParams{
		Courses:     courseRepo,
		Lessons:     lessonRepo,
		Instructors: instructorRepo,
		Enrollments: enrollmentRepo,
		Progress:    progressRepo,
		Audit:       userRepo,
		Cache:       cacheSvc,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
	})
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceParams{
		Enrollments: enrollmentRepo,
		Progress:    progressRepo,
		Courses:     courseRepo,
		Lessons:     lessonRepo,
		Audit:       userRepo,
		Cache:       cacheSvc,
		Metrics:     metrics,
		Logger:      logr,
	})
	instructorSvc := service.NewInstructorService(instructorRepo, courseRepo, userRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(statsRepo, courseRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	adminSvc := service.NewAdminService(instructorRepo, studentRepo, userRepo, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(studentRepo, instructorRepo, logr)

	sessions := session.New(cfg.Session)

	routerCfg := router.Config{
		Env:            cfg.Env,
		APIPrefix:      cfg.APIPrefix,
		LoginPath:      cfg.LoginPath,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,

		Identities: authSvc,
		Sessions:   sessions,
		Audit:      userRepo,

		AuthHandler:       handler.NewAuthHandler(authSvc, sessions, logr),
		ProfileHandler:    handler.NewProfileHandler(profileSvc),
		HomeHandler:       handler.NewHomeHandler(dashboardSvc),
		CourseHandler:     handler.NewCourseHandler(catalogSvc),
		LessonHandler:     handler.NewLessonHandler(catalogSvc),
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentSvc),
		InstructorHandler: handler.NewInstructorHandler(instructorSvc),
		AdminHandler:      handler.NewAdminHandler(adminSvc, dashboardSvc, exportSvc),
		HealthHandler:     handler.NewHealthHandler(metrics, statsRepo),
	}
	if metrics != nil {
		routerCfg.Metrics = metrics
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.New(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logr.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
