package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/handler"
	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/pkg/config"
	"github.com/noah-isme/elearn-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/elearn-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/elearn-api/pkg/middleware/requestid"
)

// IdentityResolver turns bearer tokens and session user IDs into identities.
type IdentityResolver interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
	Identify(ctx context.Context, userID string) (*models.Identity, error)
}

// SessionReader reads the user ID from the browser session.
type SessionReader interface {
	UserID(r *http.Request) string
}

// AuditWriter persists audit entries for audited routes.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RequestObserver records per-route request metrics.
type RequestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Config carries everything the router needs. Nil handlers leave their routes unregistered.
type Config struct {
	Env            string
	APIPrefix      string
	LoginPath      string
	AllowedOrigins []string
	Logger         *zap.Logger

	Identities IdentityResolver
	Sessions   SessionReader
	Audit      AuditWriter
	Metrics    RequestObserver

	AuthHandler       *handler.AuthHandler
	ProfileHandler    *handler.ProfileHandler
	HomeHandler       *handler.HomeHandler
	CourseHandler     *handler.CourseHandler
	LessonHandler     *handler.LessonHandler
	EnrollmentHandler *handler.EnrollmentHandler
	InstructorHandler *handler.InstructorHandler
	AdminHandler      *handler.AdminHandler
	HealthHandler     *handler.HealthHandler
}

// New builds the gin engine with the middleware chain and every route.
func New(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.WithResponseMeta())

	// Ops
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/ready", cfg.HealthHandler.Ready)
		r.GET("/metrics", cfg.HealthHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	policy := middleware.NewPolicy(cfg.LoginPath)
	authenticate := middleware.Authenticate(cfg.Identities, cfg.Sessions)

	api := r.Group(cfg.APIPrefix)

	public := api.Group("")
	public.Use(middleware.OptionalAuthenticate(cfg.Identities, cfg.Sessions))
	{
		if cfg.HomeHandler != nil {
			public.GET("/", cfg.HomeHandler.Home)
		}
		if cfg.CourseHandler != nil {
			public.GET("/courses", cfg.CourseHandler.List)
			public.GET("/courses/:id", cfg.CourseHandler.Detail)
		}
		if cfg.LessonHandler != nil {
			public.GET("/courses/:id/lessons", cfg.LessonHandler.List)
		}
		if cfg.InstructorHandler != nil {
			public.GET("/instructors/:id", cfg.InstructorHandler.Profile)
		}
		if cfg.AuthHandler != nil {
			public.POST("/auth/signup", cfg.AuthHandler.Signup)
			public.POST("/auth/login", cfg.AuthHandler.Login)
			public.POST("/auth/refresh", cfg.AuthHandler.Refresh)
			public.POST("/auth/logout", cfg.AuthHandler.Logout)
		}
	}

	authed := api.Group("")
	authed.Use(authenticate, policy.Require())
	{
		if cfg.ProfileHandler != nil {
			authed.GET("/auth/me", cfg.ProfileHandler.Me)
			authed.PUT("/me/profile", cfg.ProfileHandler.UpdateProfile)
		}
		if cfg.InstructorHandler != nil {
			authed.POST("/instructor/become", cfg.InstructorHandler.Become)
		}
	}

	student := api.Group("")
	student.Use(authenticate, policy.Require(models.CapabilityStudent))
	if cfg.EnrollmentHandler != nil {
		student.POST("/courses/:id/enroll", cfg.EnrollmentHandler.Enroll)
		student.GET("/me/courses", cfg.EnrollmentHandler.MyCourses)
		student.GET("/courses/:id/progress", cfg.EnrollmentHandler.Progress)
		student.POST("/lessons/:id/complete", cfg.EnrollmentHandler.CompleteLesson)
	}

	instructor := api.Group("/instructor")
	instructor.Use(authenticate, policy.Require(models.CapabilityInstructor))
	{
		if cfg.InstructorHandler != nil {
			instructor.GET("/dashboard", cfg.InstructorHandler.Dashboard)
		}
		if cfg.CourseHandler != nil {
			instructor.POST("/courses", cfg.CourseHandler.Create)
			instructor.PUT("/courses/:id", cfg.CourseHandler.Update)
			instructor.DELETE("/courses/:id", cfg.CourseHandler.Delete)
		}
		if cfg.LessonHandler != nil {
			instructor.POST("/courses/:id/lessons", cfg.LessonHandler.Create)
			instructor.PUT("/lessons/:id", cfg.LessonHandler.Update)
			instructor.DELETE("/lessons/:id", cfg.LessonHandler.Delete)
		}
	}

	admin := api.Group("/admin")
	admin.Use(authenticate, policy.Require(models.CapabilityAdmin))
	{
		if cfg.CourseHandler != nil {
			admin.POST("/courses", cfg.CourseHandler.Create)
			admin.PUT("/courses/:id", cfg.CourseHandler.Update)
			admin.DELETE("/courses/:id", cfg.CourseHandler.Delete)
		}
		if cfg.AdminHandler != nil {
			admin.GET("/dashboard", cfg.AdminHandler.Dashboard)
			admin.GET("/instructors", cfg.AdminHandler.ListInstructors)
			admin.PATCH("/instructors/:id/approval", cfg.AdminHandler.SetApproval)
			admin.GET("/students", cfg.AdminHandler.ListStudents)
			admin.PUT("/users/:id/role", cfg.AdminHandler.ChangeRole)

			admin.GET("/students/export",
				middleware.Audit(cfg.Audit, cfg.Logger, models.AuditActionExport, models.AuditResourceStudent),
				cfg.AdminHandler.ExportStudents)
			admin.GET("/instructors/export",
				middleware.Audit(cfg.Audit, cfg.Logger, models.AuditActionExport, models.AuditResourceInstructor),
				cfg.AdminHandler.ExportInstructors)
		}
	}

	return r
}
