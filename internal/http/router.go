package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lingobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lingobridge-backend/internal/http/middleware"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// Tracing installs otelgin and the trace-id middleware.
	Tracing bool

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	StudentHandler     *httpH.StudentHandler
	ModuleHandler      *httpH.ModuleHandler
	ProgressHandler    *httpH.ProgressHandler
	AchievementHandler *httpH.AchievementHandler
	ExamHandler        *httpH.ExamHandler
	CertificateHandler *httpH.CertificateHandler
	ReportHandler      *httpH.ReportHandler
	RealtimeHandler    *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
		if cfg.CertificateHandler != nil {
			api.GET("/certificates/verify/:code", cfg.CertificateHandler.Verify)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}
		if cfg.StudentHandler != nil {
			protected.GET("/me", cfg.StudentHandler.GetMe)
		}
		if cfg.ModuleHandler != nil {
			protected.GET("/modules", cfg.ModuleHandler.ListModules)
			protected.GET("/modules/:id", cfg.ModuleHandler.GetModule)
		}
		if cfg.ProgressHandler != nil {
			protected.GET("/progress", cfg.ProgressHandler.ListProgress)
			protected.GET("/progress/summary", cfg.ProgressHandler.Summary)
			protected.GET("/progress/modules/:id", cfg.ProgressHandler.GetModuleProgress)
			protected.POST("/progress/modules/:id/sections/:section", cfg.ProgressHandler.CompleteSection)
		}
		if cfg.AchievementHandler != nil {
			protected.GET("/achievements", cfg.AchievementHandler.ListCatalog)
			protected.GET("/me/achievements", cfg.AchievementHandler.ListMine)
		}
		if cfg.ExamHandler != nil {
			protected.GET("/exams", cfg.ExamHandler.ListExams)
			protected.GET("/exams/:id", cfg.ExamHandler.GetExam)
			protected.POST("/exams/:id/attempts", cfg.ExamHandler.SubmitAttempt)
			protected.GET("/exams/:id/attempts", cfg.ExamHandler.ListAttempts)
		}
		if cfg.CertificateHandler != nil {
			protected.GET("/certificates", cfg.CertificateHandler.ListMine)
			protected.GET("/certificates/:id", cfg.CertificateHandler.Get)
			protected.GET("/certificates/:id/image", cfg.CertificateHandler.Image)
		}
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	admin := protected.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	{
		if cfg.ModuleHandler != nil {
			admin.POST("/modules", cfg.ModuleHandler.CreateModule)
			admin.PATCH("/modules/:id", cfg.ModuleHandler.UpdateModule)
			admin.DELETE("/modules/:id", cfg.ModuleHandler.DeleteModule)
		}
		if cfg.StudentHandler != nil {
			admin.GET("/students", cfg.StudentHandler.List)
			admin.GET("/students/:id", cfg.StudentHandler.Get)
			admin.PATCH("/students/:id", cfg.StudentHandler.Update)
			admin.POST("/students/:id/modules", cfg.StudentHandler.SeedModules)
		}
		if cfg.ExamHandler != nil {
			admin.POST("/exams", cfg.ExamHandler.CreateExam)
			admin.DELETE("/exams/:id", cfg.ExamHandler.DeleteExam)
		}
		if cfg.ReportHandler != nil {
			admin.GET("/reports/dashboard", cfg.ReportHandler.Dashboard)
			admin.GET("/reports/modules", cfg.ReportHandler.ModuleStats)
		}
	}

	return r
}
