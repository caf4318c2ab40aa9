package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/lingobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lingobridge-backend/internal/http/middleware"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
	"github.com/yungbote/lingobridge-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	Student     *httpH.StudentHandler
	Module      *httpH.ModuleHandler
	Progress    *httpH.ProgressHandler
	Achievement *httpH.AchievementHandler
	Exam        *httpH.ExamHandler
	Certificate *httpH.CertificateHandler
	Report      *httpH.ReportHandler
	Realtime    *httpH.RealtimeHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth, cfg.AuthCookieName),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Auth: httpH.NewAuthHandler(s.Auth, httpH.CookieConfig{
			Name:   cfg.AuthCookieName,
			Secure: cfg.AuthCookieSecure,
			Domain: cfg.AuthCookieDomain,
		}),
		Student:     httpH.NewStudentHandler(s.Students),
		Module:      httpH.NewModuleHandler(s.Catalog),
		Progress:    httpH.NewProgressHandler(s.Progress),
		Achievement: httpH.NewAchievementHandler(s.Achievements),
		Exam:        httpH.NewExamHandler(s.Exams),
		Certificate: httpH.NewCertificateHandler(s.Certificates),
		Report:      httpH.NewReportHandler(s.Reports),
		Realtime:    httpH.NewRealtimeHandler(log, hub),
	}
}
