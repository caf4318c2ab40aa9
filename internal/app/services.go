package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/clients/redis"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type Services struct {
	Notifier     services.StudentNotifier
	Achievements services.AchievementService
	Auth         services.AuthService
	Students     services.StudentService
	Catalog      services.CatalogService
	Progress     services.ProgressService
	Exams        services.ExamService
	Certificates services.CertificateService
	Reports      services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, emit services.SSEEmitter, cache redis.Cache) (Services, error) {
	log.Info("Wiring services...")

	notify := services.NewStudentNotifier(emit)
	achievements := services.NewAchievementService(db, log, r.Achievement, r.StudentAchievement, r.Student, r.StudentModule, r.ExamAttempt, notify, cfg.TotalModules)

	renderer, err := services.NewCertificateRenderer(cfg.CertificateFont)
	if err != nil {
		return Services{}, fmt.Errorf("init certificate renderer: %w", err)
	}

	return Services{
		Notifier:     notify,
		Achievements: achievements,
		Auth:         services.NewAuthService(db, log, r.Student, r.StudentSession, achievements, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Students:     services.NewStudentService(db, log, r.Student, r.Module, r.StudentModule),
		Catalog:      services.NewCatalogService(db, log, r.Module),
		Progress:     services.NewProgressService(db, log, r.Student, r.Module, r.StudentModule, r.StudentAchievement, achievements, notify, cfg.TotalModules),
		Exams:        services.NewExamService(db, log, r.Exam, r.ExamAttempt, r.Certificate, r.Student, r.Module, achievements, notify, cfg.CertificatePolicy),
		Certificates: services.NewCertificateService(db, log, r.Certificate, renderer),
		Reports:      services.NewReportService(log, r.Report, cache, cfg.ReportCacheTTL, cfg.ReportActiveDays),
	}, nil
}
