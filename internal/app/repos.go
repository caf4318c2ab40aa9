package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type Repos struct {
	Student            repos.StudentRepo
	StudentSession     repos.StudentSessionRepo
	Module             repos.ModuleRepo
	StudentModule      repos.StudentModuleRepo
	Achievement        repos.AchievementRepo
	StudentAchievement repos.StudentAchievementRepo
	Exam               repos.ExamRepo
	ExamAttempt        repos.ExamAttemptRepo
	Certificate        repos.CertificateRepo
	Report             repos.ReportRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Student:            repos.NewStudentRepo(db, log),
		StudentSession:     repos.NewStudentSessionRepo(db, log),
		Module:             repos.NewModuleRepo(db, log),
		StudentModule:      repos.NewStudentModuleRepo(db, log),
		Achievement:        repos.NewAchievementRepo(db, log),
		StudentAchievement: repos.NewStudentAchievementRepo(db, log),
		Exam:               repos.NewExamRepo(db, log),
		ExamAttempt:        repos.NewExamAttemptRepo(db, log),
		Certificate:        repos.NewCertificateRepo(db, log),
		Report:             repos.NewReportRepo(db, log),
	}
}
