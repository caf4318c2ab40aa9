package repos

import (
	"github.com/yungbote/lingobridge-backend/internal/data/repos/achievement"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/auth"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/catalog"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/exam"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/progress"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/report"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/student"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type StudentRepo = student.StudentRepo
type StudentFilter = student.Filter
type StudentSessionRepo = auth.StudentSessionRepo

type ModuleRepo = catalog.ModuleRepo
type ModuleFilter = catalog.ModuleFilter
type StudentModuleRepo = progress.StudentModuleRepo

type AchievementRepo = achievement.AchievementRepo
type StudentAchievementRepo = achievement.StudentAchievementRepo

type ExamRepo = exam.ExamRepo
type ExamAttemptRepo = exam.ExamAttemptRepo
type CertificateRepo = exam.CertificateRepo

type ReportRepo = report.ReportRepo
type ModuleStat = report.ModuleStat
type ExamStat = report.ExamStat
type SubscriptionCount = report.SubscriptionCount

func NewStudentRepo(db *gorm.DB, log *logger.Logger) StudentRepo {
	return student.NewStudentRepo(db, log)
}

func NewStudentSessionRepo(db *gorm.DB, log *logger.Logger) StudentSessionRepo {
	return auth.NewStudentSessionRepo(db, log)
}

func NewModuleRepo(db *gorm.DB, log *logger.Logger) ModuleRepo {
	return catalog.NewModuleRepo(db, log)
}

func NewStudentModuleRepo(db *gorm.DB, log *logger.Logger) StudentModuleRepo {
	return progress.NewStudentModuleRepo(db, log)
}

func NewAchievementRepo(db *gorm.DB, log *logger.Logger) AchievementRepo {
	return achievement.NewAchievementRepo(db, log)
}

func NewStudentAchievementRepo(db *gorm.DB, log *logger.Logger) StudentAchievementRepo {
	return achievement.NewStudentAchievementRepo(db, log)
}

func NewExamRepo(db *gorm.DB, log *logger.Logger) ExamRepo {
	return exam.NewExamRepo(db, log)
}

func NewExamAttemptRepo(db *gorm.DB, log *logger.Logger) ExamAttemptRepo {
	return exam.NewExamAttemptRepo(db, log)
}

func NewCertificateRepo(db *gorm.DB, log *logger.Logger) CertificateRepo {
	return exam.NewCertificateRepo(db, log)
}

func NewReportRepo(db *gorm.DB, log *logger.Logger) ReportRepo {
	return report.NewReportRepo(db, log)
}
