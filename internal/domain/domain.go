package domain

import (
	"github.com/yungbote/lingobridge-backend/internal/domain/achievement"
	"github.com/yungbote/lingobridge-backend/internal/domain/auth"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/exam"
	"github.com/yungbote/lingobridge-backend/internal/domain/progress"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
)

type Student = student.Student
type StudentRole = student.Role
type SubscriptionStatus = student.SubscriptionStatus
type StudentSession = auth.StudentSession

type Module = catalog.Module
type SectionKey = catalog.SectionKey
type Level = catalog.Level

type StudentModule = progress.StudentModule
type ModuleStatus = progress.Status

type Achievement = achievement.Achievement
type StudentAchievement = achievement.StudentAchievement
type AchievementRule = achievement.RuleKind

type Exam = exam.Exam
type ExamQuestion = exam.ExamQuestion
type ExamAttempt = exam.ExamAttempt
type ExamAttemptCounter = exam.ExamAttemptCounter
type Certificate = exam.Certificate
type CertificatePolicy = exam.CertificatePolicy

const (
	RoleStudent = student.RoleStudent
	RoleAdmin   = student.RoleAdmin

	ModuleNotStarted = progress.StatusNotStarted
	ModuleInProgress = progress.StatusInProgress
	ModuleCompleted  = progress.StatusCompleted

	CertificatePerAttempt = exam.PolicyPerAttempt
	CertificatePerExam    = exam.PolicyPerExam
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&Student{},
		&StudentSession{},
		&Module{},
		&StudentModule{},
		&Achievement{},
		&StudentAchievement{},
		&Exam{},
		&ExamQuestion{},
		&ExamAttempt{},
		&ExamAttemptCounter{},
		&Certificate{},
	}
}
