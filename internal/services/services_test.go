package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) SectionCompleted(ctx context.Context, studentID uuid.UUID, sm *types.StudentModule) {
	n.record("section_completed")
}

func (n *recordingNotifier) ModuleCompleted(ctx context.Context, studentID uuid.UUID, sm *types.StudentModule) {
	n.record("module_completed")
}

func (n *recordingNotifier) AchievementUnlocked(ctx context.Context, studentID uuid.UUID, sa *types.StudentAchievement) {
	n.record("achievement_unlocked")
}

func (n *recordingNotifier) ExamSubmitted(ctx context.Context, studentID uuid.UUID, attempt *types.ExamAttempt) {
	n.record("exam_submitted")
}

func (n *recordingNotifier) CertificateIssued(ctx context.Context, studentID uuid.UUID, cert *types.Certificate) {
	n.record("certificate_issued")
}

type testEnv struct {
	db     *gorm.DB
	notify *recordingNotifier
	clock  time.Time

	studentRepo            repos.StudentRepo
	sessionRepo            repos.StudentSessionRepo
	moduleRepo             repos.ModuleRepo
	studentModuleRepo      repos.StudentModuleRepo
	achievementRepo        repos.AchievementRepo
	studentAchievementRepo repos.StudentAchievementRepo
	examRepo               repos.ExamRepo
	attemptRepo            repos.ExamAttemptRepo
	certificateRepo        repos.CertificateRepo
	reportRepo             repos.ReportRepo

	achievements AchievementService
	progress     ProgressService
	auth         AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	env := &testEnv{
		db:                     db,
		notify:                 &recordingNotifier{},
		clock:                  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		studentRepo:            repos.NewStudentRepo(db, log),
		sessionRepo:            repos.NewStudentSessionRepo(db, log),
		moduleRepo:             repos.NewModuleRepo(db, log),
		studentModuleRepo:      repos.NewStudentModuleRepo(db, log),
		achievementRepo:        repos.NewAchievementRepo(db, log),
		studentAchievementRepo: repos.NewStudentAchievementRepo(db, log),
		examRepo:               repos.NewExamRepo(db, log),
		attemptRepo:            repos.NewExamAttemptRepo(db, log),
		certificateRepo:        repos.NewCertificateRepo(db, log),
		reportRepo:             repos.NewReportRepo(db, log),
	}
	env.achievements = NewAchievementService(db, log,
		env.achievementRepo, env.studentAchievementRepo, env.studentRepo,
		env.studentModuleRepo, env.attemptRepo, env.notify, 4)
	env.progress = NewProgressService(db, log,
		env.studentRepo, env.moduleRepo, env.studentModuleRepo,
		env.studentAchievementRepo, env.achievements, env.notify, 4)
	env.auth = NewAuthService(db, log, env.studentRepo, env.sessionRepo, env.achievements, "test-secret", time.Hour)
	env.auth.(*authService).now = env.now
	return env
}

func (e *testEnv) now() time.Time { return e.clock }

func (e *testEnv) examService(t *testing.T, policy types.CertificatePolicy) ExamService {
	t.Helper()
	return NewExamService(e.db, testutil.Logger(t),
		e.examRepo, e.attemptRepo, e.certificateRepo, e.studentRepo, e.moduleRepo,
		e.achievements, e.notify, policy)
}
