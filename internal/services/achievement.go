package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/achievement"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type AchievementService interface {
	// Evaluate unlocks every rule the student now satisfies and returns only
	// the rows this call inserted.
	Evaluate(ctx context.Context, studentID uuid.UUID, triggerModuleID *uuid.UUID) ([]*types.StudentAchievement, error)
	ListCatalog(ctx context.Context) ([]*types.Achievement, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.StudentAchievement, error)
}

type achievementService struct {
	db                     *gorm.DB
	log                    *logger.Logger
	achievementRepo        repos.AchievementRepo
	studentAchievementRepo repos.StudentAchievementRepo
	studentRepo            repos.StudentRepo
	studentModuleRepo      repos.StudentModuleRepo
	attemptRepo            repos.ExamAttemptRepo
	notify                 StudentNotifier
	totalModules           int
	now                    func() time.Time
}

func NewAchievementService(
	db *gorm.DB,
	log *logger.Logger,
	achievementRepo repos.AchievementRepo,
	studentAchievementRepo repos.StudentAchievementRepo,
	studentRepo repos.StudentRepo,
	studentModuleRepo repos.StudentModuleRepo,
	attemptRepo repos.ExamAttemptRepo,
	notify StudentNotifier,
	totalModules int,
) AchievementService {
	if notify == nil {
		notify = NewStudentNotifier(nil)
	}
	if totalModules <= 0 {
		totalModules = DefaultTotalModules
	}
	return &achievementService{
		db:                     db,
		log:                    log.With("service", "AchievementService"),
		achievementRepo:        achievementRepo,
		studentAchievementRepo: studentAchievementRepo,
		studentRepo:            studentRepo,
		studentModuleRepo:      studentModuleRepo,
		attemptRepo:            attemptRepo,
		notify:                 notify,
		totalModules:           totalModules,
		now:                    time.Now,
	}
}

func (s *achievementService) Evaluate(ctx context.Context, studentID uuid.UUID, triggerModuleID *uuid.UUID) ([]*types.StudentAchievement, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	rules, err := s.achievementRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load achievement rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	var inserted []*types.StudentAchievement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		earned, err := s.studentAchievementRepo.EarnedAchievementIDs(ctx, tx, studentID)
		if err != nil {
			return fmt.Errorf("load earned achievements: %w", err)
		}
		pending := make([]*types.Achievement, 0, len(rules))
		for _, r := range rules {
			if !earned[r.ID] {
				pending = append(pending, r)
			}
		}
		if len(pending) == 0 {
			return nil
		}

		facts, err := s.loadFacts(ctx, tx, studentID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		candidates := make([]*types.StudentAchievement, 0, len(pending))
		byID := make(map[uuid.UUID]*types.Achievement, len(pending))
		for _, r := range pending {
			if !r.Satisfied(facts) {
				continue
			}
			byID[r.ID] = r
			candidates = append(candidates, &types.StudentAchievement{
				ID:              uuid.New(),
				StudentID:       studentID,
				AchievementID:   r.ID,
				TriggerModuleID: triggerModuleID,
				UnlockedAt:      now,
			})
		}
		if len(candidates) == 0 {
			return nil
		}

		rows, err := s.studentAchievementRepo.InsertNew(ctx, tx, candidates)
		if err != nil {
			return fmt.Errorf("insert achievements: %w", err)
		}
		for _, row := range rows {
			row.Achievement = byID[row.AchievementID]
		}
		inserted = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, row := range inserted {
		s.log.Info("Achievement unlocked", "student_id", studentID, "code", row.Achievement.Code)
		s.notify.AchievementUnlocked(ctx, studentID, row)
	}
	return inserted, nil
}

func (s *achievementService) loadFacts(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (achievement.Facts, error) {
	var facts achievement.Facts

	students, err := s.studentRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
	if err != nil {
		return facts, fmt.Errorf("load student: %w", err)
	}
	if len(students) == 0 {
		return facts, apierr.NotFound("student")
	}

	numbers, err := s.studentModuleRepo.CompletedModuleNumbers(ctx, tx, studentID)
	if err != nil {
		return facts, fmt.Errorf("load completed modules: %w", err)
	}
	passed, err := s.attemptRepo.CountPassedExams(ctx, tx, studentID)
	if err != nil {
		return facts, fmt.Errorf("count passed exams: %w", err)
	}

	facts.CompletedModuleNumbers = make(map[int]bool, len(numbers))
	for _, n := range numbers {
		facts.CompletedModuleNumbers[n] = true
	}
	facts.CompletedModules = len(numbers)
	facts.CurrentStreak = students[0].CurrentStreak
	facts.ExamsPassed = int(passed)
	facts.TotalModules = s.totalModules
	return facts, nil
}

func (s *achievementService) ListCatalog(ctx context.Context) ([]*types.Achievement, error) {
	rules, err := s.achievementRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return rules, nil
}

func (s *achievementService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.StudentAchievement, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	rows, err := s.studentAchievementRepo.ListByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student achievements: %w", err)
	}
	return rows, nil
}
