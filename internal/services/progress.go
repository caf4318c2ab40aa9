package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/progress"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

const DefaultTotalModules = 40

type SectionResult struct {
	Module          *types.StudentModule        `json:"module"`
	Changed         bool                        `json:"changed"`
	ModuleCompleted bool                        `json:"module_completed"`
	Summary         *ProgressSummary            `json:"summary"`
	Unlocked        []*types.StudentAchievement `json:"unlocked_achievements"`
}

type ProgressSummary struct {
	StudentID            uuid.UUID  `json:"student_id"`
	Progress             float64    `json:"progress"`
	CompletedModules     int        `json:"completed_modules"`
	TotalModules         int        `json:"total_modules"`
	TimeSpentMinutes     int        `json:"time_spent_minutes"`
	CurrentStreak        int        `json:"current_streak"`
	BestStreak           int        `json:"best_streak"`
	LastActiveAt         *time.Time `json:"last_active_at,omitempty"`
	AchievementsUnlocked int        `json:"achievements_unlocked"`
}

type ProgressService interface {
	CompleteSection(ctx context.Context, studentID, moduleID uuid.UUID, section string, minutesSpent int) (*SectionResult, error)
	GetModuleProgress(ctx context.Context, studentID, moduleID uuid.UUID) (*types.StudentModule, error)
	ListProgress(ctx context.Context, studentID uuid.UUID) ([]*types.StudentModule, error)
	Summary(ctx context.Context, studentID uuid.UUID) (*ProgressSummary, error)
}

type progressService struct {
	db                     *gorm.DB
	log                    *logger.Logger
	studentRepo            repos.StudentRepo
	moduleRepo             repos.ModuleRepo
	studentModuleRepo      repos.StudentModuleRepo
	studentAchievementRepo repos.StudentAchievementRepo
	achievements           AchievementService
	notify                 StudentNotifier
	totalModules           int
	now                    func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	studentRepo repos.StudentRepo,
	moduleRepo repos.ModuleRepo,
	studentModuleRepo repos.StudentModuleRepo,
	studentAchievementRepo repos.StudentAchievementRepo,
	achievements AchievementService,
	notify StudentNotifier,
	totalModules int,
) ProgressService {
	if totalModules <= 0 {
		totalModules = DefaultTotalModules
	}
	if notify == nil {
		notify = NewStudentNotifier(nil)
	}
	return &progressService{
		db:                     db,
		log:                    log.With("service", "ProgressService"),
		studentRepo:            studentRepo,
		moduleRepo:             moduleRepo,
		studentModuleRepo:      studentModuleRepo,
		studentAchievementRepo: studentAchievementRepo,
		achievements:           achievements,
		notify:                 notify,
		totalModules:           totalModules,
		now:                    time.Now,
	}
}

// StudentProgress is the share of the catalog a student has completed, capped at 100.
func StudentProgress(completed, total int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	pct := float64(completed) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100
}

func (s *progressService) CompleteSection(ctx context.Context, studentID, moduleID uuid.UUID, section string, minutesSpent int) (*SectionResult, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	key, ok := catalog.ParseSectionKey(section)
	if !ok {
		return nil, apierr.BadRequest("invalid_section", fmt.Sprintf("unknown section %q", section))
	}
	if minutesSpent < 0 {
		return nil, apierr.BadRequest("invalid_minutes", "minutes_spent must not be negative")
	}

	result := &SectionResult{}
	var student *types.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		modules, err := s.moduleRepo.GetByIDs(ctx, tx, []uuid.UUID{moduleID})
		if err != nil {
			return fmt.Errorf("load module: %w", err)
		}
		// Drafts take no progress until they are published.
		if len(modules) == 0 || !modules[0].Published {
			return apierr.NotFound("module")
		}

		st, err := s.studentRepo.GetByIDForUpdate(ctx, tx, studentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("student")
		}
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
		student = st

		sm, _, err := s.studentModuleRepo.GetOrCreate(ctx, tx, studentID, moduleID)
		if err != nil {
			return fmt.Errorf("load student module: %w", err)
		}

		now := s.now().UTC()
		wasCompleted := sm.Completed()
		result.Changed = sm.CompleteSection(key, now)
		sm.Module = modules[0]
		result.Module = sm
		if !result.Changed {
			return nil
		}

		sm.TimeSpentMinutes += minutesSpent
		if err := s.studentModuleRepo.Save(ctx, tx, sm); err != nil {
			return fmt.Errorf("save student module: %w", err)
		}

		st.TimeSpentMinutes += minutesSpent
		if !wasCompleted && sm.Completed() {
			result.ModuleCompleted = true
			completed, err := s.studentModuleRepo.CountCompleted(ctx, tx, studentID)
			if err != nil {
				return fmt.Errorf("count completed modules: %w", err)
			}
			st.CompletedModules = int(completed)
			st.Progress = StudentProgress(st.CompletedModules, s.totalModules)
		}
		if err := s.studentRepo.Save(ctx, tx, st); err != nil {
			return fmt.Errorf("save student: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		s.notify.SectionCompleted(ctx, studentID, result.Module)
	}
	if result.ModuleCompleted {
		s.log.Info("Module completed", "student_id", studentID, "module_id", moduleID)
		s.notify.ModuleCompleted(ctx, studentID, result.Module)
	}
	if result.Changed && s.achievements != nil {
		unlocked, err := s.achievements.Evaluate(ctx, studentID, &moduleID)
		if err != nil {
			// Progress is committed; a later evaluation picks the rule up.
			s.log.Warn("Achievement evaluation failed", "student_id", studentID, "error", err)
		}
		result.Unlocked = unlocked
	}
	if result.Unlocked == nil {
		result.Unlocked = []*types.StudentAchievement{}
	}
	earned, err := s.studentAchievementRepo.EarnedAchievementIDs(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	result.Summary = s.summarize(student, len(earned))
	return result, nil
}

func (s *progressService) GetModuleProgress(ctx context.Context, studentID, moduleID uuid.UUID) (*types.StudentModule, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	modules, err := s.moduleRepo.GetByIDs(ctx, nil, []uuid.UUID{moduleID})
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	if len(modules) == 0 || !modules[0].Published {
		return nil, apierr.NotFound("module")
	}

	sm, err := s.studentModuleRepo.Get(ctx, nil, studentID, moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Nothing recorded yet; report an untouched module without creating a row.
		sm = progress.NewStudentModule(studentID, moduleID)
		sm.ID = uuid.Nil
	} else if err != nil {
		return nil, fmt.Errorf("load student module: %w", err)
	}
	sm.Module = modules[0]
	return sm, nil
}

func (s *progressService) ListProgress(ctx context.Context, studentID uuid.UUID) ([]*types.StudentModule, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	rows, err := s.studentModuleRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{studentID})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return rows, nil
}

func (s *progressService) Summary(ctx context.Context, studentID uuid.UUID) (*ProgressSummary, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	students, err := s.studentRepo.GetByIDs(ctx, nil, []uuid.UUID{studentID})
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if len(students) == 0 {
		return nil, apierr.NotFound("student")
	}
	earned, err := s.studentAchievementRepo.EarnedAchievementIDs(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	return s.summarize(students[0], len(earned)), nil
}

func (s *progressService) summarize(st *types.Student, achievements int) *ProgressSummary {
	if st == nil {
		return nil
	}
	return &ProgressSummary{
		StudentID:            st.ID,
		Progress:             st.Progress,
		CompletedModules:     st.CompletedModules,
		TotalModules:         s.totalModules,
		TimeSpentMinutes:     st.TimeSpentMinutes,
		CurrentStreak:        st.CurrentStreak,
		BestStreak:           st.BestStreak,
		LastActiveAt:         st.LastActiveAt,
		AchievementsUnlocked: achievements,
	}
}
