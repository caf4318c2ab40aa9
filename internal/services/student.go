package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

const (
	defaultStudentPageSize = 50
	maxStudentPageSize     = 200
)

type StudentPage struct {
	Students []*types.Student `json:"students"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// UpdateStudentInput carries the admin-editable fields; nil leaves a field as is.
type UpdateStudentInput struct {
	Level                 *string    `json:"level" binding:"omitempty,cefr"`
	SubscriptionStatus    *string    `json:"subscription_status" binding:"omitempty,subscription"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	Role                  *string    `json:"role" binding:"omitempty,oneof=student admin"`
}

type SeedModulesResult struct {
	Created int64 `json:"created"`
}

type StudentService interface {
	GetMe(ctx context.Context, studentID uuid.UUID) (*types.Student, error)
	List(ctx context.Context, f repos.StudentFilter) (*StudentPage, error)
	Get(ctx context.Context, studentID uuid.UUID) (*types.Student, error)
	Update(ctx context.Context, studentID uuid.UUID, in UpdateStudentInput) (*types.Student, error)
	SeedModules(ctx context.Context, studentID uuid.UUID, moduleIDs []uuid.UUID) (*SeedModulesResult, error)
}

type studentService struct {
	db                *gorm.DB
	log               *logger.Logger
	studentRepo       repos.StudentRepo
	moduleRepo        repos.ModuleRepo
	studentModuleRepo repos.StudentModuleRepo
}

func NewStudentService(
	db *gorm.DB,
	log *logger.Logger,
	studentRepo repos.StudentRepo,
	moduleRepo repos.ModuleRepo,
	studentModuleRepo repos.StudentModuleRepo,
) StudentService {
	return &studentService{
		db:                db,
		log:               log.With("service", "StudentService"),
		studentRepo:       studentRepo,
		moduleRepo:        moduleRepo,
		studentModuleRepo: studentModuleRepo,
	}
}

func (s *studentService) GetMe(ctx context.Context, studentID uuid.UUID) (*types.Student, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	return s.Get(ctx, studentID)
}

func (s *studentService) List(ctx context.Context, f repos.StudentFilter) (*StudentPage, error) {
	if f.Level != "" {
		l, ok := catalog.ParseLevel(f.Level)
		if !ok {
			return nil, apierr.BadRequest("invalid_level", fmt.Sprintf("unknown level %q", f.Level))
		}
		f.Level = string(l)
	}
	if f.SubscriptionStatus != "" {
		st, ok := student.ParseSubscriptionStatus(f.SubscriptionStatus)
		if !ok {
			return nil, apierr.BadRequest("invalid_subscription", fmt.Sprintf("unknown subscription status %q", f.SubscriptionStatus))
		}
		f.SubscriptionStatus = string(st)
	}
	if f.Limit <= 0 {
		f.Limit = defaultStudentPageSize
	}
	if f.Limit > maxStudentPageSize {
		f.Limit = maxStudentPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)

	rows, total, err := s.studentRepo.List(ctx, nil, f)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return &StudentPage{Students: rows, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *studentService) Get(ctx context.Context, studentID uuid.UUID) (*types.Student, error) {
	rows, err := s.studentRepo.GetByIDs(ctx, nil, []uuid.UUID{studentID})
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if len(rows) == 0 {
		return nil, apierr.NotFound("student")
	}
	return rows[0], nil
}

func (s *studentService) Update(ctx context.Context, studentID uuid.UUID, in UpdateStudentInput) (*types.Student, error) {
	var out *types.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := s.studentRepo.GetByIDForUpdate(ctx, tx, studentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("student")
		}
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}

		if in.Level != nil {
			l, ok := catalog.ParseLevel(*in.Level)
			if !ok {
				return apierr.BadRequest("invalid_level", fmt.Sprintf("unknown level %q", *in.Level))
			}
			st.Level = l
		}
		if in.SubscriptionStatus != nil {
			sub, ok := student.ParseSubscriptionStatus(*in.SubscriptionStatus)
			if !ok {
				return apierr.BadRequest("invalid_subscription", fmt.Sprintf("unknown subscription status %q", *in.SubscriptionStatus))
			}
			st.SubscriptionStatus = sub
			if sub == student.SubscriptionFree {
				st.SubscriptionExpiresAt = nil
			}
		}
		if in.SubscriptionExpiresAt != nil {
			if st.SubscriptionStatus == student.SubscriptionFree {
				return apierr.BadRequest("invalid_subscription", "free subscriptions do not expire")
			}
			at := in.SubscriptionExpiresAt.UTC()
			st.SubscriptionExpiresAt = &at
		}
		if in.Role != nil {
			switch types.StudentRole(strings.ToLower(strings.TrimSpace(*in.Role))) {
			case types.RoleStudent:
				st.Role = types.RoleStudent
			case types.RoleAdmin:
				st.Role = types.RoleAdmin
			default:
				return apierr.BadRequest("invalid_role", fmt.Sprintf("unknown role %q", *in.Role))
			}
		}

		if err := s.studentRepo.Save(ctx, tx, st); err != nil {
			return fmt.Errorf("save student: %w", err)
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Student updated", "student_id", studentID)
	return out, nil
}

func (s *studentService) SeedModules(ctx context.Context, studentID uuid.UUID, moduleIDs []uuid.UUID) (*SeedModulesResult, error) {
	unique := dedupeIDs(moduleIDs)
	if len(unique) == 0 {
		return nil, apierr.BadRequest("module_ids_required", "module_ids must not be empty")
	}
	result := &SeedModulesResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		students, err := s.studentRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
		if len(students) == 0 {
			return apierr.NotFound("student")
		}

		modules, err := s.moduleRepo.GetByIDs(ctx, tx, unique)
		if err != nil {
			return fmt.Errorf("load modules: %w", err)
		}
		if len(modules) != len(unique) {
			return apierr.NotFound("module")
		}

		created, err := s.studentModuleRepo.CreateMissing(ctx, tx, studentID, unique)
		if err != nil {
			return fmt.Errorf("create student modules: %w", err)
		}
		result.Created = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Student modules seeded", "student_id", studentID, "created", result.Created)
	return result, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
