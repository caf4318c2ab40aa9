package exam

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type ExamAttemptRepo interface {
	// NextAttemptNumber atomically bumps the per (student, exam) counter.
	// Call it inside the same transaction that inserts the attempt.
	NextAttemptNumber(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) (int, error)
	Create(ctx context.Context, tx *gorm.DB, attempts []*types.ExamAttempt) ([]*types.ExamAttempt, error)
	ListByStudentExam(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) ([]*types.ExamAttempt, error)
	CountPassedExams(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (int64, error)
}

type examAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamAttemptRepo(db *gorm.DB, baseLog *logger.Logger) ExamAttemptRepo {
	repoLog := baseLog.With("repo", "ExamAttemptRepo")
	return &examAttemptRepo{db: db, log: repoLog}
}

func (r *examAttemptRepo) NextAttemptNumber(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC()
	counter := &types.ExamAttemptCounter{
		StudentID:  studentID,
		ExamID:     examID,
		LastNumber: 1,
		UpdatedAt:  now,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "exam_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_number": gorm.Expr("exam_attempt_counter.last_number + 1"),
				"updated_at":  now,
			}),
		}).
		Create(counter).Error; err != nil {
		return 0, err
	}

	var row types.ExamAttemptCounter
	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		First(&row).Error; err != nil {
		return 0, err
	}
	return row.LastNumber, nil
}

func (r *examAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempts []*types.ExamAttempt) ([]*types.ExamAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(attempts) == 0 {
		return []*types.ExamAttempt{}, nil
	}
	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *examAttemptRepo) ListByStudentExam(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) ([]*types.ExamAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ExamAttempt
	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		Order("attempt_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examAttemptRepo) CountPassedExams(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.ExamAttempt{}).
		Where("student_id = ? AND passed = ?", studentID, true).
		Distinct("exam_id").
		Count(&n).Error
	return n, err
}
