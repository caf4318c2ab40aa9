package exam

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type ExamRepo interface {
	// Create inserts exams together with their questions.
	Create(ctx context.Context, tx *gorm.DB, exams []*types.Exam) ([]*types.Exam, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, withQuestions bool) ([]*types.Exam, error)
	List(ctx context.Context, tx *gorm.DB, publishedOnly bool) ([]*types.Exam, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type examRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamRepo(db *gorm.DB, baseLog *logger.Logger) ExamRepo {
	repoLog := baseLog.With("repo", "ExamRepo")
	return &examRepo{db: db, log: repoLog}
}

func (r *examRepo) Create(ctx context.Context, tx *gorm.DB, exams []*types.Exam) ([]*types.Exam, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(exams) == 0 {
		return []*types.Exam{}, nil
	}
	if err := transaction.WithContext(ctx).Omit("Module").Create(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, withQuestions bool) ([]*types.Exam, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Exam
	if len(ids) == 0 {
		return results, nil
	}
	q := transaction.WithContext(ctx).Where("id IN ?", ids)
	if withQuestions {
		q = q.Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examRepo) List(ctx context.Context, tx *gorm.DB, publishedOnly bool) ([]*types.Exam, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Exam{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	var results []*types.Exam
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Exam{}).Error
}
