package exam

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type CertificateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, certs []*types.Certificate) ([]*types.Certificate, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Certificate, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Certificate, error)
	// FirstForStudentExam returns nil, nil when the student holds no certificate for the exam.
	FirstForStudentExam(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) (*types.Certificate, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Certificate, error)
	CountByStudentExam(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) (int64, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	repoLog := baseLog.With("repo", "CertificateRepo")
	return &certificateRepo{db: db, log: repoLog}
}

func (r *certificateRepo) Create(ctx context.Context, tx *gorm.DB, certs []*types.Certificate) ([]*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(certs) == 0 {
		return []*types.Certificate{}, nil
	}
	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *certificateRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Certificate
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Exam").
		Preload("Student").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *certificateRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cert types.Certificate
	if err := transaction.WithContext(ctx).
		Preload("Exam").
		Preload("Student").
		Where("code = ?", code).
		First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepo) FirstForStudentExam(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cert types.Certificate
	err := transaction.WithContext(ctx).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		Order("issued_at ASC").
		First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Certificate
	if err := transaction.WithContext(ctx).
		Preload("Exam").
		Where("student_id = ?", studentID).
		Order("issued_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *certificateRepo) CountByStudentExam(ctx context.Context, tx *gorm.DB, studentID, examID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.Certificate{}).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		Count(&n).Error
	return n, err
}
