package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type StudentSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.StudentSession) ([]*types.StudentSession, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.StudentSession, error)
	RevokeByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, at time.Time) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

type studentSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentSessionRepo(db *gorm.DB, baseLog *logger.Logger) StudentSessionRepo {
	repoLog := baseLog.With("repo", "StudentSessionRepo")
	return &studentSessionRepo{db: db, log: repoLog}
}

func (r *studentSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.StudentSession) ([]*types.StudentSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessions) == 0 {
		return []*types.StudentSession{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *studentSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.StudentSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudentSession
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentSessionRepo) RevokeByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.StudentSession{}).
		Where("id IN ? AND revoked_at IS NULL", ids).
		Update("revoked_at", at).Error
}

func (r *studentSessionRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&types.StudentSession{})
	return res.RowsAffected, res.Error
}
