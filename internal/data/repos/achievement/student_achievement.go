package achievement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type StudentAchievementRepo interface {
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.StudentAchievement, error)
	EarnedAchievementIDs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (map[uuid.UUID]bool, error)
	// InsertNew inserts rows, silently skipping pairs that already exist, and
	// returns only the rows that were actually written.
	InsertNew(ctx context.Context, tx *gorm.DB, rows []*types.StudentAchievement) ([]*types.StudentAchievement, error)
}

type studentAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentAchievementRepo(db *gorm.DB, baseLog *logger.Logger) StudentAchievementRepo {
	repoLog := baseLog.With("repo", "StudentAchievementRepo")
	return &studentAchievementRepo{db: db, log: repoLog}
}

func (r *studentAchievementRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.StudentAchievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudentAchievement
	if err := transaction.WithContext(ctx).
		Preload("Achievement").
		Where("student_id = ?", studentID).
		Order("unlocked_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentAchievementRepo) EarnedAchievementIDs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.StudentAchievement{}).
		Where("student_id = ?", studentID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *studentAchievementRepo) InsertNew(ctx context.Context, tx *gorm.DB, rows []*types.StudentAchievement) ([]*types.StudentAchievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	inserted := make([]*types.StudentAchievement, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		res := transaction.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "achievement_id"}},
				DoNothing: true,
			}).
			Omit(clause.Associations).
			Create(row)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			inserted = append(inserted, row)
		}
	}
	return inserted, nil
}
