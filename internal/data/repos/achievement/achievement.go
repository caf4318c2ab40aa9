package achievement

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type AchievementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rules []*types.Achievement) ([]*types.Achievement, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
	GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	repoLog := baseLog.With("repo", "AchievementRepo")
	return &achievementRepo{db: db, log: repoLog}
}

func (r *achievementRepo) Create(ctx context.Context, tx *gorm.DB, rules []*types.Achievement) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rules) == 0 {
		return []*types.Achievement{}, nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *achievementRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Achievement
	if err := transaction.WithContext(ctx).
		Order("rule ASC, threshold ASC, code ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *achievementRepo) GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.Achievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Achievement
	if len(codes) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
