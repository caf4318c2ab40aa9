package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/progress"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type StudentModuleRepo interface {
	// GetOrCreate returns the row for the pair, inserting a fresh one when absent.
	GetOrCreate(ctx context.Context, tx *gorm.DB, studentID, moduleID uuid.UUID) (*types.StudentModule, bool, error)
	Get(ctx context.Context, tx *gorm.DB, studentID, moduleID uuid.UUID) (*types.StudentModule, error)
	GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.StudentModule, error)
	CreateMissing(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, moduleIDs []uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, sm *types.StudentModule) error
	CountCompleted(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (int64, error)
	CompletedModuleNumbers(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]int, error)
}

type studentModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentModuleRepo(db *gorm.DB, baseLog *logger.Logger) StudentModuleRepo {
	repoLog := baseLog.With("repo", "StudentModuleRepo")
	return &studentModuleRepo{db: db, log: repoLog}
}

func (r *studentModuleRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, studentID, moduleID uuid.UUID) (*types.StudentModule, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	fresh := progress.NewStudentModule(studentID, moduleID)
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
			DoNothing: true,
		}).
		Create(fresh)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected == 1

	sm, err := r.Get(ctx, transaction, studentID, moduleID)
	if err != nil {
		return nil, false, err
	}
	return sm, created, nil
}

func (r *studentModuleRepo) Get(ctx context.Context, tx *gorm.DB, studentID, moduleID uuid.UUID) (*types.StudentModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var sm types.StudentModule
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		First(&sm).Error
	if err != nil {
		return nil, err
	}
	return &sm, nil
}

func (r *studentModuleRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.StudentModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudentModule
	if len(studentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Module").
		Joins("JOIN module ON module.id = student_module.module_id AND module.deleted_at IS NULL AND module.published = ?", true).
		Where("student_module.student_id IN ?", studentIDs).
		Order("student_module.student_id, module.number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentModuleRepo) CreateMissing(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, moduleIDs []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	rows := make([]*types.StudentModule, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		rows = append(rows, progress.NewStudentModule(studentID, id))
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *studentModuleRepo) Save(ctx context.Context, tx *gorm.DB, sm *types.StudentModule) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sm == nil {
		return errors.New("student module required")
	}
	return transaction.WithContext(ctx).Omit(clause.Associations).Save(sm).Error
}

func (r *studentModuleRepo) CountCompleted(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.StudentModule{}).
		Joins("JOIN module ON module.id = student_module.module_id AND module.deleted_at IS NULL AND module.published = ?", true).
		Where("student_module.student_id = ? AND student_module.status = ?", studentID, progress.StatusCompleted).
		Count(&n).Error
	return n, err
}

func (r *studentModuleRepo) CompletedModuleNumbers(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var numbers []int
	err := transaction.WithContext(ctx).
		Table("student_module").
		Joins("JOIN module ON module.id = student_module.module_id AND module.deleted_at IS NULL AND module.published = ?", true).
		Where("student_module.student_id = ? AND student_module.status = ?", studentID, progress.StatusCompleted).
		Order("module.number ASC").
		Pluck("module.number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}
