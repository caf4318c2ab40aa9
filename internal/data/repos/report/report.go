package report

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type ModuleStat struct {
	ModuleID    uuid.UUID `json:"module_id"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Enrolled    int64     `json:"enrolled"`
	InProgress  int64     `json:"in_progress"`
	Completed   int64     `json:"completed"`
	AvgProgress float64   `json:"avg_progress"`
}

type ExamStat struct {
	Attempts int64 `json:"attempts"`
	Passed   int64 `json:"passed"`
}

type SubscriptionCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ReportRepo runs read-only aggregates for the admin dashboard.
type ReportRepo interface {
	CountStudents(ctx context.Context) (int64, error)
	CountActiveStudents(ctx context.Context, since time.Time) (int64, error)
	SubscriptionBreakdown(ctx context.Context) ([]SubscriptionCount, error)
	AverageProgress(ctx context.Context) (float64, error)
	ModuleStats(ctx context.Context) ([]ModuleStat, error)
	ExamStats(ctx context.Context) (ExamStat, error)
	CountCertificates(ctx context.Context) (int64, error)
	CountAchievementsUnlocked(ctx context.Context) (int64, error)
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	repoLog := baseLog.With("repo", "ReportRepo")
	return &reportRepo{db: db, log: repoLog}
}

func (r *reportRepo) students(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&types.Student{}).Where("role = ?", types.RoleStudent)
}

func (r *reportRepo) CountStudents(ctx context.Context) (int64, error) {
	var n int64
	err := r.students(ctx).Count(&n).Error
	return n, err
}

func (r *reportRepo) CountActiveStudents(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.students(ctx).Where("last_active_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *reportRepo) SubscriptionBreakdown(ctx context.Context) ([]SubscriptionCount, error) {
	var rows []SubscriptionCount
	err := r.students(ctx).
		Select("subscription_status AS status, COUNT(*) AS count").
		Group("subscription_status").
		Order("subscription_status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepo) AverageProgress(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	if err := r.students(ctx).Select("AVG(progress)").Row().Scan(&avg); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (r *reportRepo) ModuleStats(ctx context.Context) ([]ModuleStat, error) {
	var rows []ModuleStat
	err := r.db.WithContext(ctx).
		Table("module AS m").
		Select(`m.id AS module_id, m.number AS number, m.title AS title,
			COUNT(sm.id) AS enrolled,
			COALESCE(SUM(CASE WHEN sm.status = 'in_progress' THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(CASE WHEN sm.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(AVG(sm.progress), 0) AS avg_progress`).
		Joins("LEFT JOIN student_module sm ON sm.module_id = m.id").
		Where("m.deleted_at IS NULL").
		Group("m.id, m.number, m.title").
		Order("m.number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepo) ExamStats(ctx context.Context) (ExamStat, error) {
	var st ExamStat
	err := r.db.WithContext(ctx).
		Model(&types.ExamAttempt{}).
		Select("COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0) AS passed").
		Scan(&st).Error
	return st, err
}

func (r *reportRepo) CountCertificates(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&types.Certificate{}).Count(&n).Error
	return n, err
}

func (r *reportRepo) CountAchievementsUnlocked(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&types.StudentAchievement{}).Count(&n).Error
	return n, err
}
