package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lingobridge-backend/internal/clients/redis"
	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

const (
	dashboardCacheKey = "reports:dashboard"
	defaultActiveDays = 7
)

type Dashboard struct {
	TotalStudents        int64                     `json:"total_students"`
	ActiveStudents       int64                     `json:"active_students"`
	ActiveWindowDays     int                       `json:"active_window_days"`
	Subscriptions        []repos.SubscriptionCount `json:"subscriptions"`
	AverageProgress      float64                   `json:"average_progress"`
	Modules              []repos.ModuleStat        `json:"modules"`
	ExamAttempts         int64                     `json:"exam_attempts"`
	ExamsPassed          int64                     `json:"exams_passed"`
	PassRate             float64                   `json:"pass_rate"`
	CertificatesIssued   int64                     `json:"certificates_issued"`
	AchievementsUnlocked int64                     `json:"achievements_unlocked"`
	GeneratedAt          time.Time                 `json:"generated_at"`
}

type ReportService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ModuleStats(ctx context.Context) ([]repos.ModuleStat, error)
}

type reportService struct {
	log        *logger.Logger
	reportRepo repos.ReportRepo
	cache      redis.Cache
	cacheTTL   time.Duration
	activeDays int
	now        func() time.Time
}

// NewReportService caches dashboards when cache is non-nil and cacheTTL is positive.
func NewReportService(log *logger.Logger, reportRepo repos.ReportRepo, cache redis.Cache, cacheTTL time.Duration, activeDays int) ReportService {
	if activeDays <= 0 {
		activeDays = defaultActiveDays
	}
	return &reportService{
		log:        log.With("service", "ReportService"),
		reportRepo: reportRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		activeDays: activeDays,
		now:        time.Now,
	}
}

func (s *reportService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func (s *reportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	if s.cacheEnabled() {
		var cached Dashboard
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.Warn("Dashboard cache read failed", "error", err)
		}
	}

	now := s.now().UTC()
	d := &Dashboard{ActiveWindowDays: s.activeDays, GeneratedAt: now}
	since := now.AddDate(0, 0, -s.activeDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.reportRepo.CountStudents(gctx)
		if err != nil {
			return fmt.Errorf("count students: %w", err)
		}
		d.TotalStudents = n
		return nil
	})
	g.Go(func() error {
		n, err := s.reportRepo.CountActiveStudents(gctx, since)
		if err != nil {
			return fmt.Errorf("count active students: %w", err)
		}
		d.ActiveStudents = n
		return nil
	})
	g.Go(func() error {
		rows, err := s.reportRepo.SubscriptionBreakdown(gctx)
		if err != nil {
			return fmt.Errorf("subscription breakdown: %w", err)
		}
		d.Subscriptions = rows
		return nil
	})
	g.Go(func() error {
		avg, err := s.reportRepo.AverageProgress(gctx)
		if err != nil {
			return fmt.Errorf("average progress: %w", err)
		}
		d.AverageProgress = math.Round(avg*100) / 100
		return nil
	})
	g.Go(func() error {
		rows, err := s.reportRepo.ModuleStats(gctx)
		if err != nil {
			return fmt.Errorf("module stats: %w", err)
		}
		d.Modules = rows
		return nil
	})
	g.Go(func() error {
		st, err := s.reportRepo.ExamStats(gctx)
		if err != nil {
			return fmt.Errorf("exam stats: %w", err)
		}
		d.ExamAttempts = st.Attempts
		d.ExamsPassed = st.Passed
		return nil
	})
	g.Go(func() error {
		n, err := s.reportRepo.CountCertificates(gctx)
		if err != nil {
			return fmt.Errorf("count certificates: %w", err)
		}
		d.CertificatesIssued = n
		return nil
	})
	g.Go(func() error {
		n, err := s.reportRepo.CountAchievementsUnlocked(gctx)
		if err != nil {
			return fmt.Errorf("count achievements: %w", err)
		}
		d.AchievementsUnlocked = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.ExamAttempts > 0 {
		d.PassRate = math.Round(float64(d.ExamsPassed)*10000/float64(d.ExamAttempts)) / 100
	}
	if d.Subscriptions == nil {
		d.Subscriptions = []repos.SubscriptionCount{}
	}
	if d.Modules == nil {
		d.Modules = []repos.ModuleStat{}
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, dashboardCacheKey, d, s.cacheTTL); err != nil {
			s.log.Warn("Dashboard cache write failed", "error", err)
		}
	}
	return d, nil
}

func (s *reportService) ModuleStats(ctx context.Context) ([]repos.ModuleStat, error) {
	rows, err := s.reportRepo.ModuleStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("module stats: %w", err)
	}
	if rows == nil {
		rows = []repos.ModuleStat{}
	}
	return rows, nil
}
